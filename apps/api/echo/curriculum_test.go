package echoapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshiyaar/paathshala/core/curriculum"
	"github.com/hoshiyaar/paathshala/core/review"
)

var importBody = []byte(`{
	"board_title": "CBSE",
	"class_title": "5",
	"subject_title": "Science",
	"chapter_title": "Plants",
	"lessons": [
		{
			"lesson_title": "Photosynthesis",
			"concepts": [
				{"type": "statement", "text": "Plants make food."},
				{"type": "mcq", "question": "Green pigment?", "options": ["Chlorophyll", "Melanin"], "answer": "Chlorophyll"}
			]
		}
	]
}`)

func TestCurriculumImportAPI(t *testing.T) {
	env := setup(t)
	admin := registerAdmin(t, env, "root", "s3cr3t")
	student := registerStudent(t, env, "asha123")
	adminToken := getToken(t, env.server, admin)
	studentToken := getToken(t, env.server, student)

	tests := []httpTest{
		{
			name: "requires auth", method: http.MethodPost, path: "/v1/curriculum/import",
			body: importBody, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "requires admin", method: http.MethodPost, path: "/v1/curriculum/import",
			body: importBody, token: studentToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "rejects missing lessons", method: http.MethodPost, path: "/v1/curriculum/import",
			body: []byte(`{"board_title": "CBSE"}`), token: adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"lessons": "this field is required"}),
		},
		{
			name: "imports", method: http.MethodPost, path: "/v1/curriculum/import",
			body: importBody, token: adminToken,
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("import summary payload", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/curriculum/import", adminToken, importBody)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var summary curriculum.ImportSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, "CBSE", summary.Board)
		assert.Equal(t, 2, summary.ImportedItems)
		assert.Equal(t, 0, summary.Skipped)
	})
}

func TestCurriculumReadAPI(t *testing.T) {
	env := setup(t)
	admin := registerAdmin(t, env, "root", "s3cr3t")
	adminToken := getToken(t, env.server, admin)

	req, rec := newAuthRequest(http.MethodPost, "/v1/curriculum/import", adminToken, importBody)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var get = func(t *testing.T, path string, out interface{}) {
		t.Helper()
		req, rec := newRequest(http.MethodGet, path)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}

	var boards []curriculum.Board
	get(t, "/v1/curriculum/boards", &boards)
	require.Len(t, boards, 1)

	var classes []curriculum.ClassLevel
	get(t, "/v1/curriculum/classes?board=CBSE", &classes)
	require.Len(t, classes, 1)

	var subjects []curriculum.Subject
	get(t, "/v1/curriculum/subjects?board=CBSE&class=5", &subjects)
	require.Len(t, subjects, 1)

	var chapters []curriculum.Chapter
	get(t, "/v1/curriculum/chapters?subjectId="+subjects[0].ID, &chapters)
	require.Len(t, chapters, 1)

	var units []curriculum.Unit
	get(t, "/v1/curriculum/units?chapterId="+chapters[0].ID, &units)
	require.Len(t, units, 1)

	var modules []curriculum.Module
	get(t, "/v1/curriculum/modules?chapterId="+chapters[0].ID, &modules)
	require.Len(t, modules, 1)
	assert.Equal(t, "Photosynthesis", modules[0].Title)

	var items []curriculum.Item
	get(t, "/v1/curriculum/modules/"+modules[0].ID+"/items", &items)
	require.Len(t, items, 2)
	assert.Equal(t, curriculum.KindStatement, items[0].Kind)

	t.Run("modules require a scope", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/curriculum/modules")
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("listings scoped by learner", func(t *testing.T) {
		asha := registerStudent(t, env, "asha123")
		req, rec := newRequest(http.MethodPut, "/v1/learners/"+asha.ID+"/onboarding",
			[]byte(`{"board": "CBSE", "classLevel": "5", "subject": "Science"}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var subjects []curriculum.Subject
		get(t, "/v1/curriculum/subjects?userId="+asha.ID, &subjects)
		require.Len(t, subjects, 1)
		assert.Equal(t, "Science", subjects[0].Name)

		var scoped []curriculum.Chapter
		get(t, "/v1/curriculum/chapters?userId="+asha.ID, &scoped)
		require.Len(t, scoped, 1)
		assert.Equal(t, "Plants", scoped[0].Title)
	})
}

func TestCurriculumItemImageAPI(t *testing.T) {
	env := setup(t)
	admin := registerAdmin(t, env, "root", "s3cr3t")
	adminToken := getToken(t, env.server, admin)

	req, rec := newAuthRequest(http.MethodPost, "/v1/curriculum/import", adminToken, importBody)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	chapters, err := env.currRepo.QueryChapters(testCtx(), "")
	require.NoError(t, err)
	modules, err := env.currRepo.QueryModules(testCtx(), curriculum.ModuleFilter{ChapterID: chapters[0].ID})
	require.NoError(t, err)
	items, err := env.currRepo.QueryItems(testCtx(), modules[0].ID)
	require.NoError(t, err)

	t.Run("set image", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/curriculum/items/"+items[0].ID+"/image", adminToken,
			[]byte(`{"imageUrl": "https://cdn/x.png", "publicId": "x"}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var item curriculum.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
		assert.Equal(t, "https://cdn/x.png", item.ImageURL)
	})

	t.Run("replace and clear the gallery", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/curriculum/items/"+items[0].ID+"/image", adminToken,
			[]byte(`{"images": ["https://cdn/a.png", "https://cdn/b.png"], "imagePublicIds": ["a", "b"]}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var item curriculum.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
		require.Len(t, item.Images, 2)

		req, rec = newAuthRequest(http.MethodPut, "/v1/curriculum/items/"+items[0].ID+"/image", adminToken,
			[]byte(`{"images": []}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var cleared curriculum.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cleared))
		assert.Empty(t, cleared.Images)
	})

	t.Run("empty update rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/curriculum/items/"+items[0].ID+"/image", adminToken, []byte(`{}`))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown item", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/curriculum/items/nope/image", adminToken,
			[]byte(`{"imageUrl": "https://cdn/x.png"}`))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReviewAPI(t *testing.T) {
	env := setup(t)
	asha := registerStudent(t, env, "asha123")

	t.Run("record and list", func(t *testing.T) {
		body := marchallObj(t, review.NewIncorrect{UserID: asha.ID, QuestionID: "mod-abc_3", Subject: "Science"})
		req, rec := newRequest(http.MethodPost, "/v1/review/incorrect", body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		req, rec = newRequest(http.MethodPost, "/v1/review/incorrect", body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		req, rec = newRequest(http.MethodGet, "/v1/review/incorrect?userId="+asha.ID)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var records []review.IncorrectQuestion
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, 2, records[0].Count)
		assert.Equal(t, "mod-abc", records[0].ModuleID)
	})

	t.Run("backfill requires admin", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/review/backfill-module-ids")
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("backfill sweeps records missing a module id", func(t *testing.T) {
		admin := registerAdmin(t, env, "root", "s3cr3t")
		adminToken := getToken(t, env.server, admin)
		_, err := env.reviewRepo.UpsertIncorrect(testCtx(), review.NewIncorrect{UserID: asha.ID, QuestionID: "mod-xyz_4"})
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodPost, "/v1/review/backfill-module-ids", adminToken)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var res review.BackfillResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 1, res.Updated)
		assert.Equal(t, 1, res.Scanned)
	})
}

func TestUploadAPI(t *testing.T) {
	env := setup(t)
	admin := registerAdmin(t, env, "root", "s3cr3t")
	adminToken := getToken(t, env.server, admin)

	newUploadRequest := func(t *testing.T, field string, names ...string) (*http.Request, *httptest.ResponseRecorder) {
		t.Helper()
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, name := range names {
			fw, err := w.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = fw.Write([]byte("fake image bytes"))
			require.NoError(t, err)
		}
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/uploads", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+adminToken)
		return req, httptest.NewRecorder()
	}

	t.Run("uploads files", func(t *testing.T) {
		req, rec := newUploadRequest(t, "files", "a.png", "b.png")
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Len(t, env.store.Uploads, 2)
	})

	t.Run("rejects empty form", func(t *testing.T) {
		req, rec := newUploadRequest(t, "wrong-field", "a.png")
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
