package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/hoshiyaar/paathshala/core"
	"github.com/hoshiyaar/paathshala/core/curriculum"
	"github.com/hoshiyaar/paathshala/core/learner"
	"github.com/hoshiyaar/paathshala/core/review"
	emailsvc "github.com/hoshiyaar/paathshala/services/email"
	uploadsvc "github.com/hoshiyaar/paathshala/services/upload"
	"github.com/hoshiyaar/paathshala/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func testCtx() context.Context { return context.Background() }

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

// testLogger drops everything; API tests assert on responses, not logs.
type testLogger struct{}

var _ core.Logger = (*testLogger)(nil)

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	server      *Server
	learnerSvc  *learner.Service
	learnerRepo *dummy.LearnerRepo
	currSvc     *curriculum.Service
	currRepo    *dummy.CurriculumRepo
	reviewRepo  *dummy.ReviewRepo
	store       *uploadsvc.DummyStore
}

func testConfig() *core.Config {
	conf := &core.Config{
		TestMode:  true,
		AppName:   "Paathshala",
		SecretKey: "secret",
	}
	conf.Server.Addr = ":0"
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Curriculum.DefaultBoard = "CBSE"
	conf.Curriculum.DefaultClass = "5"
	conf.Curriculum.DefaultSubject = "Science"
	return conf
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := testConfig()
	logger := testLogger{}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	currRepo := dummy.NewCurriculumRepo()
	currSvc := curriculum.NewService(currRepo, conf, logger)
	learnerRepo := dummy.NewLearnerRepo()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	learnerSvc := learner.NewService(learnerRepo, currSvc, mailSvc, logger)
	reviewRepo := dummy.NewReviewRepo()
	reviewSvc := review.NewService(reviewRepo, logger)
	store := uploadsvc.NewDummyStore()

	server := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		LearnerSvc:    learnerSvc,
		CurriculumSvc: currSvc,
		ReviewSvc:     reviewSvc,
		FileStore:     store,
		Validate:      validate,
		Translator:    translator,
	})
	return &testEnv{
		server:      server,
		learnerSvc:  learnerSvc,
		learnerRepo: learnerRepo,
		currSvc:     currSvc,
		currRepo:    currRepo,
		reviewRepo:  reviewRepo,
		store:       store,
	}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, server *Server, l learner.Learner) string {
	t.Helper()
	token, err := server.generateToken(server.getLearnerClaims(l))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func registerStudent(t *testing.T, env *testEnv, username string) learner.Learner {
	t.Helper()
	l, err := env.learnerSvc.Register(testCtx(), learner.NewLearner{
		Username:    username,
		DateOfBirth: "2014-06-01",
	})
	if err != nil {
		t.Fatalf("registerStudent() failed: %v", err)
	}
	return l
}

func registerAdmin(t *testing.T, env *testEnv, username, password string) learner.Learner {
	t.Helper()
	l, err := env.learnerSvc.RegisterAdmin(testCtx(), username, password)
	if err != nil {
		t.Fatalf("registerAdmin() failed: %v", err)
	}
	return l
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %s; wantData %s", rec.Body.Bytes(), tt.wantData)
	}
}
