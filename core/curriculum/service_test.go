package curriculum_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshiyaar/paathshala/core"
	"github.com/hoshiyaar/paathshala/core/curriculum"
	"github.com/hoshiyaar/paathshala/storage/database/dummy"
)

func testConfig() *core.Config {
	conf := &core.Config{}
	conf.Curriculum.DefaultBoard = "CBSE"
	conf.Curriculum.DefaultClass = "5"
	conf.Curriculum.DefaultSubject = "Science"
	return conf
}

func payload(lessons ...curriculum.Lesson) curriculum.ImportPayload {
	return curriculum.ImportPayload{
		BoardTitle:   "CBSE",
		ClassTitle:   "5",
		SubjectTitle: "Science",
		ChapterTitle: "Plants",
		Lessons:      lessons,
	}
}

func lesson(t *testing.T, title string, concepts ...string) curriculum.Lesson {
	t.Helper()
	l := curriculum.Lesson{LessonTitle: title}
	for _, c := range concepts {
		l.Concepts = append(l.Concepts, mustConcept(t, c))
	}
	return l
}

func TestServiceImport(t *testing.T) {
	ctx := context.Background()
	repo := dummy.NewCurriculumRepo()
	svc := curriculum.NewService(repo, testConfig(), nil)

	t.Run("rejects payload without lessons", func(t *testing.T) {
		_, err := svc.Import(ctx, curriculum.ImportPayload{})
		var vErr *core.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("creates full hierarchy and items", func(t *testing.T) {
		repo.Clear()

		summary, err := svc.Import(ctx, payload(
			lesson(t, "Photosynthesis",
				`{"type": "statement", "text": "Plants make food."}`,
				`{"type": "mcq", "question": "Green pigment?", "options": ["Chlorophyll", "Melanin"], "answer": "Chlorophyll"}`,
			),
			lesson(t, "Respiration",
				`{"question": "Plants breathe through ___", "answer": "stomata"}`,
			),
		))
		require.NoError(t, err)

		assert.Equal(t, "CBSE", summary.Board)
		assert.Equal(t, "Plants", summary.Chapter)
		assert.Equal(t, 3, summary.ImportedItems)
		assert.Equal(t, 0, summary.Skipped)
		require.Len(t, summary.PerLesson, 2)
		assert.Equal(t, 2, summary.PerLesson[0].Items)

		boards, _ := repo.QueryBoards(ctx)
		require.Len(t, boards, 1)
		subjects, _ := repo.QuerySubjects(ctx, curriculum.SubjectFilter{BoardID: boards[0].ID})
		require.Len(t, subjects, 1)
		chapters, _ := repo.QueryChapters(ctx, subjects[0].ID)
		require.Len(t, chapters, 1)
		units, _ := repo.QueryUnits(ctx, chapters[0].ID)
		require.Len(t, units, 1)

		modules, _ := repo.QueryModules(ctx, curriculum.ModuleFilter{ChapterID: chapters[0].ID})
		require.Len(t, modules, 2)
		assert.Equal(t, 1, modules[0].Order)
		assert.Equal(t, 2, modules[1].Order)
		assert.Equal(t, units[0].ID, modules[0].UnitID)

		items, _ := repo.QueryItems(ctx, modules[0].ID)
		require.Len(t, items, 2)
		assert.Equal(t, curriculum.KindStatement, items[0].Kind)
		assert.Equal(t, 1, items[0].Order)
		assert.Equal(t, curriculum.KindMultipleChoice, items[1].Kind)
		assert.Equal(t, 2, items[1].Order)
	})

	t.Run("is idempotent", func(t *testing.T) {
		repo.Clear()
		p := payload(lesson(t, "Photosynthesis", `{"type": "statement", "text": "Plants make food."}`))

		first, err := svc.Import(ctx, p)
		require.NoError(t, err)
		second, err := svc.Import(ctx, p)
		require.NoError(t, err)

		assert.Equal(t, first.ImportedItems, second.ImportedItems)
		boards, _ := repo.QueryBoards(ctx)
		assert.Len(t, boards, 1)
		modules, _ := repo.QueryModules(ctx, curriculum.ModuleFilter{ChapterID: chapterID(t, ctx, repo)})
		require.Len(t, modules, 1)
		items, _ := repo.QueryItems(ctx, modules[0].ID)
		assert.Len(t, items, 1)
	})

	t.Run("re-import replaces lesson items and keeps module identity", func(t *testing.T) {
		repo.Clear()

		_, err := svc.Import(ctx, payload(lesson(t, "Photosynthesis",
			`{"type": "statement", "text": "v1 concept A"}`,
			`{"type": "statement", "text": "v1 concept B"}`,
		)))
		require.NoError(t, err)
		modules, _ := repo.QueryModules(ctx, curriculum.ModuleFilter{ChapterID: chapterID(t, ctx, repo)})
		require.Len(t, modules, 1)
		originalID := modules[0].ID

		// module lookup is by normalized title
		_, err = svc.Import(ctx, payload(lesson(t, "  PHOTOSYNTHESIS  ",
			`{"type": "statement", "text": "v2 concept"}`,
		)))
		require.NoError(t, err)

		modules, _ = repo.QueryModules(ctx, curriculum.ModuleFilter{ChapterID: chapterID(t, ctx, repo)})
		require.Len(t, modules, 1)
		assert.Equal(t, originalID, modules[0].ID)
		items, _ := repo.QueryItems(ctx, originalID)
		require.Len(t, items, 1)
		assert.Equal(t, "v2 concept", items[0].Text)
	})

	t.Run("defaults missing hierarchy titles from config", func(t *testing.T) {
		repo.Clear()

		summary, err := svc.Import(ctx, curriculum.ImportPayload{
			Lessons: []curriculum.Lesson{lesson(t, "Orphan", `{"type": "statement", "text": "x"}`)},
		})
		require.NoError(t, err)
		assert.Equal(t, "CBSE", summary.Board)
		assert.Equal(t, "5", summary.Class)
		assert.Equal(t, "Science", summary.Subject)
		assert.Equal(t, "Chapter", summary.Chapter)
	})

	t.Run("counts failed concepts as skipped without aborting", func(t *testing.T) {
		repo.Clear()
		failing := &failingItemRepo{CurriculumRepo: repo, failOn: "bad one"}
		svc := curriculum.NewService(failing, testConfig(), nil)

		summary, err := svc.Import(ctx, payload(lesson(t, "Mixed",
			`{"type": "statement", "text": "good one"}`,
			`{"type": "statement", "text": "bad one"}`,
			`{"type": "statement", "text": "another good one"}`,
		)))
		require.NoError(t, err)
		assert.Equal(t, 2, summary.ImportedItems)
		assert.Equal(t, 1, summary.Skipped)
		require.Len(t, summary.PerLesson, 1)
		assert.Equal(t, 2, summary.PerLesson[0].Items)
	})
}

func chapterID(t *testing.T, ctx context.Context, repo *dummy.CurriculumRepo) string {
	t.Helper()
	chapters, err := repo.QueryChapters(ctx, "")
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	return chapters[0].ID
}

type failingItemRepo struct {
	*dummy.CurriculumRepo
	failOn string
}

func (r *failingItemRepo) CreateItem(ctx context.Context, item curriculum.Item) (curriculum.Item, error) {
	if item.Text == r.failOn {
		return curriculum.Item{}, errors.New("insert failed")
	}
	return r.CurriculumRepo.CreateItem(ctx, item)
}

func TestServiceListings(t *testing.T) {
	ctx := context.Background()
	repo := dummy.NewCurriculumRepo()
	svc := curriculum.NewService(repo, testConfig(), nil)

	_, err := svc.Import(ctx, payload(lesson(t, "Photosynthesis", `{"type": "statement", "text": "x"}`)))
	require.NoError(t, err)

	t.Run("classes scoped by board name", func(t *testing.T) {
		classes, err := svc.Classes(ctx, "CBSE")
		require.NoError(t, err)
		assert.Len(t, classes, 1)

		classes, err = svc.Classes(ctx, "ICSE")
		require.NoError(t, err)
		assert.Empty(t, classes)
	})

	t.Run("subjects by names", func(t *testing.T) {
		subjects, err := svc.Subjects(ctx, curriculum.SubjectListOptions{Board: "CBSE", Class: "5"})
		require.NoError(t, err)
		require.Len(t, subjects, 1)
		assert.Equal(t, "Science", subjects[0].Name)
	})

	t.Run("chapters by names", func(t *testing.T) {
		chapters, err := svc.Chapters(ctx, curriculum.ChapterListOptions{Board: "CBSE", Subject: "Science", Class: "5"})
		require.NoError(t, err)
		require.Len(t, chapters, 1)
		assert.Equal(t, "Plants", chapters[0].Title)
	})

	t.Run("modules require a scope", func(t *testing.T) {
		_, err := svc.Modules(ctx, curriculum.ModuleFilter{})
		var vErr *core.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("module chapter resolution", func(t *testing.T) {
		modules, _ := repo.QueryModules(ctx, curriculum.ModuleFilter{ChapterID: chapterID(t, ctx, repo)})
		require.Len(t, modules, 1)

		mod, chapter, err := svc.ModuleChapter(ctx, modules[0].ID)
		require.NoError(t, err)
		assert.Equal(t, modules[0].ID, mod.ID)
		assert.Equal(t, "Plants", chapter.Title)
	})
}

func TestServiceSetItemImage(t *testing.T) {
	ctx := context.Background()
	repo := dummy.NewCurriculumRepo()
	svc := curriculum.NewService(repo, testConfig(), nil)

	_, err := svc.Import(ctx, payload(lesson(t, "Photosynthesis", `{"type": "statement", "text": "x"}`)))
	require.NoError(t, err)
	modules, _ := repo.QueryModules(ctx, curriculum.ModuleFilter{ChapterID: chapterID(t, ctx, repo)})
	items, _ := repo.QueryItems(ctx, modules[0].ID)
	require.Len(t, items, 1)

	t.Run("rejects empty update", func(t *testing.T) {
		_, err := svc.SetItemImage(ctx, items[0].ID, curriculum.SetItemImage{})
		var vErr *core.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("sets primary image", func(t *testing.T) {
		item, err := svc.SetItemImage(ctx, items[0].ID, curriculum.SetItemImage{
			ImageURL: "https://cdn/a.png", PublicID: "a",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/a.png", item.ImageURL)
		assert.Equal(t, "a", item.ImagePublicID)
	})

	t.Run("appends to image list", func(t *testing.T) {
		_, err := svc.SetItemImage(ctx, items[0].ID, curriculum.SetItemImage{
			Images: []string{"https://cdn/1.png"}, ImagePublicIDs: []string{"1"},
		})
		require.NoError(t, err)

		item, err := svc.SetItemImage(ctx, items[0].ID, curriculum.SetItemImage{
			Images: []string{"https://cdn/2.png"}, ImagePublicIDs: []string{"2"}, Append: true,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn/1.png", "https://cdn/2.png"}, item.Images)
		assert.Equal(t, []string{"1", "2"}, item.ImagePublicIDs)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.SetItemImage(ctx, "nope", curriculum.SetItemImage{ImageURL: "https://cdn/a.png"})
		assert.ErrorIs(t, err, curriculum.ErrNotFound)
	})
}

func TestServiceBackfills(t *testing.T) {
	ctx := context.Background()
	repo := dummy.NewCurriculumRepo()
	svc := curriculum.NewService(repo, testConfig(), nil)

	t.Run("backfill subjects adopts orphan chapters", func(t *testing.T) {
		repo.Clear()
		orphan, err := repo.EnsureChapter(ctx, curriculum.Chapter{Title: "Orphan", Order: 1})
		require.NoError(t, err)

		res, err := svc.BackfillSubjects(ctx, "", "", "")
		require.NoError(t, err)
		assert.Equal(t, "Science", res.Subject)
		assert.Equal(t, 1, res.UpdatedChapters)

		chapter, err := repo.GetChapter(ctx, curriculum.ChapterFilter{ID: orphan.ID})
		require.NoError(t, err)
		assert.NotEmpty(t, chapter.SubjectID)
	})

	t.Run("backfill units assigns unit-less modules", func(t *testing.T) {
		repo.Clear()
		chapter, err := repo.EnsureChapter(ctx, curriculum.Chapter{Title: "Plants", Order: 1})
		require.NoError(t, err)
		mod, err := repo.CreateModule(ctx, curriculum.Module{ChapterID: chapter.ID, Title: "Photosynthesis", Order: 1})
		require.NoError(t, err)
		require.Empty(t, mod.UnitID)

		res, err := svc.BackfillUnits(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 1, res.ChaptersProcessed)
		assert.Equal(t, 1, res.UnitsCreated)
		assert.Equal(t, 1, res.ModulesAssigned)

		mod, err = repo.GetModule(ctx, mod.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, mod.UnitID)
	})
}
