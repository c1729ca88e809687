package curriculum_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshiyaar/paathshala/core/curriculum"
	"github.com/hoshiyaar/paathshala/storage/database/dummy"
)

func seedHierarchy(t *testing.T, ctx context.Context, repo *dummy.CurriculumRepo) (curriculum.Board, curriculum.ClassLevel, curriculum.Subject, curriculum.Chapter) {
	t.Helper()
	board, err := repo.EnsureBoard(ctx, curriculum.Board{Name: "CBSE"})
	require.NoError(t, err)
	class, err := repo.EnsureClassLevel(ctx, curriculum.ClassLevel{BoardID: board.ID, Name: "5", Order: 5})
	require.NoError(t, err)
	subject, err := repo.EnsureSubject(ctx, curriculum.Subject{BoardID: board.ID, ClassID: class.ID, Name: "Science"})
	require.NoError(t, err)
	chapter, err := repo.EnsureChapter(ctx, curriculum.Chapter{SubjectID: subject.ID, Title: "Plants", Order: 1})
	require.NoError(t, err)
	return board, class, subject, chapter
}

func TestResolveSelections(t *testing.T) {
	ctx := context.Background()
	repo := dummy.NewCurriculumRepo()
	svc := curriculum.NewService(repo, testConfig(), nil)
	board, class, subject, chapter := seedHierarchy(t, ctx, repo)

	t.Run("resolves all four levels", func(t *testing.T) {
		res := svc.ResolveSelections(ctx, curriculum.Selections{
			Board: "CBSE", Class: "5", Subject: "Science", Chapter: "Plants",
		})
		assert.Equal(t, curriculum.LevelResult{ID: board.ID, State: curriculum.StateResolved}, res.Board)
		assert.Equal(t, curriculum.LevelResult{ID: class.ID, State: curriculum.StateResolved}, res.Class)
		assert.Equal(t, curriculum.LevelResult{ID: subject.ID, State: curriculum.StateResolved}, res.Subject)
		assert.Equal(t, curriculum.LevelResult{ID: chapter.ID, State: curriculum.StateResolved}, res.Chapter)
	})

	t.Run("empty selections stay unmatched", func(t *testing.T) {
		res := svc.ResolveSelections(ctx, curriculum.Selections{})
		assert.Equal(t, curriculum.StateNoMatch, res.Board.State)
		assert.Equal(t, curriculum.StateNoMatch, res.Class.State)
		assert.Equal(t, curriculum.StateNoMatch, res.Subject.State)
		assert.Equal(t, curriculum.StateNoMatch, res.Chapter.State)
	})

	t.Run("unknown board leaves other levels resolvable", func(t *testing.T) {
		res := svc.ResolveSelections(ctx, curriculum.Selections{Board: "Unknown Board", Subject: "Science"})
		// board is back-filled from the subject's reference
		require.Equal(t, curriculum.StateResolved, res.Subject.State)
		assert.Equal(t, subject.ID, res.Subject.ID)
		assert.Equal(t, board.ID, res.Board.ID)
		assert.Equal(t, curriculum.StateResolved, res.Board.State)
	})

	t.Run("subject alone back-fills class and board", func(t *testing.T) {
		res := svc.ResolveSelections(ctx, curriculum.Selections{Subject: "Science"})
		require.Equal(t, curriculum.StateResolved, res.Subject.State)
		assert.Equal(t, class.ID, res.Class.ID)
		assert.Equal(t, board.ID, res.Board.ID)
	})

	t.Run("chapter alone back-fills subject", func(t *testing.T) {
		res := svc.ResolveSelections(ctx, curriculum.Selections{Chapter: "Plants"})
		require.Equal(t, curriculum.StateResolved, res.Chapter.State)
		assert.Equal(t, chapter.ID, res.Chapter.ID)
		assert.Equal(t, subject.ID, res.Subject.ID)
		assert.Equal(t, curriculum.StateResolved, res.Subject.State)
	})

	t.Run("class back-fills board", func(t *testing.T) {
		res := svc.ResolveSelections(ctx, curriculum.Selections{Class: "5"})
		require.Equal(t, curriculum.StateResolved, res.Class.State)
		assert.Equal(t, board.ID, res.Board.ID)
		assert.Equal(t, curriculum.StateResolved, res.Board.State)
	})

	t.Run("unknown names never fail", func(t *testing.T) {
		res := svc.ResolveSelections(ctx, curriculum.Selections{
			Board: "ZZZ", Class: "99", Subject: "Alchemy", Chapter: "Transmutation",
		})
		assert.Equal(t, curriculum.StateNoMatch, res.Board.State)
		assert.Equal(t, curriculum.StateNoMatch, res.Class.State)
		assert.Equal(t, curriculum.StateNoMatch, res.Subject.State)
		assert.Equal(t, curriculum.StateNoMatch, res.Chapter.State)
	})
}
