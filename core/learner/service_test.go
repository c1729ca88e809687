package learner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshiyaar/paathshala/core"
	"github.com/hoshiyaar/paathshala/core/curriculum"
	"github.com/hoshiyaar/paathshala/core/learner"
	"github.com/hoshiyaar/paathshala/storage/database/dummy"
)

func testConfig() *core.Config {
	conf := &core.Config{}
	conf.Curriculum.DefaultBoard = "CBSE"
	conf.Curriculum.DefaultClass = "5"
	conf.Curriculum.DefaultSubject = "Science"
	return conf
}

func newServices(t *testing.T) (*learner.Service, *dummy.LearnerRepo, *dummy.CurriculumRepo) {
	t.Helper()
	currRepo := dummy.NewCurriculumRepo()
	currSvc := curriculum.NewService(currRepo, testConfig(), nil)
	repo := dummy.NewLearnerRepo()
	return learner.NewService(repo, currSvc, nil, nil), repo, currRepo
}

func register(t *testing.T, svc *learner.Service) learner.Learner {
	t.Helper()
	l, err := svc.Register(context.Background(), learner.NewLearner{
		Username:    "Asha123",
		Name:        "Asha",
		DateOfBirth: "2014-06-01",
	})
	require.NoError(t, err)
	return l
}

func TestServiceRegister(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newServices(t)

	l := register(t, svc)
	assert.Equal(t, "asha123", l.Username) // normalized
	assert.Equal(t, learner.RoleStudent, l.Role)
	assert.False(t, l.OnboardingCompleted)
	require.NotNil(t, l.DateOfBirth)
	assert.Equal(t, "2014-06-01", l.DateOfBirth.Format(core.DateOnlyFormat))

	t.Run("rejects duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, learner.NewLearner{Username: "ASHA123", DateOfBirth: "2015-01-01"})
		assert.ErrorIs(t, err, learner.ErrUsernameExists)
	})

	t.Run("rejects malformed date of birth", func(t *testing.T) {
		_, err := svc.Register(ctx, learner.NewLearner{Username: "newkid", DateOfBirth: "01/06/2014"})
		var vErr *core.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("sign-up selections resolve and complete onboarding", func(t *testing.T) {
		svc2, _, currRepo := newServices(t)
		board, err := currRepo.EnsureBoard(ctx, curriculum.Board{Name: "CBSE"})
		require.NoError(t, err)

		l2, err := svc2.Register(ctx, learner.NewLearner{
			Username:    "ravi99",
			DateOfBirth: "2013-03-15",
			Board:       "CBSE",
			Subject:     "Science",
		})
		require.NoError(t, err)
		assert.Equal(t, board.ID, l2.BoardID)
		assert.Empty(t, l2.SubjectID) // nothing to resolve against
		assert.True(t, l2.OnboardingCompleted)
	})

	t.Run("username availability", func(t *testing.T) {
		free, err := svc.UsernameAvailable(ctx, "asha123")
		require.NoError(t, err)
		assert.False(t, free)

		free, err = svc.UsernameAvailable(ctx, "someone-else")
		require.NoError(t, err)
		assert.True(t, free)
	})
}

func TestServiceAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newServices(t)
	register(t, svc)

	t.Run("student logs in with date of birth", func(t *testing.T) {
		l, err := svc.Authenticate(ctx, learner.Credentials{Username: "asha123", DateOfBirth: "2014-06-01"})
		require.NoError(t, err)
		assert.Equal(t, "asha123", l.Username)
	})

	t.Run("wrong date of birth", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, learner.Credentials{Username: "asha123", DateOfBirth: "2014-06-02"})
		assert.ErrorIs(t, err, learner.ErrAuthenticationFailed)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, learner.Credentials{Username: "ghost", DateOfBirth: "2014-06-01"})
		assert.ErrorIs(t, err, learner.ErrAuthenticationFailed)
	})

	t.Run("admin logs in with password", func(t *testing.T) {
		_, err := svc.RegisterAdmin(ctx, "root", "s3cr3t")
		require.NoError(t, err)

		l, err := svc.Authenticate(ctx, learner.Credentials{Username: "root", Password: "s3cr3t"})
		require.NoError(t, err)
		assert.True(t, l.IsAdmin())

		_, err = svc.Authenticate(ctx, learner.Credentials{Username: "root", Password: "wrong"})
		assert.ErrorIs(t, err, learner.ErrAuthenticationFailed)
	})

	t.Run("student has no password credential", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, learner.Credentials{Username: "asha123", Password: "anything"})
		assert.ErrorIs(t, err, learner.ErrAuthenticationFailed)
	})
}

func strPtr(s string) *string { return &s }

func TestServiceUpdateOnboarding(t *testing.T) {
	ctx := context.Background()
	svc, _, currRepo := newServices(t)
	l := register(t, svc)

	board, err := currRepo.EnsureBoard(ctx, curriculum.Board{Name: "CBSE"})
	require.NoError(t, err)
	class, err := currRepo.EnsureClassLevel(ctx, curriculum.ClassLevel{BoardID: board.ID, Name: "5", Order: 5})
	require.NoError(t, err)
	subject, err := currRepo.EnsureSubject(ctx, curriculum.Subject{BoardID: board.ID, ClassID: class.ID, Name: "Science"})
	require.NoError(t, err)

	t.Run("board alone is incomplete", func(t *testing.T) {
		updated, err := svc.UpdateOnboarding(ctx, l.ID, learner.UpdateOnboarding{Board: strPtr("CBSE")})
		require.NoError(t, err)
		assert.Equal(t, board.ID, updated.BoardID)
		assert.False(t, updated.OnboardingCompleted)
	})

	t.Run("board and subject complete onboarding", func(t *testing.T) {
		updated, err := svc.UpdateOnboarding(ctx, l.ID, learner.UpdateOnboarding{Subject: strPtr("Science")})
		require.NoError(t, err)
		assert.Equal(t, subject.ID, updated.SubjectID)
		assert.True(t, updated.OnboardingCompleted)
	})

	t.Run("switching to an unknown subject clears the resolved id", func(t *testing.T) {
		updated, err := svc.UpdateOnboarding(ctx, l.ID, learner.UpdateOnboarding{Subject: strPtr("Astrology")})
		require.NoError(t, err)
		assert.Equal(t, "Astrology", updated.Subject)
		assert.Empty(t, updated.SubjectID)
		// the free-text subject still counts toward completeness
		assert.True(t, updated.OnboardingCompleted)
	})

	t.Run("unmatched selection is kept as free text", func(t *testing.T) {
		updated, err := svc.UpdateOnboarding(ctx, l.ID, learner.UpdateOnboarding{Chapter: strPtr("Unknown Chapter")})
		require.NoError(t, err)
		assert.Equal(t, "Unknown Chapter", updated.Chapter)
		assert.Empty(t, updated.ChapterID)
		// completeness unaffected by the chapter
		assert.True(t, updated.OnboardingCompleted)
	})

	t.Run("free-text subject counts toward completeness", func(t *testing.T) {
		svc2, _, _ := newServices(t)
		l2 := register(t, svc2)
		updated, err := svc2.UpdateOnboarding(ctx, l2.ID, learner.UpdateOnboarding{
			Board:   strPtr("State Board"),
			Subject: strPtr("Moral Science"),
		})
		require.NoError(t, err)
		assert.Empty(t, updated.BoardID)
		assert.Empty(t, updated.SubjectID)
		assert.True(t, updated.OnboardingCompleted)
	})

	t.Run("username change checks uniqueness", func(t *testing.T) {
		_, err := svc.RegisterAdmin(ctx, "taken", "s3cr3t")
		require.NoError(t, err)

		_, err = svc.UpdateOnboarding(ctx, l.ID, learner.UpdateOnboarding{Username: strPtr("Taken")})
		assert.ErrorIs(t, err, learner.ErrUsernameExists)

		updated, err := svc.UpdateOnboarding(ctx, l.ID, learner.UpdateOnboarding{Username: strPtr("Asha456")})
		require.NoError(t, err)
		assert.Equal(t, "asha456", updated.Username)
	})

	t.Run("unknown learner", func(t *testing.T) {
		_, err := svc.UpdateOnboarding(ctx, "nope", learner.UpdateOnboarding{})
		assert.ErrorIs(t, err, learner.ErrNotFound)
	})
}
