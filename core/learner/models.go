package learner

import (
	"strings"
	"time"

	"github.com/hoshiyaar/paathshala/core"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type (
	// Learner is an onboarded student (or an admin account sharing the
	// same table). The plain Board/ClassLevel/Subject/Chapter strings are
	// the free-text selections captured at onboarding; the *ID fields hold
	// whichever of them resolved against the curriculum hierarchy.
	Learner struct {
		ID          string     `json:"_id"`
		Username    string     `json:"username"`
		Name        string     `json:"name,omitempty"`
		Email       string     `json:"email,omitempty"`
		Phone       string     `json:"phone,omitempty"`
		Age         int        `json:"age,omitempty"`
		DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`

		ClassLevel string `json:"classLevel,omitempty"`
		Board      string `json:"board,omitempty"`
		Subject    string `json:"subject,omitempty"`
		Chapter    string `json:"chapter,omitempty"`

		BoardID   string `json:"boardId,omitempty"`
		ClassID   string `json:"classId,omitempty"`
		SubjectID string `json:"subjectId,omitempty"`
		ChapterID string `json:"chapterId,omitempty"`

		OnboardingCompleted bool   `json:"onboardingCompleted"`
		Role                string `json:"role"`

		ChaptersProgress []ChapterProgress `json:"chaptersProgress"`

		PasswordHash []byte    `json:"-"`
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}

	// ChapterProgress accumulates one learner's activity inside one
	// chapter of one subject.
	ChapterProgress struct {
		Chapter          int                    `json:"chapter"`
		Subject          string                 `json:"subject"`
		ConceptCompleted bool                   `json:"conceptCompleted"`
		QuizCompleted    bool                   `json:"quizCompleted"`
		CompletedModules []string               `json:"completedModules"`
		Stats            map[string]LessonStats `json:"stats"`
		UpdatedAt        time.Time              `json:"updatedAt"`
	}

	// LessonStats is the per-lesson scoring state inside a chapter.
	LessonStats struct {
		Correct        int        `json:"correct"`
		Wrong          int        `json:"wrong"`
		BestScore      int        `json:"bestScore"`
		LastScore      int        `json:"lastScore"`
		LastReviewedAt *time.Time `json:"lastReviewedAt,omitempty"`
	}
)

func (l Learner) IsAdmin() bool { return l.Role == RoleAdmin }

// progressFor finds the progress entry for (chapter, subject), creating it
// with zero values when absent. Subject matching ignores case.
func (l *Learner) progressFor(chapter int, subject string) *ChapterProgress {
	for i := range l.ChaptersProgress {
		p := &l.ChaptersProgress[i]
		if p.Chapter == chapter && strings.EqualFold(p.Subject, subject) {
			return p
		}
	}
	l.ChaptersProgress = append(l.ChaptersProgress, ChapterProgress{
		Chapter:          chapter,
		Subject:          subject,
		CompletedModules: []string{},
		Stats:            map[string]LessonStats{},
	})
	return &l.ChaptersProgress[len(l.ChaptersProgress)-1]
}

type (
	// NewLearner is the registration payload.
	NewLearner struct {
		Username    string `json:"username" validate:"required,alphanum_,min=3,max=50"`
		Name        string `json:"name" validate:"max=100"`
		Email       string `json:"email" validate:"omitempty,email"`
		Phone       string `json:"phone" validate:"max=20"`
		Age         int    `json:"age" validate:"omitempty,gte=3,lte=100"`
		DateOfBirth string `json:"dateOfBirth" validate:"required,dateonly"`

		// optional onboarding selections captured at sign-up
		ClassLevel string `json:"classLevel"`
		Board      string `json:"board"`
		Subject    string `json:"subject"`
		Chapter    string `json:"chapter"`
	}

	// Credentials is the login payload. Students authenticate with their
	// date of birth, admins with a password.
	Credentials struct {
		Username    string `json:"username" validate:"required"`
		DateOfBirth string `json:"dateOfBirth" validate:"required_without=Password,omitempty,dateonly"`
		Password    string `json:"password" validate:"required_without=DateOfBirth"`
	}

	// UpdateOnboarding carries free-text hierarchy selections. Every field
	// is optional; present fields overwrite, absent ones are kept.
	UpdateOnboarding struct {
		Username   *string `json:"username" validate:"omitempty,alphanum_,min=3,max=50"`
		Name       *string `json:"name"`
		Age        *int    `json:"age" validate:"omitempty,gte=3,lte=100"`
		ClassLevel *string `json:"classLevel"`
		Board      *string `json:"board"`
		Subject    *string `json:"subject"`
		Chapter    *string `json:"chapter"`
	}

	// ProgressUpdate is one progress mutation. Chapter accepts either a
	// chapter number or a module id; module ids are normalized to the
	// owning chapter's order before applying. ConceptCompleted together
	// with a module id adds to (or removes from) the completed-module set,
	// and LessonTitle together with IsCorrect records one answered
	// question for that lesson.
	ProgressUpdate struct {
		UserID           string `json:"userId" validate:"required"`
		Chapter          string `json:"chapter"`
		ModuleID         string `json:"moduleId"`
		Subject          string `json:"subject"`
		ConceptCompleted *bool  `json:"conceptCompleted"`
		QuizCompleted    *bool  `json:"quizCompleted"`
		LessonTitle      string `json:"lessonTitle"`
		IsCorrect        *bool  `json:"isCorrect"`
		DeltaScore       int    `json:"deltaScore"`
		ResetLesson      bool   `json:"resetLesson"`
	}
)

// ParseDateOfBirth validates the YYYY-MM-DD form used across payloads.
func ParseDateOfBirth(s string) (time.Time, error) {
	return time.Parse(core.DateOnlyFormat, strings.TrimSpace(s))
}
