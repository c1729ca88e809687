package review

import "time"

// IncorrectQuestion records one question a learner keeps getting wrong,
// for spaced revision. QuestionID carries the module id as a prefix
// ("<moduleId>_<n>") in older records, which BackfillModuleIDs splits out.
type IncorrectQuestion struct {
	ID         string    `json:"_id"`
	UserID     string    `json:"userId"`
	QuestionID string    `json:"questionId"`
	ModuleID   string    `json:"moduleId,omitempty"`
	Lesson     string    `json:"lesson,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Chapter    int       `json:"chapter,omitempty"`
	Count      int       `json:"count"`
	FirstSeen  time.Time `json:"firstSeen"`
	LastSeen   time.Time `json:"lastSeen"`
}

// NewIncorrect is the upsert payload for a wrong answer.
type NewIncorrect struct {
	UserID     string `json:"userId" validate:"required"`
	QuestionID string `json:"questionId" validate:"required"`
	ModuleID   string `json:"moduleId"`
	Lesson     string `json:"lesson"`
	Subject    string `json:"subject"`
	Chapter    int    `json:"chapter"`
}

// Filter scopes an incorrect-question listing. MissingModuleID selects
// records whose module id was never set, for the back-fill sweep.
type Filter struct {
	UserID          string
	ModuleID        string
	Subject         string
	Chapter         int
	MissingModuleID bool
	Limit           int
}
