package gormrepos

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/hoshiyaar/paathshala/core/curriculum"
	"github.com/hoshiyaar/paathshala/core/learner"
	"github.com/hoshiyaar/paathshala/core/review"
)

// Models lists every table for auto-migration.
func Models() []interface{} {
	return []interface{}{
		&board{}, &classLevel{}, &subject{}, &chapter{}, &unit{},
		&module{}, &curriculumItem{}, &learnerRow{}, &incorrectQuestion{},
	}
}

type board struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"uniqueIndex;size:150;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (board) TableName() string { return "boards" }

func (b board) toCore() curriculum.Board {
	return curriculum.Board{ID: b.ID, Name: b.Name, CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt}
}

type classLevel struct {
	ID        string `gorm:"primaryKey;size:36"`
	BoardID   string `gorm:"size:36;uniqueIndex:uidx_class_board_name"`
	Name      string `gorm:"size:150;not null;uniqueIndex:uidx_class_board_name"`
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (classLevel) TableName() string { return "class_levels" }

func (c classLevel) toCore() curriculum.ClassLevel {
	return curriculum.ClassLevel{
		ID: c.ID, BoardID: c.BoardID, Name: c.Name, Order: c.Order,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

type subject struct {
	ID        string `gorm:"primaryKey;size:36"`
	BoardID   string `gorm:"size:36;uniqueIndex:uidx_subject_scope_name"`
	ClassID   string `gorm:"size:36;uniqueIndex:uidx_subject_scope_name"`
	Name      string `gorm:"size:150;not null;uniqueIndex:uidx_subject_scope_name"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (subject) TableName() string { return "subjects" }

func (s subject) toCore() curriculum.Subject {
	return curriculum.Subject{
		ID: s.ID, BoardID: s.BoardID, ClassID: s.ClassID, Name: s.Name,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

type chapter struct {
	ID        string `gorm:"primaryKey;size:36"`
	SubjectID string `gorm:"size:36;uniqueIndex:uidx_chapter_subject_title"`
	Title     string `gorm:"size:250;not null;uniqueIndex:uidx_chapter_subject_title"`
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (chapter) TableName() string { return "chapters" }

func (c chapter) toCore() curriculum.Chapter {
	return curriculum.Chapter{
		ID: c.ID, SubjectID: c.SubjectID, Title: c.Title, Order: c.Order,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

type unit struct {
	ID        string `gorm:"primaryKey;size:36"`
	ChapterID string `gorm:"size:36;uniqueIndex:uidx_unit_chapter_title"`
	Title     string `gorm:"size:250;not null;uniqueIndex:uidx_unit_chapter_title"`
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (unit) TableName() string { return "units" }

func (u unit) toCore() curriculum.Unit {
	return curriculum.Unit{
		ID: u.ID, ChapterID: u.ChapterID, Title: u.Title, Order: u.Order,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

type module struct {
	ID        string `gorm:"primaryKey;size:36"`
	ChapterID string `gorm:"size:36;index"`
	UnitID    string `gorm:"size:36;index"`
	Title     string `gorm:"size:250;not null"`
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (module) TableName() string { return "modules" }

func (m module) toCore() curriculum.Module {
	return curriculum.Module{
		ID: m.ID, ChapterID: m.ChapterID, UnitID: m.UnitID, Title: m.Title, Order: m.Order,
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

type curriculumItem struct {
	ID             string `gorm:"primaryKey;size:36"`
	ModuleID       string `gorm:"size:36;index:idx_item_module_order"`
	Order          int    `gorm:"index:idx_item_module_order"`
	Kind           string `gorm:"size:30;not null"`
	Text           string `gorm:"type:text"`
	Question       string `gorm:"type:text"`
	Options        datatypes.JSON
	Answer         string `gorm:"type:text"`
	Words          datatypes.JSON
	ImageURL       string `gorm:"size:500"`
	ImagePublicID  string `gorm:"size:250"`
	Images         datatypes.JSON
	ImagePublicIDs datatypes.JSON
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (curriculumItem) TableName() string { return "curriculum_items" }

func (i curriculumItem) toCore() curriculum.Item {
	return curriculum.Item{
		ID:             i.ID,
		ModuleID:       i.ModuleID,
		Order:          i.Order,
		Kind:           i.Kind,
		Text:           i.Text,
		Question:       i.Question,
		Options:        fromJSONList(i.Options),
		Answer:         i.Answer,
		Words:          fromJSONList(i.Words),
		ImageURL:       i.ImageURL,
		ImagePublicID:  i.ImagePublicID,
		Images:         fromJSONList(i.Images),
		ImagePublicIDs: fromJSONList(i.ImagePublicIDs),
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

func itemFromCore(it curriculum.Item) curriculumItem {
	return curriculumItem{
		ID:             it.ID,
		ModuleID:       it.ModuleID,
		Order:          it.Order,
		Kind:           it.Kind,
		Text:           it.Text,
		Question:       it.Question,
		Options:        toJSONList(it.Options),
		Answer:         it.Answer,
		Words:          toJSONList(it.Words),
		ImageURL:       it.ImageURL,
		ImagePublicID:  it.ImagePublicID,
		Images:         toJSONList(it.Images),
		ImagePublicIDs: toJSONList(it.ImagePublicIDs),
	}
}

type learnerRow struct {
	ID          string `gorm:"primaryKey;size:36"`
	Username    string `gorm:"uniqueIndex;size:150;not null"`
	Name        string `gorm:"size:250"`
	Email       string `gorm:"size:250"`
	Phone       string `gorm:"size:50"`
	Age         int
	DateOfBirth *time.Time

	ClassLevel string `gorm:"size:150"`
	Board      string `gorm:"size:150"`
	Subject    string `gorm:"size:150"`
	Chapter    string `gorm:"size:250"`

	BoardID   string `gorm:"size:36"`
	ClassID   string `gorm:"size:36"`
	SubjectID string `gorm:"size:36"`
	ChapterID string `gorm:"size:36"`

	OnboardingCompleted bool
	Role                string `gorm:"size:20;not null;default:student"`

	ChaptersProgress datatypes.JSON
	PasswordHash     []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (learnerRow) TableName() string { return "learners" }

func (r learnerRow) toCore() (learner.Learner, error) {
	progress := []learner.ChapterProgress{}
	if len(r.ChaptersProgress) > 0 {
		if err := json.Unmarshal(r.ChaptersProgress, &progress); err != nil {
			return learner.Learner{}, err
		}
	}
	return learner.Learner{
		ID:                  r.ID,
		Username:            r.Username,
		Name:                r.Name,
		Email:               r.Email,
		Phone:               r.Phone,
		Age:                 r.Age,
		DateOfBirth:         r.DateOfBirth,
		ClassLevel:          r.ClassLevel,
		Board:               r.Board,
		Subject:             r.Subject,
		Chapter:             r.Chapter,
		BoardID:             r.BoardID,
		ClassID:             r.ClassID,
		SubjectID:           r.SubjectID,
		ChapterID:           r.ChapterID,
		OnboardingCompleted: r.OnboardingCompleted,
		Role:                r.Role,
		ChaptersProgress:    progress,
		PasswordHash:        r.PasswordHash,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}, nil
}

func learnerFromCore(l learner.Learner) (learnerRow, error) {
	progress := l.ChaptersProgress
	if progress == nil {
		progress = []learner.ChapterProgress{}
	}
	raw, err := json.Marshal(progress)
	if err != nil {
		return learnerRow{}, err
	}
	return learnerRow{
		ID:                  l.ID,
		Username:            l.Username,
		Name:                l.Name,
		Email:               l.Email,
		Phone:               l.Phone,
		Age:                 l.Age,
		DateOfBirth:         l.DateOfBirth,
		ClassLevel:          l.ClassLevel,
		Board:               l.Board,
		Subject:             l.Subject,
		Chapter:             l.Chapter,
		BoardID:             l.BoardID,
		ClassID:             l.ClassID,
		SubjectID:           l.SubjectID,
		ChapterID:           l.ChapterID,
		OnboardingCompleted: l.OnboardingCompleted,
		Role:                l.Role,
		ChaptersProgress:    datatypes.JSON(raw),
		PasswordHash:        l.PasswordHash,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}, nil
}

type incorrectQuestion struct {
	ID         string `gorm:"primaryKey;size:36"`
	UserID     string `gorm:"size:36;uniqueIndex:uidx_incorrect_user_question"`
	QuestionID string `gorm:"size:250;not null;uniqueIndex:uidx_incorrect_user_question"`
	ModuleID   string `gorm:"size:36;index"`
	Lesson     string `gorm:"size:250"`
	Subject    string `gorm:"size:150"`
	Chapter    int
	Count      int `gorm:"not null;default:0"`
	FirstSeen  time.Time
	LastSeen   time.Time `gorm:"index"`
}

func (incorrectQuestion) TableName() string { return "user_incorrect_questions" }

func (q incorrectQuestion) toCore() review.IncorrectQuestion {
	return review.IncorrectQuestion{
		ID:         q.ID,
		UserID:     q.UserID,
		QuestionID: q.QuestionID,
		ModuleID:   q.ModuleID,
		Lesson:     q.Lesson,
		Subject:    q.Subject,
		Chapter:    q.Chapter,
		Count:      q.Count,
		FirstSeen:  q.FirstSeen,
		LastSeen:   q.LastSeen,
	}
}

func toJSONList(vals []string) datatypes.JSON {
	if vals == nil {
		vals = []string{}
	}
	raw, _ := json.Marshal(vals)
	return datatypes.JSON(raw)
}

func fromJSONList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var vals []string
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil
	}
	if len(vals) == 0 {
		return nil
	}
	return vals
}
