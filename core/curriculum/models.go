package curriculum

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type Board struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

type ClassLevel struct {
	ID        string    `json:"_id"`
	BoardID   string    `json:"boardId"`
	Name      string    `json:"name"` // e.g. "5" or "Grade 5"
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Subject struct {
	ID        string    `json:"_id"`
	BoardID   string    `json:"boardId"`
	ClassID   string    `json:"classId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Chapter struct {
	ID        string    `json:"_id"`
	SubjectID string    `json:"subjectId"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Unit struct {
	ID        string    `json:"_id"`
	ChapterID string    `json:"chapterId"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Module is a single lesson under a Chapter (and optionally a Unit),
// holding ordered Items.
type Module struct {
	ID        string    `json:"_id"`
	ChapterID string    `json:"chapterId"`
	UnitID    string    `json:"unitId,omitempty"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizedTitle returns the title key used for module reuse on re-import.
func (m Module) NormalizedTitle() string {
	return strings.ToLower(strings.TrimSpace(m.Title))
}

// Item kinds. The set is closed; Classify maps every raw concept into
// exactly one of these.
const (
	KindStatement      = "statement"
	KindMultipleChoice = "multiple-choice"
	KindFillInTheBlank = "fill-in-the-blank"
	KindRearrange      = "rearrange"
)

// Item is one persisted curriculum item. Which payload fields are set
// depends entirely on Kind: statement carries Text; multiple-choice carries
// Question+Options+Answer; fill-in-the-blank carries Question+Answer;
// rearrange carries Question+Words (mirrored into Options for older readers).
type Item struct {
	ID       string `json:"_id"`
	ModuleID string `json:"moduleId"`
	Order    int    `json:"order"`
	Kind     string `json:"type"`

	Text     string   `json:"text,omitempty"`
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Words    []string `json:"words,omitempty"`

	ImageURL       string   `json:"imageUrl,omitempty"`
	ImagePublicID  string   `json:"imagePublicId,omitempty"`
	Images         []string `json:"images,omitempty"`
	ImagePublicIDs []string `json:"imagePublicIds,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ImportPayload is the authoring-side import request. All hierarchy titles
// are optional; configured defaults fill the gaps.
type ImportPayload struct {
	BoardTitle   string   `json:"board_title"`
	ClassTitle   string   `json:"class_title"`
	SubjectTitle string   `json:"subject_title"`
	ChapterTitle string   `json:"chapter_title"`
	UnitTitle    string   `json:"unit_title"`
	Lessons      []Lesson `json:"lessons"`
}

type Lesson struct {
	LessonTitle string       `json:"lesson_title"`
	Concepts    []RawConcept `json:"concepts"`
}

// RawConcept is the untrusted, loosely-typed authoring shape of one concept.
// It is only ever carried up to Classify, which produces the tagged Item;
// the untagged shape never crosses that boundary.
type RawConcept struct {
	Type     string
	Title    string
	Text     string
	Content  string
	Question string
	Answer   FlexString
	Options  []string
	Words    []string
	ImageURL string
	Image    string
	Images   []string

	raw json.RawMessage
}

// rawConcept mirrors RawConcept for decoding without recursing into
// UnmarshalJSON.
type rawConcept struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Content  string `json:"content"`
	Question string `json:"question"`
	// raw so that an explicit null survives decoding as a defined answer
	Answer   json.RawMessage `json:"answer"`
	Options  []string        `json:"options"`
	Words    []string        `json:"words"`
	ImageURL string          `json:"imageUrl"`
	Image    string          `json:"image"`
	Images   []string        `json:"images"`
}

// UnmarshalJSON keeps a copy of the raw document so that a concept with no
// recognizable fields can still be preserved verbatim as a statement.
func (c *RawConcept) UnmarshalJSON(data []byte) error {
	var rc rawConcept
	if err := json.Unmarshal(data, &rc); err != nil {
		return err
	}
	c.Type = rc.Type
	c.Title = rc.Title
	c.Text = rc.Text
	c.Content = rc.Content
	c.Question = rc.Question
	if len(rc.Answer) > 0 {
		if err := c.Answer.UnmarshalJSON(rc.Answer); err != nil {
			return err
		}
	} else {
		c.Answer = FlexString{}
	}
	c.Options = rc.Options
	c.Words = rc.Words
	c.ImageURL = rc.ImageURL
	c.Image = rc.Image
	c.Images = rc.Images
	c.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Raw returns the concept document as received, for the no-loss fallback.
func (c RawConcept) Raw() string {
	return string(c.raw)
}

// FlexString tolerates non-string JSON scalars (numbers, booleans) that
// non-technical authors routinely put in `answer` fields, normalizing them
// to their string form. It remembers whether the key was present at all:
// "answer: null" still counts as an authored (empty) answer, only a missing
// key is undefined.
type FlexString struct {
	Value   string
	Defined bool
}

func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" {
		*f = FlexString{}
		return nil
	}
	if s == "null" {
		*f = FlexString{Defined: true}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*f = FlexString{Value: str, Defined: true}
		return nil
	}
	// number, bool or structured value: keep the raw text
	*f = FlexString{Value: s, Defined: true}
	return nil
}

func (f FlexString) MarshalJSON() ([]byte, error) {
	if !f.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f FlexString) String() string { return f.Value }

// ImportSummary reports what one import call did.
type ImportSummary struct {
	Board         string             `json:"board"`
	Class         string             `json:"class"`
	Subject       string             `json:"subject"`
	Chapter       string             `json:"chapter"`
	ImportedItems int                `json:"importedItems"`
	Skipped       int                `json:"skipped"`
	PerLesson     []LessonImportStat `json:"perLesson"`
}

type LessonImportStat struct {
	Lesson string `json:"lesson"`
	Items  int    `json:"items"`
}

// SetItemImage defines an image attachment update for one Item.
// Append=true unions Images/ImagePublicIDs onto the existing lists
// (original entries first, in order); otherwise the lists are replaced.
type SetItemImage struct {
	ImageURL       string   `json:"imageUrl"`
	PublicID       string   `json:"publicId"`
	Images         []string `json:"images"`
	ImagePublicIDs []string `json:"imagePublicIds"`
	Append         bool     `json:"append"`
}

func (s SetItemImage) IsEmpty() bool {
	return s.ImageURL == "" && s.Images == nil
}

// parseClassOrder derives a numeric sort order from a class name,
// defaulting to 1 for non-numeric names like "Kindergarten".
func parseClassOrder(name string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(name)); err == nil && n > 0 {
		return n
	}
	return 1
}

func dropEmpty(vals []string) []string {
	if vals == nil {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
