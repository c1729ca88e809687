package curriculum

import (
	"context"
	"errors"
	"fmt"

	"github.com/hoshiyaar/paathshala/core"
)

var (
	// errors
	ErrNotFound     = errors.New("not found")
	ErrAlreadyExist = errors.New("already exists")
)

type (
	BoardFilter struct {
		ID   string
		Name string
	}

	ClassFilter struct {
		ID      string
		BoardID string
		Name    string
	}

	SubjectFilter struct {
		ID      string
		BoardID string
		ClassID string
		Name    string
	}

	ChapterFilter struct {
		ID        string
		SubjectID string
		Title     string
	}

	ModuleFilter struct {
		ChapterID string
		UnitID    string
	}

	// Repository is the document-store surface the engine relies on.
	// Ensure* methods are idempotent insert-if-absent operations scoped by
	// the parent reference plus the name/title; a uniqueness conflict on
	// insert must be resolved by re-reading the existing row, never
	// surfaced as an error.
	Repository interface {
		EnsureBoard(ctx context.Context, board Board) (Board, error)
		GetBoard(ctx context.Context, filter BoardFilter) (Board, error)
		QueryBoards(ctx context.Context) ([]Board, error)

		EnsureClassLevel(ctx context.Context, class ClassLevel) (ClassLevel, error)
		GetClassLevel(ctx context.Context, filter ClassFilter) (ClassLevel, error)
		QueryClassLevels(ctx context.Context, boardID string) ([]ClassLevel, error)

		EnsureSubject(ctx context.Context, subject Subject) (Subject, error)
		GetSubject(ctx context.Context, filter SubjectFilter) (Subject, error)
		QuerySubjects(ctx context.Context, filter SubjectFilter) ([]Subject, error)

		EnsureChapter(ctx context.Context, chapter Chapter) (Chapter, error)
		GetChapter(ctx context.Context, filter ChapterFilter) (Chapter, error)
		QueryChapters(ctx context.Context, subjectID string) ([]Chapter, error)
		// AttachChaptersToSubject adopts subject-less chapters into the
		// given subject, returning the number of chapters updated.
		AttachChaptersToSubject(ctx context.Context, subjectID string) (int, error)

		EnsureUnit(ctx context.Context, unit Unit) (Unit, error)
		QueryUnits(ctx context.Context, chapterID string) ([]Unit, error)

		CreateModule(ctx context.Context, module Module) (Module, error)
		GetModule(ctx context.Context, id string) (Module, error)
		QueryModules(ctx context.Context, filter ModuleFilter) ([]Module, error)
		// AssignModulesUnit adopts the chapter's unit-less modules into the
		// given unit, returning the number of modules updated.
		AssignModulesUnit(ctx context.Context, chapterID, unitID string) (int, error)

		CreateItem(ctx context.Context, item Item) (Item, error)
		GetItem(ctx context.Context, id string) (Item, error)
		QueryItems(ctx context.Context, moduleID string) ([]Item, error)
		DeleteModuleItems(ctx context.Context, moduleID string) error
		UpdateItemImages(ctx context.Context, id string, upd SetItemImage) (Item, error)
	}

	Service struct {
		repo   Repository
		conf   *core.Config
		logger core.Logger
	}
)

func NewService(repo Repository, conf *core.Config, logger core.Logger) *Service {
	return &Service{repo: repo, conf: conf, logger: logger}
}

// Import reconciles a loosely-structured lesson payload against the stored
// hierarchy. Hierarchy levels are found-or-created in strict parent-before-
// child order; lessons reuse existing modules by normalized title with
// replace semantics (the module's items are wiped and re-added); individual
// concept failures are counted as skipped without aborting the import.
// Re-running the same import yields the same hierarchy ids and item counts.
func (svc *Service) Import(ctx context.Context, payload ImportPayload) (ImportSummary, error) {
	if payload.Lessons == nil {
		return ImportSummary{}, core.NewValidationError(
			errors.New("invalid payload, expect {board_title?, class_title?, subject_title?, chapter_title?, unit_title?, lessons[]}"),
			core.FieldError{Field: "lessons", Error: "this field is required"},
		)
	}

	boardName := core.CleanString(payload.BoardTitle)
	if boardName == "" {
		boardName = svc.conf.Curriculum.DefaultBoard
	}
	className := core.CleanString(payload.ClassTitle)
	if className == "" {
		className = svc.conf.Curriculum.DefaultClass
	}
	subjectName := core.CleanString(payload.SubjectTitle)
	if subjectName == "" {
		subjectName = svc.conf.Curriculum.DefaultSubject
	}
	chapterTitle := core.CleanString(payload.ChapterTitle)
	if chapterTitle == "" {
		chapterTitle = "Chapter"
	}
	unitTitle := core.CleanString(payload.UnitTitle)
	if unitTitle == "" {
		unitTitle = "Unit"
	}

	board, err := svc.repo.EnsureBoard(ctx, Board{Name: boardName})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("ensuring board: %w", err)
	}
	class, err := svc.repo.EnsureClassLevel(ctx, ClassLevel{
		BoardID: board.ID,
		Name:    className,
		Order:   parseClassOrder(className),
	})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("ensuring class level: %w", err)
	}
	subject, err := svc.repo.EnsureSubject(ctx, Subject{
		BoardID: board.ID,
		ClassID: class.ID,
		Name:    subjectName,
	})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("ensuring subject: %w", err)
	}
	chapter, err := svc.repo.EnsureChapter(ctx, Chapter{
		SubjectID: subject.ID,
		Title:     chapterTitle,
		Order:     1,
	})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("ensuring chapter: %w", err)
	}
	unit, err := svc.repo.EnsureUnit(ctx, Unit{
		ChapterID: chapter.ID,
		Title:     unitTitle,
		Order:     1,
	})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("ensuring unit: %w", err)
	}

	existing, err := svc.repo.QueryModules(ctx, ModuleFilter{ChapterID: chapter.ID})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("querying modules: %w", err)
	}
	byTitle := make(map[string]Module, len(existing))
	var maxOrder int
	for _, mod := range existing {
		byTitle[mod.NormalizedTitle()] = mod
		if mod.Order > maxOrder {
			maxOrder = mod.Order
		}
	}

	summary := ImportSummary{
		Board:     board.Name,
		Class:     class.Name,
		Subject:   subject.Name,
		Chapter:   chapter.Title,
		PerLesson: make([]LessonImportStat, 0, len(payload.Lessons)),
	}

	for _, lesson := range payload.Lessons {
		mod, ok := byTitle[Module{Title: lesson.LessonTitle}.NormalizedTitle()]
		if ok {
			// replace semantics: a re-imported lesson is a complete redefinition
			if err = svc.repo.DeleteModuleItems(ctx, mod.ID); err != nil {
				return summary, fmt.Errorf("clearing module items: %w", err)
			}
		} else {
			maxOrder++
			mod, err = svc.repo.CreateModule(ctx, Module{
				ChapterID: chapter.ID,
				UnitID:    unit.ID,
				Title:     lesson.LessonTitle,
				Order:     maxOrder,
			})
			if err != nil {
				return summary, fmt.Errorf("creating module: %w", err)
			}
			byTitle[mod.NormalizedTitle()] = mod
		}

		var created int
		for i, concept := range lesson.Concepts {
			item := Classify(concept)
			item.ModuleID = mod.ID
			item.Order = i + 1
			if _, err = svc.repo.CreateItem(ctx, item); err != nil {
				// a single bad concept must not abort its siblings
				summary.Skipped++
				if svc.logger != nil {
					svc.logger.Warn(fmt.Sprintf("import: skipping concept %d of lesson %q: %v", i+1, lesson.LessonTitle, err))
				}
				continue
			}
			created++
			summary.ImportedItems++
		}
		summary.PerLesson = append(summary.PerLesson, LessonImportStat{Lesson: lesson.LessonTitle, Items: created})
	}
	return summary, nil
}

func (svc *Service) Boards(ctx context.Context) ([]Board, error) {
	return svc.repo.QueryBoards(ctx)
}

func (svc *Service) Classes(ctx context.Context, boardName string) ([]ClassLevel, error) {
	board, err := svc.repo.GetBoard(ctx, BoardFilter{Name: core.CleanString(boardName)})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []ClassLevel{}, nil
		}
		return nil, fmt.Errorf("finding board: %w", err)
	}
	return svc.repo.QueryClassLevels(ctx, board.ID)
}

// SubjectListOptions scopes a subject listing either by known ids (a
// learner's resolved selections) or by board/class names.
type SubjectListOptions struct {
	BoardID string
	ClassID string
	Board   string
	Class   string
}

func (svc *Service) Subjects(ctx context.Context, opts SubjectListOptions) ([]Subject, error) {
	if opts.BoardID != "" || opts.ClassID != "" {
		return svc.repo.QuerySubjects(ctx, SubjectFilter{BoardID: opts.BoardID, ClassID: opts.ClassID})
	}

	board, err := svc.repo.GetBoard(ctx, BoardFilter{Name: core.CleanString(opts.Board)})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Subject{}, nil
		}
		return nil, fmt.Errorf("finding board: %w", err)
	}
	filter := SubjectFilter{BoardID: board.ID}
	if class := core.CleanString(opts.Class); class != "" {
		cls, err := svc.repo.GetClassLevel(ctx, ClassFilter{BoardID: board.ID, Name: class})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return []Subject{}, nil
			}
			return nil, fmt.Errorf("finding class level: %w", err)
		}
		filter.ClassID = cls.ID
	}
	return svc.repo.QuerySubjects(ctx, filter)
}

// ChapterListOptions scopes a chapter listing by a known subject id or by
// board/subject/class names.
type ChapterListOptions struct {
	SubjectID string
	Board     string
	Subject   string
	Class     string
}

func (svc *Service) Chapters(ctx context.Context, opts ChapterListOptions) ([]Chapter, error) {
	if opts.SubjectID != "" {
		return svc.repo.QueryChapters(ctx, opts.SubjectID)
	}

	board, err := svc.repo.GetBoard(ctx, BoardFilter{Name: core.CleanString(opts.Board)})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Chapter{}, nil
		}
		return nil, fmt.Errorf("finding board: %w", err)
	}
	filter := SubjectFilter{BoardID: board.ID, Name: core.CleanString(opts.Subject)}
	if class := core.CleanString(opts.Class); class != "" {
		cls, err := svc.repo.GetClassLevel(ctx, ClassFilter{BoardID: board.ID, Name: class})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return []Chapter{}, nil
			}
			return nil, fmt.Errorf("finding class level: %w", err)
		}
		filter.ClassID = cls.ID
	}
	subject, err := svc.repo.GetSubject(ctx, filter)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Chapter{}, nil
		}
		return nil, fmt.Errorf("finding subject: %w", err)
	}
	return svc.repo.QueryChapters(ctx, subject.ID)
}

func (svc *Service) Units(ctx context.Context, chapterID string) ([]Unit, error) {
	if chapterID == "" {
		return nil, core.NewValidationError(errors.New("chapterId is required"))
	}
	return svc.repo.QueryUnits(ctx, chapterID)
}

func (svc *Service) Modules(ctx context.Context, filter ModuleFilter) ([]Module, error) {
	if filter.ChapterID == "" && filter.UnitID == "" {
		return nil, core.NewValidationError(errors.New("chapterId or unitId is required"))
	}
	if filter.UnitID != "" {
		// unit scope is the narrower one
		filter.ChapterID = ""
	}
	return svc.repo.QueryModules(ctx, filter)
}

func (svc *Service) Items(ctx context.Context, moduleID string) ([]Item, error) {
	if moduleID == "" {
		return nil, core.NewValidationError(errors.New("moduleId is required"))
	}
	return svc.repo.QueryItems(ctx, moduleID)
}

// ModuleChapter resolves a module id to the module and its owning chapter.
func (svc *Service) ModuleChapter(ctx context.Context, moduleID string) (Module, Chapter, error) {
	mod, err := svc.repo.GetModule(ctx, moduleID)
	if err != nil {
		return Module{}, Chapter{}, fmt.Errorf("finding module: %w", err)
	}
	chapter, err := svc.repo.GetChapter(ctx, ChapterFilter{ID: mod.ChapterID})
	if err != nil {
		return mod, Chapter{}, fmt.Errorf("finding chapter: %w", err)
	}
	return mod, chapter, nil
}

// SetItemImage updates an item's image attachments outside the import flow.
func (svc *Service) SetItemImage(ctx context.Context, id string, upd SetItemImage) (Item, error) {
	if upd.IsEmpty() {
		return Item{}, core.NewValidationError(errors.New("imageUrl or images[] is required"))
	}
	upd.Images = dropEmpty(upd.Images)
	upd.ImagePublicIDs = dropEmpty(upd.ImagePublicIDs)
	return svc.repo.UpdateItemImages(ctx, id, upd)
}

// BackfillSubjectsResult reports a subject back-fill run.
type BackfillSubjectsResult struct {
	Board           string `json:"board"`
	Class           string `json:"class"`
	Subject         string `json:"subject"`
	UpdatedChapters int    `json:"updatedChapters"`
}

// BackfillSubjects ensures the board/class/subject chain exists and adopts
// subject-less chapters into it. A retrofit utility for data created before
// subjects were introduced.
func (svc *Service) BackfillSubjects(ctx context.Context, boardName, className, subjectName string) (BackfillSubjectsResult, error) {
	if boardName = core.CleanString(boardName); boardName == "" {
		boardName = svc.conf.Curriculum.DefaultBoard
	}
	if className = core.CleanString(className); className == "" {
		className = svc.conf.Curriculum.DefaultClass
	}
	if subjectName = core.CleanString(subjectName); subjectName == "" {
		subjectName = svc.conf.Curriculum.DefaultSubject
	}

	board, err := svc.repo.EnsureBoard(ctx, Board{Name: boardName})
	if err != nil {
		return BackfillSubjectsResult{}, fmt.Errorf("ensuring board: %w", err)
	}
	class, err := svc.repo.EnsureClassLevel(ctx, ClassLevel{BoardID: board.ID, Name: className, Order: parseClassOrder(className)})
	if err != nil {
		return BackfillSubjectsResult{}, fmt.Errorf("ensuring class level: %w", err)
	}
	subject, err := svc.repo.EnsureSubject(ctx, Subject{BoardID: board.ID, ClassID: class.ID, Name: subjectName})
	if err != nil {
		return BackfillSubjectsResult{}, fmt.Errorf("ensuring subject: %w", err)
	}
	updated, err := svc.repo.AttachChaptersToSubject(ctx, subject.ID)
	if err != nil {
		return BackfillSubjectsResult{}, fmt.Errorf("attaching chapters: %w", err)
	}
	return BackfillSubjectsResult{
		Board:           board.Name,
		Class:           class.Name,
		Subject:         subject.Name,
		UpdatedChapters: updated,
	}, nil
}

// BackfillUnitsResult reports a unit back-fill run.
type BackfillUnitsResult struct {
	ChaptersProcessed int `json:"chaptersProcessed"`
	UnitsCreated      int `json:"unitsCreated"`
	ModulesAssigned   int `json:"modulesAssigned"`
}

// BackfillUnits ensures each chapter (or the one given) has at least one
// unit and adopts its unit-less modules into it.
func (svc *Service) BackfillUnits(ctx context.Context, chapterID string) (BackfillUnitsResult, error) {
	var chapters []Chapter
	if chapterID != "" {
		chapter, err := svc.repo.GetChapter(ctx, ChapterFilter{ID: chapterID})
		if err != nil {
			return BackfillUnitsResult{}, fmt.Errorf("finding chapter: %w", err)
		}
		chapters = []Chapter{chapter}
	} else {
		var err error
		if chapters, err = svc.repo.QueryChapters(ctx, ""); err != nil {
			return BackfillUnitsResult{}, fmt.Errorf("querying chapters: %w", err)
		}
	}

	var res BackfillUnitsResult
	for _, chapter := range chapters {
		units, err := svc.repo.QueryUnits(ctx, chapter.ID)
		if err != nil {
			return res, fmt.Errorf("querying units: %w", err)
		}
		var unit Unit
		if len(units) > 0 {
			unit = units[0]
		} else {
			if unit, err = svc.repo.EnsureUnit(ctx, Unit{ChapterID: chapter.ID, Title: "Unit 1", Order: 1}); err != nil {
				return res, fmt.Errorf("ensuring unit: %w", err)
			}
			res.UnitsCreated++
		}
		assigned, err := svc.repo.AssignModulesUnit(ctx, chapter.ID, unit.ID)
		if err != nil {
			return res, fmt.Errorf("assigning modules: %w", err)
		}
		res.ModulesAssigned += assigned
		res.ChaptersProcessed++
	}
	return res, nil
}
