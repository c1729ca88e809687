package dummy

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hoshiyaar/paathshala/core/curriculum"
)

// CurriculumRepo is an in-memory curriculum.Repository for tests.
type CurriculumRepo struct {
	mu       sync.RWMutex
	boards   []curriculum.Board
	classes  []curriculum.ClassLevel
	subjects []curriculum.Subject
	chapters []curriculum.Chapter
	units    []curriculum.Unit
	modules  []curriculum.Module
	items    []curriculum.Item
}

var _ curriculum.Repository = (*CurriculumRepo)(nil)

func NewCurriculumRepo() *CurriculumRepo { return &CurriculumRepo{} }

func (repo *CurriculumRepo) Clear() {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.boards = nil
	repo.classes = nil
	repo.subjects = nil
	repo.chapters = nil
	repo.units = nil
	repo.modules = nil
	repo.items = nil
}

func (repo *CurriculumRepo) EnsureBoard(ctx context.Context, board curriculum.Board) (curriculum.Board, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, b := range repo.boards {
		if b.Name == board.Name {
			return b, nil
		}
	}
	board.ID = uuid.NewString()
	repo.boards = append(repo.boards, board)
	return board, nil
}

func (repo *CurriculumRepo) GetBoard(ctx context.Context, filter curriculum.BoardFilter) (curriculum.Board, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, b := range repo.boards {
		if filter.ID != "" && b.ID != filter.ID {
			continue
		}
		if filter.Name != "" && b.Name != filter.Name {
			continue
		}
		return b, nil
	}
	return curriculum.Board{}, curriculum.ErrNotFound
}

func (repo *CurriculumRepo) QueryBoards(ctx context.Context) ([]curriculum.Board, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	return append([]curriculum.Board{}, repo.boards...), nil
}

func (repo *CurriculumRepo) EnsureClassLevel(ctx context.Context, class curriculum.ClassLevel) (curriculum.ClassLevel, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, c := range repo.classes {
		if c.BoardID == class.BoardID && c.Name == class.Name {
			return c, nil
		}
	}
	class.ID = uuid.NewString()
	repo.classes = append(repo.classes, class)
	return class, nil
}

func (repo *CurriculumRepo) GetClassLevel(ctx context.Context, filter curriculum.ClassFilter) (curriculum.ClassLevel, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, c := range repo.classes {
		if filter.ID != "" && c.ID != filter.ID {
			continue
		}
		if filter.BoardID != "" && c.BoardID != filter.BoardID {
			continue
		}
		if filter.Name != "" && c.Name != filter.Name {
			continue
		}
		return c, nil
	}
	return curriculum.ClassLevel{}, curriculum.ErrNotFound
}

func (repo *CurriculumRepo) QueryClassLevels(ctx context.Context, boardID string) ([]curriculum.ClassLevel, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	classes := make([]curriculum.ClassLevel, 0)
	for _, c := range repo.classes {
		if boardID == "" || c.BoardID == boardID {
			classes = append(classes, c)
		}
	}
	return classes, nil
}

func (repo *CurriculumRepo) EnsureSubject(ctx context.Context, subject curriculum.Subject) (curriculum.Subject, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, s := range repo.subjects {
		if s.BoardID == subject.BoardID && s.ClassID == subject.ClassID && s.Name == subject.Name {
			return s, nil
		}
	}
	subject.ID = uuid.NewString()
	repo.subjects = append(repo.subjects, subject)
	return subject, nil
}

func (repo *CurriculumRepo) GetSubject(ctx context.Context, filter curriculum.SubjectFilter) (curriculum.Subject, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, s := range repo.subjects {
		if filter.ID != "" && s.ID != filter.ID {
			continue
		}
		if filter.BoardID != "" && s.BoardID != filter.BoardID {
			continue
		}
		if filter.ClassID != "" && s.ClassID != filter.ClassID {
			continue
		}
		if filter.Name != "" && s.Name != filter.Name {
			continue
		}
		return s, nil
	}
	return curriculum.Subject{}, curriculum.ErrNotFound
}

func (repo *CurriculumRepo) QuerySubjects(ctx context.Context, filter curriculum.SubjectFilter) ([]curriculum.Subject, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	subjects := make([]curriculum.Subject, 0)
	for _, s := range repo.subjects {
		if filter.BoardID != "" && s.BoardID != filter.BoardID {
			continue
		}
		if filter.ClassID != "" && s.ClassID != filter.ClassID {
			continue
		}
		subjects = append(subjects, s)
	}
	return subjects, nil
}

func (repo *CurriculumRepo) EnsureChapter(ctx context.Context, chapter curriculum.Chapter) (curriculum.Chapter, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, c := range repo.chapters {
		if c.SubjectID == chapter.SubjectID && c.Title == chapter.Title {
			return c, nil
		}
	}
	chapter.ID = uuid.NewString()
	repo.chapters = append(repo.chapters, chapter)
	return chapter, nil
}

func (repo *CurriculumRepo) GetChapter(ctx context.Context, filter curriculum.ChapterFilter) (curriculum.Chapter, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, c := range repo.chapters {
		if filter.ID != "" && c.ID != filter.ID {
			continue
		}
		if filter.SubjectID != "" && c.SubjectID != filter.SubjectID {
			continue
		}
		if filter.Title != "" && c.Title != filter.Title {
			continue
		}
		return c, nil
	}
	return curriculum.Chapter{}, curriculum.ErrNotFound
}

func (repo *CurriculumRepo) QueryChapters(ctx context.Context, subjectID string) ([]curriculum.Chapter, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	chapters := make([]curriculum.Chapter, 0)
	for _, c := range repo.chapters {
		if subjectID == "" || c.SubjectID == subjectID {
			chapters = append(chapters, c)
		}
	}
	return chapters, nil
}

func (repo *CurriculumRepo) AttachChaptersToSubject(ctx context.Context, subjectID string) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var updated int
	for i := range repo.chapters {
		if repo.chapters[i].SubjectID == "" {
			repo.chapters[i].SubjectID = subjectID
			updated++
		}
	}
	return updated, nil
}

func (repo *CurriculumRepo) EnsureUnit(ctx context.Context, unit curriculum.Unit) (curriculum.Unit, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, u := range repo.units {
		if u.ChapterID == unit.ChapterID && u.Title == unit.Title {
			return u, nil
		}
	}
	unit.ID = uuid.NewString()
	repo.units = append(repo.units, unit)
	return unit, nil
}

func (repo *CurriculumRepo) QueryUnits(ctx context.Context, chapterID string) ([]curriculum.Unit, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	units := make([]curriculum.Unit, 0)
	for _, u := range repo.units {
		if chapterID == "" || u.ChapterID == chapterID {
			units = append(units, u)
		}
	}
	return units, nil
}

func (repo *CurriculumRepo) CreateModule(ctx context.Context, module curriculum.Module) (curriculum.Module, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	module.ID = uuid.NewString()
	repo.modules = append(repo.modules, module)
	return module, nil
}

func (repo *CurriculumRepo) GetModule(ctx context.Context, id string) (curriculum.Module, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, m := range repo.modules {
		if m.ID == id {
			return m, nil
		}
	}
	return curriculum.Module{}, curriculum.ErrNotFound
}

func (repo *CurriculumRepo) QueryModules(ctx context.Context, filter curriculum.ModuleFilter) ([]curriculum.Module, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	modules := make([]curriculum.Module, 0)
	for _, m := range repo.modules {
		if filter.ChapterID != "" && m.ChapterID != filter.ChapterID {
			continue
		}
		if filter.UnitID != "" && m.UnitID != filter.UnitID {
			continue
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func (repo *CurriculumRepo) AssignModulesUnit(ctx context.Context, chapterID, unitID string) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var updated int
	for i := range repo.modules {
		if repo.modules[i].ChapterID == chapterID && repo.modules[i].UnitID == "" {
			repo.modules[i].UnitID = unitID
			updated++
		}
	}
	return updated, nil
}

func (repo *CurriculumRepo) CreateItem(ctx context.Context, item curriculum.Item) (curriculum.Item, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	item.ID = uuid.NewString()
	repo.items = append(repo.items, item)
	return item, nil
}

func (repo *CurriculumRepo) GetItem(ctx context.Context, id string) (curriculum.Item, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, it := range repo.items {
		if it.ID == id {
			return it, nil
		}
	}
	return curriculum.Item{}, curriculum.ErrNotFound
}

func (repo *CurriculumRepo) QueryItems(ctx context.Context, moduleID string) ([]curriculum.Item, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	items := make([]curriculum.Item, 0)
	for _, it := range repo.items {
		if it.ModuleID == moduleID {
			items = append(items, it)
		}
	}
	return items, nil
}

func (repo *CurriculumRepo) DeleteModuleItems(ctx context.Context, moduleID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	kept := repo.items[:0]
	for _, it := range repo.items {
		if it.ModuleID != moduleID {
			kept = append(kept, it)
		}
	}
	repo.items = kept
	return nil
}

func (repo *CurriculumRepo) UpdateItemImages(ctx context.Context, id string, upd curriculum.SetItemImage) (curriculum.Item, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.items {
		if repo.items[i].ID != id {
			continue
		}
		it := &repo.items[i]
		if upd.ImageURL != "" {
			it.ImageURL = upd.ImageURL
			it.ImagePublicID = upd.PublicID
		}
		if upd.Images != nil {
			if upd.Append {
				it.Images = append(it.Images, upd.Images...)
				it.ImagePublicIDs = append(it.ImagePublicIDs, upd.ImagePublicIDs...)
			} else {
				it.Images = append([]string{}, upd.Images...)
				it.ImagePublicIDs = append([]string{}, upd.ImagePublicIDs...)
			}
		}
		return *it, nil
	}
	return curriculum.Item{}, curriculum.ErrNotFound
}
