package gormrepos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshiyaar/paathshala/core/curriculum"
)

// CurriculumRepo implements curriculum.Repository on Postgres.
type CurriculumRepo struct {
	db *gorm.DB
}

var _ curriculum.Repository = (*CurriculumRepo)(nil)

func NewCurriculumRepo(db *gorm.DB) *CurriculumRepo {
	return &CurriculumRepo{db: db}
}

// ensure runs the find-or-create dance for one row: a lost insert race
// surfaces as gorm.ErrDuplicatedKey (TranslateError) and resolves by
// re-reading the winner.
func ensure[T any](db *gorm.DB, query T, create func() T) (T, error) {
	var row T
	err := db.Where(&query).First(&row).Error
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return row, err
	}
	row = create()
	if err = db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var winner T
			if rerr := db.Where(&query).First(&winner).Error; rerr == nil {
				return winner, nil
			}
		}
		return row, err
	}
	return row, nil
}

func (repo *CurriculumRepo) EnsureBoard(ctx context.Context, b curriculum.Board) (curriculum.Board, error) {
	row, err := ensure(repo.db.WithContext(ctx), board{Name: b.Name}, func() board {
		return board{ID: uuid.NewString(), Name: b.Name}
	})
	if err != nil {
		return curriculum.Board{}, err
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) GetBoard(ctx context.Context, filter curriculum.BoardFilter) (curriculum.Board, error) {
	var row board
	err := repo.db.WithContext(ctx).Where(&board{ID: filter.ID, Name: filter.Name}).First(&row).Error
	if err != nil {
		return curriculum.Board{}, translateNotFound(err)
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) QueryBoards(ctx context.Context) ([]curriculum.Board, error) {
	var rows []board
	if err := repo.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	boards := make([]curriculum.Board, 0, len(rows))
	for _, row := range rows {
		boards = append(boards, row.toCore())
	}
	return boards, nil
}

func (repo *CurriculumRepo) EnsureClassLevel(ctx context.Context, c curriculum.ClassLevel) (curriculum.ClassLevel, error) {
	row, err := ensure(repo.db.WithContext(ctx), classLevel{BoardID: c.BoardID, Name: c.Name}, func() classLevel {
		return classLevel{ID: uuid.NewString(), BoardID: c.BoardID, Name: c.Name, Order: c.Order}
	})
	if err != nil {
		return curriculum.ClassLevel{}, err
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) GetClassLevel(ctx context.Context, filter curriculum.ClassFilter) (curriculum.ClassLevel, error) {
	var row classLevel
	err := repo.db.WithContext(ctx).
		Where(&classLevel{ID: filter.ID, BoardID: filter.BoardID, Name: filter.Name}).
		First(&row).Error
	if err != nil {
		return curriculum.ClassLevel{}, translateNotFound(err)
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) QueryClassLevels(ctx context.Context, boardID string) ([]curriculum.ClassLevel, error) {
	var rows []classLevel
	q := repo.db.WithContext(ctx).Order(`"order", name`)
	if boardID != "" {
		q = q.Where("board_id = ?", boardID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	classes := make([]curriculum.ClassLevel, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.toCore())
	}
	return classes, nil
}

func (repo *CurriculumRepo) EnsureSubject(ctx context.Context, s curriculum.Subject) (curriculum.Subject, error) {
	row, err := ensure(repo.db.WithContext(ctx), subject{BoardID: s.BoardID, ClassID: s.ClassID, Name: s.Name}, func() subject {
		return subject{ID: uuid.NewString(), BoardID: s.BoardID, ClassID: s.ClassID, Name: s.Name}
	})
	if err != nil {
		return curriculum.Subject{}, err
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) GetSubject(ctx context.Context, filter curriculum.SubjectFilter) (curriculum.Subject, error) {
	var row subject
	err := repo.db.WithContext(ctx).
		Where(&subject{ID: filter.ID, BoardID: filter.BoardID, ClassID: filter.ClassID, Name: filter.Name}).
		First(&row).Error
	if err != nil {
		return curriculum.Subject{}, translateNotFound(err)
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) QuerySubjects(ctx context.Context, filter curriculum.SubjectFilter) ([]curriculum.Subject, error) {
	var rows []subject
	q := repo.db.WithContext(ctx).Order("name")
	if filter.BoardID != "" {
		q = q.Where("board_id = ?", filter.BoardID)
	}
	if filter.ClassID != "" {
		q = q.Where("class_id = ?", filter.ClassID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	subjects := make([]curriculum.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.toCore())
	}
	return subjects, nil
}

func (repo *CurriculumRepo) EnsureChapter(ctx context.Context, c curriculum.Chapter) (curriculum.Chapter, error) {
	row, err := ensure(repo.db.WithContext(ctx), chapter{SubjectID: c.SubjectID, Title: c.Title}, func() chapter {
		return chapter{ID: uuid.NewString(), SubjectID: c.SubjectID, Title: c.Title, Order: c.Order}
	})
	if err != nil {
		return curriculum.Chapter{}, err
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) GetChapter(ctx context.Context, filter curriculum.ChapterFilter) (curriculum.Chapter, error) {
	var row chapter
	err := repo.db.WithContext(ctx).
		Where(&chapter{ID: filter.ID, SubjectID: filter.SubjectID, Title: filter.Title}).
		First(&row).Error
	if err != nil {
		return curriculum.Chapter{}, translateNotFound(err)
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) QueryChapters(ctx context.Context, subjectID string) ([]curriculum.Chapter, error) {
	var rows []chapter
	q := repo.db.WithContext(ctx).Order(`"order", title`)
	if subjectID != "" {
		q = q.Where("subject_id = ?", subjectID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	chapters := make([]curriculum.Chapter, 0, len(rows))
	for _, row := range rows {
		chapters = append(chapters, row.toCore())
	}
	return chapters, nil
}

func (repo *CurriculumRepo) AttachChaptersToSubject(ctx context.Context, subjectID string) (int, error) {
	res := repo.db.WithContext(ctx).
		Model(&chapter{}).
		Where("subject_id = '' OR subject_id IS NULL").
		Update("subject_id", subjectID)
	return int(res.RowsAffected), res.Error
}

func (repo *CurriculumRepo) EnsureUnit(ctx context.Context, u curriculum.Unit) (curriculum.Unit, error) {
	row, err := ensure(repo.db.WithContext(ctx), unit{ChapterID: u.ChapterID, Title: u.Title}, func() unit {
		return unit{ID: uuid.NewString(), ChapterID: u.ChapterID, Title: u.Title, Order: u.Order}
	})
	if err != nil {
		return curriculum.Unit{}, err
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) QueryUnits(ctx context.Context, chapterID string) ([]curriculum.Unit, error) {
	var rows []unit
	q := repo.db.WithContext(ctx).Order(`"order", title`)
	if chapterID != "" {
		q = q.Where("chapter_id = ?", chapterID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	units := make([]curriculum.Unit, 0, len(rows))
	for _, row := range rows {
		units = append(units, row.toCore())
	}
	return units, nil
}

func (repo *CurriculumRepo) CreateModule(ctx context.Context, m curriculum.Module) (curriculum.Module, error) {
	row := module{ID: uuid.NewString(), ChapterID: m.ChapterID, UnitID: m.UnitID, Title: m.Title, Order: m.Order}
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return curriculum.Module{}, err
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) GetModule(ctx context.Context, id string) (curriculum.Module, error) {
	var row module
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return curriculum.Module{}, translateNotFound(err)
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) QueryModules(ctx context.Context, filter curriculum.ModuleFilter) ([]curriculum.Module, error) {
	var rows []module
	q := repo.db.WithContext(ctx).Order(`"order", title`)
	if filter.ChapterID != "" {
		q = q.Where("chapter_id = ?", filter.ChapterID)
	}
	if filter.UnitID != "" {
		q = q.Where("unit_id = ?", filter.UnitID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	modules := make([]curriculum.Module, 0, len(rows))
	for _, row := range rows {
		modules = append(modules, row.toCore())
	}
	return modules, nil
}

func (repo *CurriculumRepo) AssignModulesUnit(ctx context.Context, chapterID, unitID string) (int, error) {
	res := repo.db.WithContext(ctx).
		Model(&module{}).
		Where("chapter_id = ? AND (unit_id = '' OR unit_id IS NULL)", chapterID).
		Update("unit_id", unitID)
	return int(res.RowsAffected), res.Error
}

func (repo *CurriculumRepo) CreateItem(ctx context.Context, it curriculum.Item) (curriculum.Item, error) {
	row := itemFromCore(it)
	row.ID = uuid.NewString()
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return curriculum.Item{}, err
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) GetItem(ctx context.Context, id string) (curriculum.Item, error) {
	var row curriculumItem
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return curriculum.Item{}, translateNotFound(err)
	}
	return row.toCore(), nil
}

func (repo *CurriculumRepo) QueryItems(ctx context.Context, moduleID string) ([]curriculum.Item, error) {
	var rows []curriculumItem
	err := repo.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order(`"order"`).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	items := make([]curriculum.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toCore())
	}
	return items, nil
}

func (repo *CurriculumRepo) DeleteModuleItems(ctx context.Context, moduleID string) error {
	return repo.db.WithContext(ctx).Where("module_id = ?", moduleID).Delete(&curriculumItem{}).Error
}

func (repo *CurriculumRepo) UpdateItemImages(ctx context.Context, id string, upd curriculum.SetItemImage) (curriculum.Item, error) {
	var row curriculumItem
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return translateNotFound(err)
		}
		if upd.ImageURL != "" {
			row.ImageURL = upd.ImageURL
			row.ImagePublicID = upd.PublicID
		}
		// a non-nil empty list replaces with nothing, clearing the gallery
		if upd.Images != nil {
			images := fromJSONList(row.Images)
			publicIDs := fromJSONList(row.ImagePublicIDs)
			if upd.Append {
				images = append(images, upd.Images...)
				publicIDs = append(publicIDs, upd.ImagePublicIDs...)
			} else {
				images = upd.Images
				publicIDs = upd.ImagePublicIDs
			}
			row.Images = toJSONList(images)
			row.ImagePublicIDs = toJSONList(publicIDs)
		}
		return tx.Save(&row).Error
	})
	if err != nil {
		return curriculum.Item{}, err
	}
	return row.toCore(), nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return curriculum.ErrNotFound
	}
	return err
}
