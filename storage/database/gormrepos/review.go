package gormrepos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshiyaar/paathshala/core/review"
)

// ReviewRepo implements review.Repository on Postgres.
type ReviewRepo struct {
	db *gorm.DB
}

var _ review.Repository = (*ReviewRepo)(nil)

func NewReviewRepo(db *gorm.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

func (repo *ReviewRepo) UpsertIncorrect(ctx context.Context, n review.NewIncorrect) (review.IncorrectQuestion, error) {
	var row incorrectQuestion
	now := time.Now().UTC()
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND question_id = ?", n.UserID, n.QuestionID).First(&row).Error
		if err == nil {
			row.Count++
			row.LastSeen = now
			if row.ModuleID == "" {
				row.ModuleID = n.ModuleID
			}
			return tx.Save(&row).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		row = incorrectQuestion{
			ID:         uuid.NewString(),
			UserID:     n.UserID,
			QuestionID: n.QuestionID,
			ModuleID:   n.ModuleID,
			Lesson:     n.Lesson,
			Subject:    n.Subject,
			Chapter:    n.Chapter,
			Count:      1,
			FirstSeen:  now,
			LastSeen:   now,
		}
		if err = tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// lost the race: bump the winner instead
				if err = tx.Where("user_id = ? AND question_id = ?", n.UserID, n.QuestionID).First(&row).Error; err != nil {
					return err
				}
				row.Count++
				row.LastSeen = now
				return tx.Save(&row).Error
			}
			return err
		}
		return nil
	})
	if err != nil {
		return review.IncorrectQuestion{}, err
	}
	return row.toCore(), nil
}

func (repo *ReviewRepo) QueryIncorrect(ctx context.Context, filter review.Filter) ([]review.IncorrectQuestion, error) {
	q := repo.db.WithContext(ctx).Order("last_seen DESC")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.ModuleID != "" {
		q = q.Where("module_id = ?", filter.ModuleID)
	}
	if filter.Subject != "" {
		q = q.Where("subject = ?", filter.Subject)
	}
	if filter.Chapter != 0 {
		q = q.Where("chapter = ?", filter.Chapter)
	}
	if filter.MissingModuleID {
		q = q.Where("module_id = ''")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var rows []incorrectQuestion
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]review.IncorrectQuestion, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toCore())
	}
	return records, nil
}

func (repo *ReviewRepo) SetModuleID(ctx context.Context, id, moduleID string) error {
	res := repo.db.WithContext(ctx).
		Model(&incorrectQuestion{}).
		Where("id = ?", id).
		Update("module_id", moduleID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return review.ErrNotFound
	}
	return nil
}
