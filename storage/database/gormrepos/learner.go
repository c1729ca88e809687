package gormrepos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshiyaar/paathshala/core/learner"
)

// LearnerRepo implements learner.Repository on Postgres.
type LearnerRepo struct {
	db *gorm.DB
}

var _ learner.Repository = (*LearnerRepo)(nil)

func NewLearnerRepo(db *gorm.DB) *LearnerRepo {
	return &LearnerRepo{db: db}
}

func (repo *LearnerRepo) CheckUsernameUniqueness(ctx context.Context, username string) error {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&learnerRow{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return learner.ErrUsernameExists
	}
	return nil
}

func (repo *LearnerRepo) CreateLearner(ctx context.Context, l learner.Learner) (learner.Learner, error) {
	l.ID = uuid.NewString()
	row, err := learnerFromCore(l)
	if err != nil {
		return learner.Learner{}, err
	}
	if err = repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return learner.Learner{}, learner.ErrUsernameExists
		}
		return learner.Learner{}, err
	}
	return row.toCore()
}

func (repo *LearnerRepo) GetLearner(ctx context.Context, filter learner.Filter) (learner.Learner, error) {
	var row learnerRow
	err := repo.db.WithContext(ctx).
		Where(&learnerRow{ID: filter.ID, Username: filter.Username}).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return learner.Learner{}, learner.ErrNotFound
		}
		return learner.Learner{}, err
	}
	return row.toCore()
}

func (repo *LearnerRepo) UpdateLearner(ctx context.Context, l learner.Learner) (learner.Learner, error) {
	row, err := learnerFromCore(l)
	if err != nil {
		return learner.Learner{}, err
	}
	res := repo.db.WithContext(ctx).
		Model(&learnerRow{}).
		Where("id = ?", l.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&row)
	if res.Error != nil {
		return learner.Learner{}, res.Error
	}
	if res.RowsAffected == 0 {
		return learner.Learner{}, learner.ErrNotFound
	}
	return repo.GetLearner(ctx, learner.Filter{ID: l.ID})
}
