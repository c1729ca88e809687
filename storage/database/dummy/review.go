package dummy

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hoshiyaar/paathshala/core/review"
)

// ReviewRepo is an in-memory review.Repository for tests.
type ReviewRepo struct {
	mu      sync.RWMutex
	records []review.IncorrectQuestion
}

var _ review.Repository = (*ReviewRepo)(nil)

func NewReviewRepo() *ReviewRepo { return &ReviewRepo{} }

func (repo *ReviewRepo) Clear() {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.records = nil
}

func (repo *ReviewRepo) UpsertIncorrect(ctx context.Context, n review.NewIncorrect) (review.IncorrectQuestion, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	now := time.Now().UTC()
	for i := range repo.records {
		rec := &repo.records[i]
		if rec.UserID == n.UserID && rec.QuestionID == n.QuestionID {
			rec.Count++
			rec.LastSeen = now
			if rec.ModuleID == "" {
				rec.ModuleID = n.ModuleID
			}
			return *rec, nil
		}
	}
	rec := review.IncorrectQuestion{
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
	repo.records = append(repo.records, rec)
	return rec, nil
}

func (repo *ReviewRepo) QueryIncorrect(ctx context.Context, filter review.Filter) ([]review.IncorrectQuestion, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	records := make([]review.IncorrectQuestion, 0)
	for _, rec := range repo.records {
		if filter.UserID != "" && rec.UserID != filter.UserID {
			continue
		}
		if filter.ModuleID != "" && rec.ModuleID != filter.ModuleID {
			continue
		}
		if filter.Subject != "" && rec.Subject != filter.Subject {
			continue
		}
		if filter.Chapter != 0 && rec.Chapter != filter.Chapter {
			continue
		}
		if filter.MissingModuleID && rec.ModuleID != "" {
			continue
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].LastSeen.After(records[j].LastSeen) })
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}

func (repo *ReviewRepo) SetModuleID(ctx context.Context, id, moduleID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.records {
		if repo.records[i].ID == id {
			repo.records[i].ModuleID = moduleID
			return nil
		}
	}
	return review.ErrNotFound
}
