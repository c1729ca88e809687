package dummy

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hoshiyaar/paathshala/core/learner"
)

// LearnerRepo is an in-memory learner.Repository for tests.
type LearnerRepo struct {
	mu       sync.RWMutex
	learners []learner.Learner
}

var _ learner.Repository = (*LearnerRepo)(nil)

func NewLearnerRepo() *LearnerRepo { return &LearnerRepo{} }

func (repo *LearnerRepo) Clear() {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.learners = nil
}

func (repo *LearnerRepo) CheckUsernameUniqueness(ctx context.Context, username string) error {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, l := range repo.learners {
		if l.Username == username {
			return learner.ErrUsernameExists
		}
	}
	return nil
}

func (repo *LearnerRepo) CreateLearner(ctx context.Context, l learner.Learner) (learner.Learner, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	l.ID = uuid.NewString()
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now
	repo.learners = append(repo.learners, l)
	return l, nil
}

func (repo *LearnerRepo) GetLearner(ctx context.Context, filter learner.Filter) (learner.Learner, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, l := range repo.learners {
		if filter.ID != "" && l.ID != filter.ID {
			continue
		}
		if filter.Username != "" && l.Username != filter.Username {
			continue
		}
		return l, nil
	}
	return learner.Learner{}, learner.ErrNotFound
}

func (repo *LearnerRepo) UpdateLearner(ctx context.Context, l learner.Learner) (learner.Learner, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.learners {
		if repo.learners[i].ID == l.ID {
			repo.learners[i] = l
			return l, nil
		}
	}
	return learner.Learner{}, learner.ErrNotFound
}
