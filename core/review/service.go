package review

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hoshiyaar/paathshala/core"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("not found")

// DefaultLimit caps listings when the caller does not.
const DefaultLimit = 200

type (
	Repository interface {
		// UpsertIncorrect creates the (user, question) record or bumps its
		// count and last-seen time.
		UpsertIncorrect(ctx context.Context, n NewIncorrect) (IncorrectQuestion, error)
		// QueryIncorrect lists records most recently seen first.
		QueryIncorrect(ctx context.Context, filter Filter) ([]IncorrectQuestion, error)
		// SetModuleID assigns the module id on one record.
		SetModuleID(ctx context.Context, id, moduleID string) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RecordIncorrect registers one wrong answer, creating or bumping the
// (user, question) record.
func (svc *Service) RecordIncorrect(ctx context.Context, n NewIncorrect) (IncorrectQuestion, error) {
	if n.UserID == "" || n.QuestionID == "" {
		return IncorrectQuestion{}, core.NewValidationError(
			errors.New("invalid payload"),
			core.FieldError{Field: "userId", Error: "this field is required"},
			core.FieldError{Field: "questionId", Error: "this field is required"},
		)
	}
	if n.ModuleID == "" {
		n.ModuleID = moduleIDFromQuestion(n.QuestionID)
	}
	rec, err := svc.repo.UpsertIncorrect(ctx, n)
	if err != nil {
		return IncorrectQuestion{}, errors.Wrap(err, "recording incorrect question")
	}
	return rec, nil
}

// Incorrect lists a learner's incorrect questions, most recent first.
func (svc *Service) Incorrect(ctx context.Context, filter Filter) ([]IncorrectQuestion, error) {
	if filter.UserID == "" {
		return nil, core.NewValidationError(errors.New("userId is required"))
	}
	if filter.Limit <= 0 || filter.Limit > DefaultLimit {
		filter.Limit = DefaultLimit
	}
	return svc.repo.QueryIncorrect(ctx, filter)
}

// DefaultBackfillLimit caps one back-fill sweep.
const DefaultBackfillLimit = 1000

// BackfillResult reports one back-fill sweep.
type BackfillResult struct {
	Updated int `json:"updated"`
	Scanned int `json:"scanned"`
}

// BackfillModuleIDs sweeps records missing a module id, across all
// learners, and derives it from the question id. Per-record failures are
// logged and skipped.
func (svc *Service) BackfillModuleIDs(ctx context.Context, limit int) (BackfillResult, error) {
	if limit <= 0 {
		limit = DefaultBackfillLimit
	}
	records, err := svc.repo.QueryIncorrect(ctx, Filter{MissingModuleID: true, Limit: limit})
	if err != nil {
		return BackfillResult{}, errors.Wrap(err, "querying incorrect questions")
	}
	res := BackfillResult{Scanned: len(records)}
	for _, rec := range records {
		moduleID := moduleIDFromQuestion(rec.QuestionID)
		if moduleID == "" {
			continue
		}
		if err := svc.repo.SetModuleID(ctx, rec.ID, moduleID); err != nil {
			if svc.logger != nil {
				svc.logger.Warn("backfill: cannot set module id on " + rec.ID + ": " + err.Error())
			}
			continue
		}
		res.Updated++
	}
	return res, nil
}

// moduleIDFromQuestion extracts the module id from the "<moduleId>_<n>"
// convention: everything before the first underscore.
func moduleIDFromQuestion(questionID string) string {
	if i := strings.Index(questionID, "_"); i > 0 {
		return questionID[:i]
	}
	return ""
}
