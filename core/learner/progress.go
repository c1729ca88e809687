package learner

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hoshiyaar/paathshala/core"
)

// module ids are uuids; authored chapter numbers never get this long
const moduleIDThreshold = 10

// normalizeChapter turns a ProgressUpdate chapter reference into a chapter
// number. A value longer than moduleIDThreshold is treated as a module id
// and resolved to the owning chapter's order; resolution failures fall back
// to chapter 1 rather than dropping the update.
func (svc *Service) normalizeChapter(ctx context.Context, raw string) int {
	raw = strings.TrimSpace(raw)
	if len(raw) > moduleIDThreshold {
		if svc.resolver != nil {
			if _, chapter, err := svc.resolver.ModuleChapter(ctx, raw); err == nil {
				return chapter.Order
			} else if svc.logger != nil {
				svc.logger.Warn(fmt.Sprintf("progress: cannot resolve module %q to a chapter: %v", raw, err))
			}
		}
		return 1
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return 1
}

// UpdateProgress applies one progress mutation to the learner's per-chapter
// state and returns the full per-chapter collection. ConceptCompleted adds
// the referenced module to the chapter's completed set (or removes it when
// false); an answered question bumps the lesson's correct or wrong count and
// accumulates lastScore, with bestScore a high-water mark.
func (svc *Service) UpdateProgress(ctx context.Context, upd ProgressUpdate) ([]ChapterProgress, error) {
	if upd.UserID == "" {
		return nil, core.NewValidationError(
			errors.New("invalid payload"),
			core.FieldError{Field: "userId", Error: "this field is required"},
		)
	}
	l, err := svc.repo.GetLearner(ctx, Filter{ID: upd.UserID})
	if err != nil {
		return nil, err
	}

	chapter := svc.normalizeChapter(ctx, upd.Chapter)
	moduleID := core.CleanString(upd.ModuleID)
	if moduleID == "" {
		moduleID = strings.TrimSpace(upd.Chapter)
	}
	subject := core.CleanString(upd.Subject)
	if subject == "" {
		subject = l.Subject
	}
	now := time.Now().UTC()

	entry := l.progressFor(chapter, subject)
	if upd.ConceptCompleted != nil {
		entry.ConceptCompleted = *upd.ConceptCompleted
		if moduleID != "" {
			if *upd.ConceptCompleted {
				entry.CompletedModules = addToSet(entry.CompletedModules, moduleID)
			} else {
				entry.CompletedModules = removeFromSet(entry.CompletedModules, moduleID)
			}
		}
	}
	if upd.QuizCompleted != nil {
		entry.QuizCompleted = *upd.QuizCompleted
	}

	if lesson := core.CleanString(upd.LessonTitle); lesson != "" && upd.IsCorrect != nil {
		if entry.Stats == nil {
			entry.Stats = map[string]LessonStats{}
		}
		stats := entry.Stats[lesson]
		if upd.ResetLesson {
			stats = LessonStats{BestScore: stats.BestScore}
		}
		if *upd.IsCorrect {
			stats.Correct++
		} else {
			stats.Wrong++
		}
		stats.LastScore += upd.DeltaScore
		if stats.LastScore < 0 {
			stats.LastScore = 0
		}
		if stats.LastScore > stats.BestScore {
			stats.BestScore = stats.LastScore
		}
		stats.LastReviewedAt = &now
		entry.Stats[lesson] = stats
	}
	entry.UpdatedAt = now
	l.UpdatedAt = now

	updated, err := svc.repo.UpdateLearner(ctx, l)
	if err != nil {
		return nil, errors.Wrap(err, "updating learner progress")
	}
	if updated.ChaptersProgress == nil {
		return []ChapterProgress{}, nil
	}
	return updated.ChaptersProgress, nil
}

// Progress returns the learner's full per-chapter progress.
func (svc *Service) Progress(ctx context.Context, userID string) ([]ChapterProgress, error) {
	l, err := svc.repo.GetLearner(ctx, Filter{ID: userID})
	if err != nil {
		return nil, err
	}
	if l.ChaptersProgress == nil {
		return []ChapterProgress{}, nil
	}
	return l.ChaptersProgress, nil
}

// ModuleProgress returns the set of module ids the learner has completed.
// An empty subject or chapter leaves that dimension unconstrained.
func (svc *Service) ModuleProgress(ctx context.Context, userID, subject, chapter string) ([]string, error) {
	l, err := svc.repo.GetLearner(ctx, Filter{ID: userID})
	if err != nil {
		return nil, err
	}
	chapterNum := 0
	if chapter != "" {
		chapterNum = svc.normalizeChapter(ctx, chapter)
	}
	completed := []string{}
	for _, p := range l.ChaptersProgress {
		if subject != "" && !strings.EqualFold(p.Subject, subject) {
			continue
		}
		if chapterNum != 0 && p.Chapter != chapterNum {
			continue
		}
		for _, m := range p.CompletedModules {
			completed = addToSet(completed, m)
		}
	}
	return completed, nil
}

type (
	// ProgressSummary aggregates a learner's progress across chapters.
	ProgressSummary struct {
		Chapters          int              `json:"chapters"`
		ChaptersCompleted int              `json:"chaptersCompleted"`
		ModulesCompleted  int              `json:"modulesCompleted"`
		Correct           int              `json:"correct"`
		Wrong             int              `json:"wrong"`
		Subjects          []SubjectSummary `json:"subjects"`
	}

	SubjectSummary struct {
		Subject          string `json:"subject"`
		Chapters         int    `json:"chapters"`
		ModulesCompleted int    `json:"modulesCompleted"`
		Correct          int    `json:"correct"`
		Wrong            int    `json:"wrong"`
	}
)

// ProgressSummary rolls the per-chapter state up into overall and
// per-subject totals. A chapter counts as completed when both its concept
// and quiz passes are done.
func (svc *Service) ProgressSummary(ctx context.Context, userID string) (ProgressSummary, error) {
	l, err := svc.repo.GetLearner(ctx, Filter{ID: userID})
	if err != nil {
		return ProgressSummary{}, err
	}

	summary := ProgressSummary{Subjects: []SubjectSummary{}}
	bySubject := map[string]SubjectSummary{}
	var order []string
	for _, p := range l.ChaptersProgress {
		summary.Chapters++
		if p.ConceptCompleted && p.QuizCompleted {
			summary.ChaptersCompleted++
		}
		summary.ModulesCompleted += len(p.CompletedModules)

		var correct, wrong int
		for _, stats := range p.Stats {
			correct += stats.Correct
			wrong += stats.Wrong
		}
		summary.Correct += correct
		summary.Wrong += wrong

		key := strings.ToLower(p.Subject)
		sub, ok := bySubject[key]
		if !ok {
			sub = SubjectSummary{Subject: p.Subject}
			order = append(order, key)
		}
		sub.Chapters++
		sub.ModulesCompleted += len(p.CompletedModules)
		sub.Correct += correct
		sub.Wrong += wrong
		bySubject[key] = sub
	}
	for _, key := range order {
		summary.Subjects = append(summary.Subjects, bySubject[key])
	}
	return summary, nil
}

func addToSet(set []string, v string) []string {
	for _, s := range set {
		if s == v {
			return set
		}
	}
	return append(set, v)
}

func removeFromSet(set []string, v string) []string {
	kept := set[:0]
	for _, s := range set {
		if s != v {
			kept = append(kept, s)
		}
	}
	return kept
}
