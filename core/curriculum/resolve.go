package curriculum

import (
	"context"
	"errors"
	"fmt"

	"github.com/hoshiyaar/paathshala/core"
)

// Resolution states for a single hierarchy level.
const (
	StateResolved = "resolved"
	StateNoMatch  = "no-match"
	StateError    = "error"
)

type (
	// Selections carries free-text hierarchy names captured during
	// onboarding, any subset of which may be present.
	Selections struct {
		Board   string
		Class   string
		Subject string
		Chapter string
	}

	// LevelResult is the outcome of resolving one hierarchy level.
	LevelResult struct {
		ID    string
		State string
		Err   error
	}

	// Resolution is the per-level outcome of a ResolveSelections call.
	// Lookup failures are recorded, never propagated; a caller persisting
	// onboarding data applies whichever ids resolved and keeps the rest
	// as free text.
	Resolution struct {
		Board   LevelResult
		Class   LevelResult
		Subject LevelResult
		Chapter LevelResult
	}
)

func (r LevelResult) Resolved() bool { return r.State == StateResolved }

// ResolveSelections maps free-text selections onto stored hierarchy ids,
// degrading gracefully: a subject is tried with its full board+class scope
// first, then board-only, then by name alone; a chapter by subject+title,
// then by title alone. Parent levels that failed to resolve directly are
// back-filled from the references of a resolved child. Lookups never create
// rows and lookup errors never propagate to the caller.
func (svc *Service) ResolveSelections(ctx context.Context, sel Selections) Resolution {
	res := Resolution{
		Board:   LevelResult{State: StateNoMatch},
		Class:   LevelResult{State: StateNoMatch},
		Subject: LevelResult{State: StateNoMatch},
		Chapter: LevelResult{State: StateNoMatch},
	}

	boardName := core.CleanString(sel.Board)
	className := core.CleanString(sel.Class)
	subjectName := core.CleanString(sel.Subject)
	chapterTitle := core.CleanString(sel.Chapter)

	if boardName != "" {
		board, err := svc.repo.GetBoard(ctx, BoardFilter{Name: boardName})
		res.Board = svc.levelResult("board", boardName, board.ID, err)
	}

	if className != "" {
		class, err := svc.repo.GetClassLevel(ctx, ClassFilter{BoardID: res.Board.ID, Name: className})
		res.Class = svc.levelResult("class", className, class.ID, err)
	}

	if subjectName != "" {
		var (
			subject Subject
			err     error
		)
		// widen the scope until something matches
		filters := []SubjectFilter{
			{BoardID: res.Board.ID, ClassID: res.Class.ID, Name: subjectName},
			{BoardID: res.Board.ID, Name: subjectName},
			{Name: subjectName},
		}
		for _, filter := range filters {
			if subject, err = svc.repo.GetSubject(ctx, filter); err == nil || !errors.Is(err, ErrNotFound) {
				break
			}
		}
		res.Subject = svc.levelResult("subject", subjectName, subject.ID, err)
		if res.Subject.Resolved() {
			if !res.Class.Resolved() && subject.ClassID != "" {
				res.Class = LevelResult{ID: subject.ClassID, State: StateResolved}
			}
			if !res.Board.Resolved() && subject.BoardID != "" {
				res.Board = LevelResult{ID: subject.BoardID, State: StateResolved}
			}
		}
	}

	if chapterTitle != "" {
		chapter, err := svc.repo.GetChapter(ctx, ChapterFilter{SubjectID: res.Subject.ID, Title: chapterTitle})
		if errors.Is(err, ErrNotFound) && res.Subject.ID != "" {
			chapter, err = svc.repo.GetChapter(ctx, ChapterFilter{Title: chapterTitle})
		}
		res.Chapter = svc.levelResult("chapter", chapterTitle, chapter.ID, err)
		if res.Chapter.Resolved() && !res.Subject.Resolved() && chapter.SubjectID != "" {
			res.Subject = LevelResult{ID: chapter.SubjectID, State: StateResolved}
		}
	}

	if !res.Board.Resolved() && res.Class.Resolved() {
		if class, err := svc.repo.GetClassLevel(ctx, ClassFilter{ID: res.Class.ID}); err == nil && class.BoardID != "" {
			res.Board = LevelResult{ID: class.BoardID, State: StateResolved}
		}
	}
	return res
}

func (svc *Service) levelResult(level, name, id string, err error) LevelResult {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LevelResult{State: StateNoMatch}
		}
		if svc.logger != nil {
			svc.logger.Warn(fmt.Sprintf("resolve: %s lookup failed for %q: %v", level, name, err))
		}
		return LevelResult{State: StateError, Err: err}
	}
	return LevelResult{ID: id, State: StateResolved}
}
