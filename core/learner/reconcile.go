package learner

import (
	"context"

	"github.com/hoshiyaar/paathshala/core/curriculum"
)

// reconcileSelections maps the learner's free-text selections onto stored
// hierarchy ids. Every pass rewrites all four ids: a resolved level sets its
// id, a definite no-match clears it, and only a lookup error keeps whatever
// id the learner already had. A nil resolver is a no-op so that onboarding
// still works when the curriculum service is unavailable.
func (svc *Service) reconcileSelections(ctx context.Context, l *Learner) {
	if svc.resolver == nil {
		return
	}
	res := svc.resolver.ResolveSelections(ctx, curriculum.Selections{
		Board:   l.Board,
		Class:   l.ClassLevel,
		Subject: l.Subject,
		Chapter: l.Chapter,
	})
	applyLevel(&l.BoardID, res.Board)
	applyLevel(&l.ClassID, res.Class)
	applyLevel(&l.SubjectID, res.Subject)
	applyLevel(&l.ChapterID, res.Chapter)
}

func applyLevel(id *string, lvl curriculum.LevelResult) {
	switch lvl.State {
	case curriculum.StateResolved:
		*id = lvl.ID
	case curriculum.StateNoMatch:
		*id = ""
	}
}

// onboardingComplete requires a board and a subject, each satisfied by
// either the free-text selection or a resolved id. Chapter and class are
// optional.
func onboardingComplete(l Learner) bool {
	board := l.Board != "" || l.BoardID != ""
	subject := l.Subject != "" || l.SubjectID != ""
	return board && subject
}
