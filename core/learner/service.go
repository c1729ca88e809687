package learner

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/hoshiyaar/paathshala/core"
	"github.com/hoshiyaar/paathshala/core/curriculum"
)

var (
	// errors
	ErrNotFound             = errors.New("learner not found")
	ErrUsernameExists       = errors.New("a user with this username already exists")
	ErrAuthenticationFailed = errors.New("invalid username or credentials")
)

type (
	Filter struct {
		ID       string
		Username string
	}

	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username string) error
		CreateLearner(ctx context.Context, l Learner) (Learner, error)
		GetLearner(ctx context.Context, filter Filter) (Learner, error)
		UpdateLearner(ctx context.Context, l Learner) (Learner, error)
	}

	// Resolver maps onboarding selections and module ids onto the stored
	// curriculum hierarchy. Implemented by curriculum.Service.
	Resolver interface {
		ResolveSelections(ctx context.Context, sel curriculum.Selections) curriculum.Resolution
		ModuleChapter(ctx context.Context, moduleID string) (curriculum.Module, curriculum.Chapter, error)
	}

	Service struct {
		repo     Repository
		resolver Resolver
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

func NewService(repo Repository, resolver Resolver, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, mailSvc: mailSvc, logger: logger}
}

// Register creates a new student account. The username must be unique;
// the date of birth doubles as the login credential.
func (svc *Service) Register(ctx context.Context, nl NewLearner) (Learner, error) {
	username := core.CleanString(nl.Username, true)
	if err := svc.repo.CheckUsernameUniqueness(ctx, username); err != nil {
		return Learner{}, err
	}
	dob, err := ParseDateOfBirth(nl.DateOfBirth)
	if err != nil {
		return Learner{}, core.NewValidationError(
			errors.New("invalid payload"),
			core.FieldError{Field: "dateOfBirth", Error: "invalid date format, use YYYY-MM-DD"},
		)
	}

	l := Learner{
		Username:         username,
		Name:             core.CleanString(nl.Name),
		Email:            core.CleanString(nl.Email, true),
		Phone:            core.CleanString(nl.Phone),
		Age:              nl.Age,
		DateOfBirth:      &dob,
		ClassLevel:       core.CleanString(nl.ClassLevel),
		Board:            core.CleanString(nl.Board),
		Subject:          core.CleanString(nl.Subject),
		Chapter:          core.CleanString(nl.Chapter),
		Role:             RoleStudent,
		ChaptersProgress: []ChapterProgress{},
	}
	svc.reconcileSelections(ctx, &l)
	l.OnboardingCompleted = onboardingComplete(l)

	created, err := svc.repo.CreateLearner(ctx, l)
	if err != nil {
		return Learner{}, errors.Wrap(err, "creating learner")
	}
	svc.sendWelcomeMail(created)
	return created, nil
}

func (svc *Service) sendWelcomeMail(l Learner) {
	if svc.mailSvc == nil || l.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: l.Name, Address: l.Email}},
		Subject: "Welcome!",
		BodyStr: "Hi " + l.Username + ", your account is ready. Log in with your username and date of birth to start learning.",
	})
}

// RegisterAdmin creates a password-authenticated admin account.
func (svc *Service) RegisterAdmin(ctx context.Context, username, password string) (Learner, error) {
	username = core.CleanString(username, true)
	if err := svc.repo.CheckUsernameUniqueness(ctx, username); err != nil {
		return Learner{}, err
	}
	l := Learner{
		Username:         username,
		Role:             RoleAdmin,
		ChaptersProgress: []ChapterProgress{},
	}
	if err := l.SetPassword(password); err != nil {
		return Learner{}, err
	}
	created, err := svc.repo.CreateLearner(ctx, l)
	if err != nil {
		return Learner{}, errors.Wrap(err, "creating admin")
	}
	return created, nil
}

// Authenticate verifies the given credentials and returns the matching
// account. Lookup misses and credential mismatches are indistinguishable
// to the caller.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (Learner, error) {
	l, err := svc.repo.GetLearner(ctx, Filter{Username: core.CleanString(creds.Username, true)})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Learner{}, ErrAuthenticationFailed
		}
		return Learner{}, errors.Wrap(err, "finding learner")
	}
	if err = l.Check(creds); err != nil {
		return Learner{}, err
	}
	return l, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Learner, error) {
	return svc.repo.GetLearner(ctx, Filter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, username string) (Learner, error) {
	return svc.repo.GetLearner(ctx, Filter{Username: core.CleanString(username, true)})
}

// UsernameAvailable reports whether a username is free to register.
func (svc *Service) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	err := svc.repo.CheckUsernameUniqueness(ctx, core.CleanString(username, true))
	if err != nil {
		if errors.Is(err, ErrUsernameExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UpdateOnboarding applies the given free-text selections to the learner,
// resolves them against the curriculum hierarchy and recomputes onboarding
// completeness. Resolution failures never fail the write; unresolved
// selections are kept as free text.
func (svc *Service) UpdateOnboarding(ctx context.Context, id string, upd UpdateOnboarding) (Learner, error) {
	l, err := svc.repo.GetLearner(ctx, Filter{ID: id})
	if err != nil {
		return Learner{}, err
	}

	if upd.Username != nil {
		uname := core.CleanString(*upd.Username, true)
		if uname != l.Username {
			if err = svc.repo.CheckUsernameUniqueness(ctx, uname); err != nil {
				return Learner{}, err
			}
			l.Username = uname
		}
	}
	if upd.Name != nil {
		l.Name = core.CleanString(*upd.Name)
	}
	if upd.Age != nil {
		l.Age = *upd.Age
	}
	if upd.ClassLevel != nil {
		l.ClassLevel = core.CleanString(*upd.ClassLevel)
	}
	if upd.Board != nil {
		l.Board = core.CleanString(*upd.Board)
	}
	if upd.Subject != nil {
		l.Subject = core.CleanString(*upd.Subject)
	}
	if upd.Chapter != nil {
		l.Chapter = core.CleanString(*upd.Chapter)
	}

	svc.reconcileSelections(ctx, &l)
	l.OnboardingCompleted = onboardingComplete(l)
	l.UpdatedAt = time.Now().UTC()

	updated, err := svc.repo.UpdateLearner(ctx, l)
	if err != nil {
		return Learner{}, errors.Wrap(err, "updating learner")
	}
	return updated, nil
}
