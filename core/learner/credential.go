package learner

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/hoshiyaar/paathshala/core"
)

// SetPassword hashes and sets the given raw password. Used for admin
// accounts; students authenticate with their date of birth instead.
func (l *Learner) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	l.PasswordHash = hash
	return nil
}

// CheckPassword compares the given raw password against the stored hash.
func (l Learner) CheckPassword(password string) error {
	if len(l.PasswordHash) == 0 {
		return ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword(l.PasswordHash, []byte(password)); err != nil {
		return ErrAuthenticationFailed
	}
	return nil
}

// CheckDateOfBirth compares a YYYY-MM-DD credential against the stored
// date of birth.
func (l Learner) CheckDateOfBirth(dob string) error {
	if l.DateOfBirth == nil {
		return ErrAuthenticationFailed
	}
	parsed, err := ParseDateOfBirth(dob)
	if err != nil {
		return ErrAuthenticationFailed
	}
	if !parsed.Equal(*l.DateOfBirth) {
		return ErrAuthenticationFailed
	}
	return nil
}

// Check verifies the given credentials against the learner. Password takes
// precedence when both are supplied.
func (l Learner) Check(creds Credentials) error {
	switch {
	case creds.Password != "":
		return l.CheckPassword(creds.Password)
	case creds.DateOfBirth != "":
		return l.CheckDateOfBirth(creds.DateOfBirth)
	default:
		return core.NewValidationError(errors.New("dateOfBirth or password is required"))
	}
}
