package apiclient

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Registration limits, mirroring the server-side rules.
const (
	maxNameLength     = 50
	maxEmailLength    = 100
	minPasswordLength = 10
	maxPasswordLength = 100
)

var (
	ErrFirstNameRequired = errors.New("first name must be between 1 and 50 characters with no control characters")
	ErrLastNameRequired  = errors.New("last name must be between 1 and 50 characters with no control characters")
	ErrInvalidEmail      = errors.New("email must be a valid address of at most 100 characters with no control characters")
	ErrInvalidPassword   = fmt.Errorf("password must be between %d and %d characters with no control characters", minPasswordLength, maxPasswordLength)
)

func validateRegistration(req RegistrationRequest) error {
	if n := utf8.RuneCountInString(req.FirstName); n < 1 || n > maxNameLength || containsControl(req.FirstName) {
		return ErrFirstNameRequired
	}
	if n := utf8.RuneCountInString(req.LastName); n < 1 || n > maxNameLength || containsControl(req.LastName) {
		return ErrLastNameRequired
	}
	if _, err := mail.ParseAddress(req.Email); err != nil || utf8.RuneCountInString(req.Email) > maxEmailLength || containsControl(req.Email) {
		return ErrInvalidEmail
	}
	if n := utf8.RuneCountInString(req.Password); n < minPasswordLength || n > maxPasswordLength || containsControl(req.Password) {
		return ErrInvalidPassword
	}

	return nil
}

func containsControl(s string) bool {
	return strings.ContainsFunc(s, unicode.IsControl)
}
