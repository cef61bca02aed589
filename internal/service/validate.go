package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrValidation = errors.New("validation error")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLen = 6

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidPassword(password string) bool {
	return len(password) >= minPasswordLen
}

func ValidName(name string) bool {
	return strings.TrimSpace(name) != ""
}

// AuthForm mirrors the sign-in/sign-up form fields.
type AuthForm struct {
	Registering     bool
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// CanSubmit reports whether the form's submit action is enabled.
func (f AuthForm) CanSubmit() bool {
	if !ValidEmail(f.Email) || !ValidPassword(f.Password) {
		return false
	}
	if f.Registering && (!ValidName(f.Name) || f.ConfirmPassword == "") {
		return false
	}
	return true
}

func validateCredentials(email, password string) error {
	if !ValidEmail(email) {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if !ValidPassword(password) {
		return fmt.Errorf("%w: password must have at least %d characters", ErrValidation, minPasswordLen)
	}
	return nil
}
