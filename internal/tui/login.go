package tui

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"
)

// Credentials collects an email and password.
type Credentials struct {
	Email    string
	Password string
}

// Signup collects a new account.
type Signup struct {
	Credentials
	FirstName string
	LastName  string
	Admin     bool
}

const minPasswordLength = 8

func validateEmail(s string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
		return errors.New("enter a valid email address")
	}
	return nil
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

// LoginForm prompts for credentials, keeping any email already set.
func LoginForm(c *Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&c.Email).Validate(validateEmail),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&c.Password).Validate(validateRequired),
		).Title("Sign in to focusnest"),
	).WithShowHelp(true)
}

// SignupForm prompts for the fields of a new account. askAdmin adds the
// account type question.
func SignupForm(s *Signup, askAdmin bool) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().Title("First name").Value(&s.FirstName).Validate(validateRequired),
		huh.NewInput().Title("Last name").Value(&s.LastName),
		huh.NewInput().Title("Email").Value(&s.Email).Validate(validateEmail),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&s.Password).
			Validate(func(v string) error {
				if len(v) < minPasswordLength {
					return errors.New("at least 8 characters")
				}
				return nil
			}),
	}
	if askAdmin {
		fields = append(fields, huh.NewConfirm().Title("Administrator?").Value(&s.Admin))
	}
	return huh.NewForm(huh.NewGroup(fields...).Title("New account")).WithShowHelp(true)
}
