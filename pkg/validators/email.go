// Package validators contains input checks shared by the handlers and
// services
package validators

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailInvalid = errors.New("invalid email address provided")
)

func EmailValidator(e string) error {
	if strings.TrimSpace(e) == "" {
		return ErrEmailEmpty
	}

	addr, err := mail.ParseAddress(e)
	// ParseAddress also accepts "Name <addr>", only the bare address is allowed
	if err != nil || addr.Address != e {
		return ErrEmailInvalid
	}

	return nil
}
