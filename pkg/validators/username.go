package validators

import (
	"errors"
	"regexp"
)

var (
	ErrUsernameEmpty   = errors.New("no username provided")
	ErrUsernameInvalid = errors.New("username may only contain letters, digits, dots, dashes and underscores")
	ErrUsernameLength  = errors.New("username must be between 3 and 30 characters long")
)

var usernameRe = regexp.MustCompile(`^[a-z0-9._-]+$`)

// UsernameValidator expects an already lowercased username
func UsernameValidator(u string) error {
	if u == "" {
		return ErrUsernameEmpty
	}

	if len(u) < 3 || len(u) > 30 {
		return ErrUsernameLength
	}

	if !usernameRe.MatchString(u) {
		return ErrUsernameInvalid
	}

	return nil
}
