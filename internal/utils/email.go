package utils

import (
	"errors"
	"net/mail"
	"regexp"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	ErrEmailEmpty   = errors.New("`email` is empty")
	ErrEmailInvalid = errors.New("`email` is not valid")
)

// ValidateEmail accepts a bare address of the form local@domain.tld.
// Display names ("Jane <jane@example.com>") and whitespace are rejected.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailEmpty
	}

	// RFC 5322 parsing alone allows example@value and angle-addr forms
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrEmailInvalid
	}

	if !emailRegex.MatchString(email) {
		return ErrEmailInvalid
	}

	return nil
}

// ValidateMailbox accepts a bare address or a display-name mailbox such as
// "GFXTAB <hello@gfxtab.com>". The address part must pass ValidateEmail.
func ValidateMailbox(mailbox string) error {
	if mailbox == "" {
		return ErrEmailEmpty
	}

	addr, err := mail.ParseAddress(mailbox)
	if err != nil {
		return ErrEmailInvalid
	}
	return ValidateEmail(addr.Address)
}
