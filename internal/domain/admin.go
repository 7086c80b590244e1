package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type Admin struct {
	Email   string
	Name    string
	AddedAt time.Time
}

// NormalizeEmail validates an email address and lower cases it
func NormalizeEmail(raw string) (string, error) {
	address, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	return strings.ToLower(address.Address), nil
}
