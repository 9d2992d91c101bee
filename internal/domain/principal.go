package domain

import (
	"strings"
	"time"
)

// Principal is the shared record shape for users and admins. Email is unique
// within a class only.
type Principal struct {
	ID           string
	Class        PrincipalClass
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
}

// NormalizeEmail returns the canonical stored form of an email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
