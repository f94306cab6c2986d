package domain

import "time"

// Credential is the stored account entry keyed by email.
type Credential struct {
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}
