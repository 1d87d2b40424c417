package domain

import "time"

type ID string

// Member is the sole domain entity: a registered account with optional
// address data and self-service audit fields.
type Member struct {
	ID           ID
	Name         string
	Email        string
	PasswordHash string // empty for accounts provisioned without a password
	Address      string
	PostalCode   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    string
	UpdatedBy    string
}

// Summary is the directory projection. It never carries the password hash.
type Summary struct {
	ID        ID
	Name      string
	Email     string
	CreatedAt time.Time
}

// Profile is the self-view projection returned to the owning member.
type Profile struct {
	ID         ID
	Name       string
	Email      string
	Address    string
	PostalCode string
}
