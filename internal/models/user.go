package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a dashboard operator.
type User struct {
	ID           uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Name         *string   `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a dashboard login. Only the SHA-256 hash of the token is stored.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	UserAgent string
	IPAddress string
}

// SessionUser is what a valid session resolves to.
type SessionUser struct {
	SessionID uuid.UUID `json:"-"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Name      *string   `json:"name,omitempty"`
}
