package domain

import (
	"context"
	"time"
)

// Admin is an operator account with access to the aggregate dashboards.
type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session represents an active admin session.
type Session struct {
	Token     string
	AdminID   int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AdminRepository defines the port for admin persistence operations.
type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	GetByID(ctx context.Context, id int64) (*Admin, error)
	Create(ctx context.Context, username, passwordHash string) (*Admin, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, adminID int64, token string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
