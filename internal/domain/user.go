package domain

import (
	"context"
	"time"
)

// User is a newsletter reader together with their persisted streak state.
// CurrentStreak and HighestStreak are always derived by full replay of the
// user's read-day history; HighestStreak is a high-water mark and never
// decreases.
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	CurrentStreak int       `json:"current_streak"`
	HighestStreak int       `json:"highest_streak"`
	LastReadDate  string    `json:"last_read_date,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserRepository is the port for user persistence.
type UserRepository interface {
	// GetByEmail returns the user with the given email, or nil when absent.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID returns the user with the given id, or nil when absent.
	GetByID(ctx context.Context, id int64) (*User, error)

	// Create inserts a new user with zeroed streak state.
	Create(ctx context.Context, email string) (*User, error)

	// UpdateStreak persists recomputed streak state for the user.
	UpdateStreak(ctx context.Context, id int64, current, highest int, lastReadDate string) error

	// List returns all users.
	List(ctx context.Context) ([]User, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
}
