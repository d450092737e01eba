package domain

import (
	"context"
	"time"
)

// UTM carries the opaque attribution fields attached to a read event.
type UTM struct {
	Source   string `json:"utm_source,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
	Channel  string `json:"utm_channel,omitempty"`
}

// ReadEvent records that a user opened a newsletter post on a calendar day.
// At most one event exists per (user, post) pair; events are immutable once
// created.
type ReadEvent struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PostID    string    `json:"post_id"`
	ReadDate  string    `json:"read_date"`
	UTM       UTM       `json:"utm"`
	CreatedAt time.Time `json:"created_at"`
}

// ReadRepository is the port for read-event persistence.
type ReadRepository interface {
	// InsertReadEvent stores ev unless an event for (user, post) already
	// exists, in which case it reports false and stores nothing.
	InsertReadEvent(ctx context.Context, ev *ReadEvent) (bool, error)

	// ListReadDays returns the user's distinct read days, most recent first.
	ListReadDays(ctx context.Context, userID int64) ([]string, error)

	// ListRecentReads returns the user's most recent events up to limit.
	ListRecentReads(ctx context.Context, userID int64, limit int) ([]ReadEvent, error)

	// CountReads returns the user's total number of read events.
	CountReads(ctx context.Context, userID int64) (int, error)

	// SentDays returns every day on which at least one event exists across
	// the whole population, within [from, to]. An empty from or to leaves
	// that side unbounded.
	SentDays(ctx context.Context, from, to string) ([]string, error)

	// ReadersPerDay returns the number of distinct users with an event on
	// each day within [from, to].
	ReadersPerDay(ctx context.Context, from, to string) (map[string]int, error)

	// ReadDaysByUser returns every user's distinct read days, most recent
	// first, keyed by user id.
	ReadDaysByUser(ctx context.Context) (map[int64][]string, error)
}
