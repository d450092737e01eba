package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"streaks/internal/domain"
)

const historyLimit = 50

// UserStats is the per-user statistics view returned to the HTTP layer.
type UserStats struct {
	Email         string             `json:"email"`
	CurrentStreak int                `json:"current_streak"`
	HighestStreak int                `json:"highest_streak"`
	TotalReads    int                `json:"total_reads"`
	LastReadDate  string             `json:"last_read_date,omitempty"`
	OpeningRate   float64            `json:"opening_rate"`
	History       []domain.ReadEvent `json:"history"`
}

// StatsService derives per-user reading statistics.
type StatsService struct {
	users domain.UserRepository
	reads domain.ReadRepository
	loc   *time.Location

	// Now supplies the wall clock; overridable in tests.
	Now func() time.Time
}

// NewStatsService creates a StatsService backed by the given repositories.
func NewStatsService(users domain.UserRepository, reads domain.ReadRepository, loc *time.Location) *StatsService {
	return &StatsService{users: users, reads: reads, loc: loc, Now: time.Now}
}

// GetUserStats returns statistics for the user identified by exactly one of
// id or email. Unknown identifiers yield a zeroed stats object rather than
// an error, so the endpoint is total over every identifier ever seen.
func (s *StatsService) GetUserStats(ctx context.Context, id int64, email string) (*UserStats, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if (id == 0) == (email == "") {
		return nil, Validationf("exactly one of id or email must be supplied")
	}

	var (
		user *domain.User
		err  error
	)
	if id != 0 {
		user, err = s.users.GetByID(ctx, id)
	} else {
		user, err = s.users.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return &UserStats{Email: email, History: []domain.ReadEvent{}}, nil
	}

	days, err := s.reads.ListReadDays(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list read days: %w", err)
	}
	total, err := s.reads.CountReads(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("count reads: %w", err)
	}
	history, err := s.reads.ListRecentReads(ctx, user.ID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if history == nil {
		history = []domain.ReadEvent{}
	}

	today := domain.FormatDay(s.Now().In(s.loc))

	// Anchor: first recorded read, or account creation when none exists.
	anchor := domain.FormatDay(user.CreatedAt.In(s.loc))
	if len(days) > 0 {
		anchor = days[len(days)-1]
	}

	sentDays, err := s.reads.SentDays(ctx, anchor, today)
	if err != nil {
		return nil, fmt.Errorf("list sent days: %w", err)
	}
	sent := domain.NewDaySet(sentDays...)

	eligible, err := domain.EligibleDays(anchor, today, s.loc, sent)
	if err != nil {
		return nil, fmt.Errorf("resolve eligible days: %w", err)
	}

	readSet := domain.NewDaySet(days...)
	streak, err := domain.ComputeStreak(readSet, sent, today, s.loc)
	if err != nil {
		return nil, fmt.Errorf("compute streak: %w", err)
	}

	highest := user.HighestStreak
	if streak.Current > highest {
		highest = streak.Current
	}

	var lastRead string
	if len(days) > 0 {
		lastRead = days[0]
	}

	return &UserStats{
		Email:         user.Email,
		CurrentStreak: streak.Current,
		HighestStreak: highest,
		TotalReads:    total,
		LastReadDate:  lastRead,
		OpeningRate:   domain.Round2(domain.OpeningRate(readSet, eligible)),
		History:       history,
	}, nil
}
