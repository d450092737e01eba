package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"streaks/internal/domain"
)

const (
	topReadersLimit = 10
	maxRangeDays    = 366
)

// Summary is the population-level overview for a date range.
type Summary struct {
	TotalUsers     int     `json:"total_users"`
	AvgStreak      float64 `json:"avg_streak"`
	AvgOpeningRate float64 `json:"avg_opening_rate"`
	ActiveUsers    int     `json:"active_users"`
}

// TopReader is one leaderboard entry.
type TopReader struct {
	Email       string  `json:"email"`
	Streak      int     `json:"streak"`
	OpeningRate float64 `json:"opening_rate"`
	LastRead    string  `json:"last_read"`
}

// DayStat is one point of the historical time series.
type DayStat struct {
	Date        string  `json:"date"`
	AvgStreak   float64 `json:"avg_streak"`
	OpeningRate float64 `json:"opening_rate"`
}

// AdminService fans the per-user streak and opening-rate logic out over the
// whole population. It reuses the exact same calculators as the per-user
// path; there is no separate aggregate formula to drift.
type AdminService struct {
	users  domain.UserRepository
	reads  domain.ReadRepository
	loc    *time.Location
	logger *slog.Logger

	// Now supplies the wall clock; overridable in tests.
	Now func() time.Time
}

// NewAdminService creates an AdminService backed by the given repositories.
func NewAdminService(users domain.UserRepository, reads domain.ReadRepository, loc *time.Location, logger *slog.Logger) *AdminService {
	return &AdminService{users: users, reads: reads, loc: loc, logger: logger, Now: time.Now}
}

// snapshot is one pass over the population, shared by all aggregate views.
// The sent-day set is resolved once and reused for every user.
type snapshot struct {
	today   string
	sent    domain.DaySet
	users   []domain.User
	byUser  map[int64][]string
	active  []userMeasure
	allSize int
}

// userMeasure carries one active user's derived figures.
type userMeasure struct {
	email    string
	streak   int
	rate     float64
	lastRead string
	readSet  domain.DaySet
}

func (s *AdminService) validateRange(start, end string) error {
	if start == "" || end == "" {
		return Validationf("start and end dates are required")
	}
	from, err := domain.ParseDay(start, s.loc)
	if err != nil {
		return Validationf("invalid start date: must be %s", domain.DayLayout)
	}
	to, err := domain.ParseDay(end, s.loc)
	if err != nil {
		return Validationf("invalid end date: must be %s", domain.DayLayout)
	}
	if to.Before(from) {
		return Validationf("end date precedes start date")
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return Validationf("date range exceeds %d days", maxRangeDays)
	}
	return nil
}

func (s *AdminService) takeSnapshot(ctx context.Context, start, end string) (*snapshot, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	byUser, err := s.reads.ReadDaysByUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("list read days: %w", err)
	}

	today := domain.FormatDay(s.Now().In(s.loc))
	sentDays, err := s.reads.SentDays(ctx, "", today)
	if err != nil {
		return nil, fmt.Errorf("list sent days: %w", err)
	}
	sent := domain.NewDaySet(sentDays...)

	snap := &snapshot{
		today:   today,
		sent:    sent,
		users:   users,
		byUser:  byUser,
		allSize: len(users),
	}

	for _, u := range users {
		days := byUser[u.ID]
		if !anyDayInRange(days, start, end) {
			continue
		}

		readSet := domain.NewDaySet(days...)
		streak, err := domain.ComputeStreak(readSet, sent, today, s.loc)
		if err != nil {
			return nil, fmt.Errorf("compute streak for user %d: %w", u.ID, err)
		}

		anchor := days[len(days)-1]
		eligible, err := domain.EligibleDays(anchor, today, s.loc, sent)
		if err != nil {
			return nil, fmt.Errorf("resolve eligible days for user %d: %w", u.ID, err)
		}

		snap.active = append(snap.active, userMeasure{
			email:    u.Email,
			streak:   streak.Current,
			rate:     domain.OpeningRate(readSet, eligible),
			lastRead: days[0],
			readSet:  readSet,
		})
	}

	s.logger.Debug("population snapshot",
		"users", snap.allSize,
		"active", len(snap.active),
		"sent_days", len(sent),
	)
	return snap, nil
}

// anyDayInRange reports whether any of days falls within [start, end].
// Day strings compare lexicographically in date order.
func anyDayInRange(days []string, start, end string) bool {
	for _, d := range days {
		if d >= start && d <= end {
			return true
		}
	}
	return false
}

// AdminSummary returns population totals and averages for the range.
// Averages cover users active in the range; total_users counts everyone.
func (s *AdminService) AdminSummary(ctx context.Context, start, end string) (*Summary, error) {
	if err := s.validateRange(start, end); err != nil {
		return nil, err
	}
	snap, err := s.takeSnapshot(ctx, start, end)
	if err != nil {
		return nil, err
	}

	sum := &Summary{TotalUsers: snap.allSize, ActiveUsers: len(snap.active)}
	if len(snap.active) == 0 {
		return sum, nil
	}

	var streakTotal, rateTotal float64
	for _, m := range snap.active {
		streakTotal += float64(m.streak)
		rateTotal += m.rate
	}
	sum.AvgStreak = domain.Round2(streakTotal / float64(len(snap.active)))
	sum.AvgOpeningRate = domain.Round2(rateTotal / float64(len(snap.active)))
	return sum, nil
}

// TopReaders returns up to ten active users ordered by opening rate, ties
// broken by current streak, both descending. The sort is stable so equal
// pairs keep their repository order deterministically.
func (s *AdminService) TopReaders(ctx context.Context, start, end string) ([]TopReader, error) {
	if err := s.validateRange(start, end); err != nil {
		return nil, err
	}
	snap, err := s.takeSnapshot(ctx, start, end)
	if err != nil {
		return nil, err
	}

	measures := make([]userMeasure, len(snap.active))
	copy(measures, snap.active)
	sort.SliceStable(measures, func(i, j int) bool {
		if measures[i].rate != measures[j].rate {
			return measures[i].rate > measures[j].rate
		}
		return measures[i].streak > measures[j].streak
	})

	if len(measures) > topReadersLimit {
		measures = measures[:topReadersLimit]
	}

	out := make([]TopReader, 0, len(measures))
	for _, m := range measures {
		out = append(out, TopReader{
			Email:       m.email,
			Streak:      m.streak,
			OpeningRate: domain.Round2(m.rate),
			LastRead:    m.lastRead,
		})
	}
	return out, nil
}

// DailySeries returns one entry per eligible day in the range: the average
// streak across active users as of that day, and the unique-reader share of
// all registered users as a percentage.
func (s *AdminService) DailySeries(ctx context.Context, start, end string) ([]DayStat, error) {
	if err := s.validateRange(start, end); err != nil {
		return nil, err
	}
	snap, err := s.takeSnapshot(ctx, start, end)
	if err != nil {
		return nil, err
	}

	eligible, err := domain.EligibleDays(start, end, s.loc, snap.sent)
	if err != nil {
		return nil, err
	}
	readers, err := s.reads.ReadersPerDay(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("count readers per day: %w", err)
	}

	out := make([]DayStat, 0, len(eligible))
	for _, day := range eligible.Sorted() {
		var streakTotal float64
		for _, m := range snap.active {
			res, err := domain.ComputeStreak(m.readSet, snap.sent, day, s.loc)
			if err != nil {
				return nil, err
			}
			streakTotal += float64(res.Current)
		}

		stat := DayStat{Date: day}
		if len(snap.active) > 0 {
			stat.AvgStreak = domain.Round2(streakTotal / float64(len(snap.active)))
		}
		if snap.allSize > 0 {
			stat.OpeningRate = domain.Round2(100 * float64(readers[day]) / float64(snap.allSize))
		}
		out = append(out, stat)
	}
	return out, nil
}
