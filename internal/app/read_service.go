package app

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"streaks/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ReadService ingests newsletter read events and keeps each user's streak
// state consistent with their full read history.
type ReadService struct {
	users  domain.UserRepository
	reads  domain.ReadRepository
	loc    *time.Location
	logger *slog.Logger

	// Now supplies the wall clock; overridable in tests.
	Now func() time.Time

	// Recording for a user is serialized through a striped lock so that two
	// concurrent reads cannot both replay against stale state and lose an
	// update. Users sharing a stripe only cost contention, not correctness.
	locks [64]sync.Mutex
}

// NewReadService creates a ReadService backed by the given repositories.
func NewReadService(users domain.UserRepository, reads domain.ReadRepository, loc *time.Location, logger *slog.Logger) *ReadService {
	return &ReadService{
		users:  users,
		reads:  reads,
		loc:    loc,
		logger: logger,
		Now:    time.Now,
	}
}

func (s *ReadService) userLock(id int64) *sync.Mutex {
	return &s.locks[uint64(id)%uint64(len(s.locks))]
}

// RecordRead validates and stores a read event for the given email and post,
// creating the user on first contact. readDate may be empty, meaning today.
// It reports false without error when the (user, post) pair was already
// recorded; duplicate deliveries are expected and silently absorbed.
func (s *ReadService) RecordRead(ctx context.Context, email, postID, readDate string, utm domain.UTM) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return false, Validationf("invalid email address")
	}
	if postID == "" {
		return false, Validationf("post_id is required")
	}

	now := s.Now().In(s.loc)
	today := domain.FormatDay(now)
	if readDate == "" {
		readDate = today
	}

	sunday, err := domain.IsSunday(readDate, s.loc)
	if err != nil {
		return false, Validationf("invalid read_date: must be %s", domain.DayLayout)
	}
	if sunday {
		return false, Validationf("reads cannot be recorded on Sundays")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		user, err = s.users.Create(ctx, email)
		if err != nil {
			// A concurrent first read may have won the insert.
			user, err = s.users.GetByEmail(ctx, email)
			if err != nil || user == nil {
				return false, fmt.Errorf("create user: %w", err)
			}
		}
	}

	lock := s.userLock(user.ID)
	lock.Lock()
	defer lock.Unlock()

	recorded, err := s.reads.InsertReadEvent(ctx, &domain.ReadEvent{
		UserID:    user.ID,
		PostID:    postID,
		ReadDate:  readDate,
		UTM:       utm,
		CreatedAt: now,
	})
	if err != nil {
		return false, fmt.Errorf("insert read event: %w", err)
	}
	if !recorded {
		return false, nil
	}

	if err := s.replayStreak(ctx, user, today); err != nil {
		return false, err
	}

	s.logger.Info("read recorded",
		"user_id", user.ID,
		"post_id", postID,
		"read_date", readDate,
	)
	return true, nil
}

// replayStreak re-derives the user's streak state from their full distinct
// read-day history and persists it. Must be called with the user's lock held.
func (s *ReadService) replayStreak(ctx context.Context, user *domain.User, today string) error {
	days, err := s.reads.ListReadDays(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list read days: %w", err)
	}
	if len(days) == 0 {
		return nil
	}

	earliest := days[len(days)-1]
	sentDays, err := s.reads.SentDays(ctx, earliest, today)
	if err != nil {
		return fmt.Errorf("list sent days: %w", err)
	}

	res, err := domain.ComputeStreak(domain.NewDaySet(days...), domain.NewDaySet(sentDays...), today, s.loc)
	if err != nil {
		return fmt.Errorf("compute streak: %w", err)
	}

	// Re-read inside the critical section: the snapshot taken before the
	// lock may carry a stale high-water mark.
	fresh, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("refresh user: %w", err)
	}
	if fresh != nil {
		user = fresh
	}

	highest := user.HighestStreak
	if res.Current > highest {
		highest = res.Current
	}

	if err := s.users.UpdateStreak(ctx, user.ID, res.Current, highest, days[0]); err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	return nil
}
