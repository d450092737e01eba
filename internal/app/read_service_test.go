package app_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"streaks/internal/app"
	"streaks/internal/domain"
)

type mockUserRepo struct {
	getByEmailFn   func(ctx context.Context, email string) (*domain.User, error)
	getByIDFn      func(ctx context.Context, id int64) (*domain.User, error)
	createFn       func(ctx context.Context, email string) (*domain.User, error)
	updateStreakFn func(ctx context.Context, id int64, current, highest int, lastReadDate string) error
	listFn         func(ctx context.Context) ([]domain.User, error)
	countFn        func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, email string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, email)
	}
	return &domain.User{ID: 1, Email: email, CreatedAt: time.Now()}, nil
}

func (m *mockUserRepo) UpdateStreak(ctx context.Context, id int64, current, highest int, lastReadDate string) error {
	if m.updateStreakFn != nil {
		return m.updateStreakFn(ctx, id, current, highest, lastReadDate)
	}
	return nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockReadRepo struct {
	insertFn     func(ctx context.Context, ev *domain.ReadEvent) (bool, error)
	listDaysFn   func(ctx context.Context, userID int64) ([]string, error)
	listRecentFn func(ctx context.Context, userID int64, limit int) ([]domain.ReadEvent, error)
	countFn      func(ctx context.Context, userID int64) (int, error)
	sentDaysFn   func(ctx context.Context, from, to string) ([]string, error)
	readersFn    func(ctx context.Context, from, to string) (map[string]int, error)
	byUserFn     func(ctx context.Context) (map[int64][]string, error)
}

func (m *mockReadRepo) InsertReadEvent(ctx context.Context, ev *domain.ReadEvent) (bool, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, ev)
	}
	return true, nil
}

func (m *mockReadRepo) ListReadDays(ctx context.Context, userID int64) ([]string, error) {
	if m.listDaysFn != nil {
		return m.listDaysFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockReadRepo) ListRecentReads(ctx context.Context, userID int64, limit int) ([]domain.ReadEvent, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockReadRepo) CountReads(ctx context.Context, userID int64) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockReadRepo) SentDays(ctx context.Context, from, to string) ([]string, error) {
	if m.sentDaysFn != nil {
		return m.sentDaysFn(ctx, from, to)
	}
	return nil, nil
}

func (m *mockReadRepo) ReadersPerDay(ctx context.Context, from, to string) (map[string]int, error) {
	if m.readersFn != nil {
		return m.readersFn(ctx, from, to)
	}
	return nil, nil
}

func (m *mockReadRepo) ReadDaysByUser(ctx context.Context) (map[int64][]string, error) {
	if m.byUserFn != nil {
		return m.byUserFn(ctx)
	}
	return nil, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedNow pins the clock to noon on the given day in UTC.
func fixedNow(day string) func() time.Time {
	t, _ := time.ParseInLocation(domain.DayLayout, day, time.UTC)
	return func() time.Time { return t.Add(12 * time.Hour) }
}

func newReadService(users *mockUserRepo, reads *mockReadRepo, today string) *app.ReadService {
	svc := app.NewReadService(users, reads, time.UTC, discardLogger())
	svc.Now = fixedNow(today)
	return svc
}

func TestRecordRead_Validation(t *testing.T) {
	tests := []struct {
		name   string
		email  string
		postID string
	}{
		{"missing email", "", "post-1"},
		{"malformed email", "not-an-email", "post-1"},
		{"missing post id", "reader@example.com", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newReadService(&mockUserRepo{}, &mockReadRepo{}, "2026-03-04")
			_, err := svc.RecordRead(context.Background(), tc.email, tc.postID, "", domain.UTM{})
			if !app.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRecordRead_SundayRejected(t *testing.T) {
	svc := newReadService(&mockUserRepo{}, &mockReadRepo{}, "2026-03-08") // a Sunday
	_, err := svc.RecordRead(context.Background(), "reader@example.com", "post-1", "", domain.UTM{})
	if !app.IsValidation(err) {
		t.Fatalf("expected validation error for Sunday read, got %v", err)
	}
}

func TestRecordRead_FirstReadCreatesUser(t *testing.T) {
	created := false
	var gotCurrent, gotHighest int

	users := &mockUserRepo{
		createFn: func(_ context.Context, email string) (*domain.User, error) {
			created = true
			if email != "reader@example.com" {
				t.Errorf("unexpected email: %s", email)
			}
			return &domain.User{ID: 7, Email: email}, nil
		},
		updateStreakFn: func(_ context.Context, id int64, current, highest int, lastRead string) error {
			if id != 7 {
				t.Errorf("unexpected user id: %d", id)
			}
			gotCurrent, gotHighest = current, highest
			if lastRead != "2026-03-04" {
				t.Errorf("lastRead = %q; want 2026-03-04", lastRead)
			}
			return nil
		},
	}
	reads := &mockReadRepo{
		listDaysFn: func(_ context.Context, _ int64) ([]string, error) {
			return []string{"2026-03-04"}, nil
		},
		sentDaysFn: func(_ context.Context, _, _ string) ([]string, error) {
			return []string{"2026-03-04"}, nil
		},
	}

	svc := newReadService(users, reads, "2026-03-04")
	recorded, err := svc.RecordRead(context.Background(), "Reader@Example.com", "post-1", "", domain.UTM{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !recorded {
		t.Fatal("expected recorded=true")
	}
	if !created {
		t.Fatal("expected user to be created on first contact")
	}
	if gotCurrent != 1 || gotHighest != 1 {
		t.Errorf("streak = (%d, %d); want (1, 1)", gotCurrent, gotHighest)
	}
}

func TestRecordRead_DuplicateIsNoOp(t *testing.T) {
	updated := false
	users := &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email}, nil
		},
		updateStreakFn: func(_ context.Context, _ int64, _, _ int, _ string) error {
			updated = true
			return nil
		},
	}
	reads := &mockReadRepo{
		insertFn: func(_ context.Context, _ *domain.ReadEvent) (bool, error) {
			return false, nil
		},
	}

	svc := newReadService(users, reads, "2026-03-04")
	recorded, err := svc.RecordRead(context.Background(), "reader@example.com", "post-1", "", domain.UTM{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorded {
		t.Fatal("expected recorded=false for duplicate (user, post)")
	}
	if updated {
		t.Fatal("duplicate read must not touch streak state")
	}
}

func TestRecordRead_HighestStreakNeverDecreases(t *testing.T) {
	var gotHighest int
	users := &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email, HighestStreak: 9}, nil
		},
		getByIDFn: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, HighestStreak: 9}, nil
		},
		updateStreakFn: func(_ context.Context, _ int64, current, highest int, _ string) error {
			if current != 1 {
				t.Errorf("current = %d; want 1", current)
			}
			gotHighest = highest
			return nil
		},
	}
	reads := &mockReadRepo{
		listDaysFn: func(_ context.Context, _ int64) ([]string, error) {
			// An old run plus today; the gap on 03-03 broke the old streak.
			return []string{"2026-03-04", "2026-03-02"}, nil
		},
		sentDaysFn: func(_ context.Context, _, _ string) ([]string, error) {
			return []string{"2026-03-02", "2026-03-03", "2026-03-04"}, nil
		},
	}

	svc := newReadService(users, reads, "2026-03-04")
	if _, err := svc.RecordRead(context.Background(), "reader@example.com", "post-9", "", domain.UTM{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotHighest != 9 {
		t.Errorf("highest = %d; want 9 (high-water mark)", gotHighest)
	}
}

func TestRecordRead_ExplicitReadDate(t *testing.T) {
	var gotDate string
	users := &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email}, nil
		},
	}
	reads := &mockReadRepo{
		insertFn: func(_ context.Context, ev *domain.ReadEvent) (bool, error) {
			gotDate = ev.ReadDate
			return true, nil
		},
		listDaysFn: func(_ context.Context, _ int64) ([]string, error) {
			return []string{"2026-03-03"}, nil
		},
	}

	svc := newReadService(users, reads, "2026-03-04")
	if _, err := svc.RecordRead(context.Background(), "reader@example.com", "post-1", "2026-03-03", domain.UTM{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotDate != "2026-03-03" {
		t.Errorf("ReadDate = %q; want 2026-03-03", gotDate)
	}
}
