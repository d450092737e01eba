// Package memory implements in-memory repositories for development and
// testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"streaks/internal/domain"
)

// DB holds all in-memory state behind a single mutex.
type DB struct {
	mu       sync.Mutex
	users    []*domain.User
	reads    []domain.ReadEvent
	admins   []*domain.Admin
	sessions map[string]*domain.Session

	userIDCounter  int64
	readIDCounter  int64
	adminIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Users returns the user repository.
func (db *DB) Users() *UserRepo { return &UserRepo{db: db} }

// Reads returns the read-event repository.
func (db *DB) Reads() *ReadRepo { return &ReadRepo{db: db} }

// Admins returns the admin repository.
func (db *DB) Admins() *AdminRepo { return &AdminRepo{db: db} }

// Sessions returns the session repository.
func (db *DB) Sessions() *SessionRepo { return &SessionRepo{db: db} }

// Ensure interfaces are met.
var _ domain.UserRepository = (*UserRepo)(nil)
var _ domain.ReadRepository = (*ReadRepo)(nil)
var _ domain.AdminRepository = (*AdminRepo)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- UserRepository ---

type UserRepo struct {
	db *DB
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Create(ctx context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.userIDCounter++
	u := &domain.User{
		ID:        r.db.userIDCounter,
		Email:     email,
		CreatedAt: time.Now(),
	}
	r.db.users = append(r.db.users, u)
	cp := *u
	return &cp, nil
}

func (r *UserRepo) UpdateStreak(ctx context.Context, id int64, current, highest int, lastReadDate string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.ID == id {
			u.CurrentStreak = current
			u.HighestStreak = highest
			u.LastReadDate = lastReadDate
			return nil
		}
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.users), nil
}

// --- ReadRepository ---

type ReadRepo struct {
	db *DB
}

func (r *ReadRepo) InsertReadEvent(ctx context.Context, ev *domain.ReadEvent) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, e := range r.db.reads {
		if e.UserID == ev.UserID && e.PostID == ev.PostID {
			return false, nil
		}
	}

	r.db.readIDCounter++
	stored := *ev
	stored.ID = r.db.readIDCounter
	r.db.reads = append(r.db.reads, stored)
	return true, nil
}

func (r *ReadRepo) ListReadDays(ctx context.Context, userID int64) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	seen := make(map[string]struct{})
	var days []string
	for _, e := range r.db.reads {
		if e.UserID != userID {
			continue
		}
		if _, ok := seen[e.ReadDate]; ok {
			continue
		}
		seen[e.ReadDate] = struct{}{}
		days = append(days, e.ReadDate)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days, nil
}

func (r *ReadRepo) ListRecentReads(ctx context.Context, userID int64, limit int) ([]domain.ReadEvent, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.ReadEvent
	for _, e := range r.db.reads {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReadDate != out[j].ReadDate {
			return out[i].ReadDate > out[j].ReadDate
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ReadRepo) CountReads(ctx context.Context, userID int64) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	count := 0
	for _, e := range r.db.reads {
		if e.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *ReadRepo) SentDays(ctx context.Context, from, to string) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	seen := make(map[string]struct{})
	var days []string
	for _, e := range r.db.reads {
		if !inRange(e.ReadDate, from, to) {
			continue
		}
		if _, ok := seen[e.ReadDate]; ok {
			continue
		}
		seen[e.ReadDate] = struct{}{}
		days = append(days, e.ReadDate)
	}
	sort.Strings(days)
	return days, nil
}

func (r *ReadRepo) ReadersPerDay(ctx context.Context, from, to string) (map[string]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	byDay := make(map[string]map[int64]struct{})
	for _, e := range r.db.reads {
		if !inRange(e.ReadDate, from, to) {
			continue
		}
		if byDay[e.ReadDate] == nil {
			byDay[e.ReadDate] = make(map[int64]struct{})
		}
		byDay[e.ReadDate][e.UserID] = struct{}{}
	}

	out := make(map[string]int, len(byDay))
	for day, users := range byDay {
		out[day] = len(users)
	}
	return out, nil
}

func (r *ReadRepo) ReadDaysByUser(ctx context.Context) (map[int64][]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	seen := make(map[int64]map[string]struct{})
	out := make(map[int64][]string)
	for _, e := range r.db.reads {
		if seen[e.UserID] == nil {
			seen[e.UserID] = make(map[string]struct{})
		}
		if _, ok := seen[e.UserID][e.ReadDate]; ok {
			continue
		}
		seen[e.UserID][e.ReadDate] = struct{}{}
		out[e.UserID] = append(out[e.UserID], e.ReadDate)
	}
	for id := range out {
		sort.Sort(sort.Reverse(sort.StringSlice(out[id])))
	}
	return out, nil
}

// Day strings compare correctly as text.
func inRange(day, from, to string) bool {
	if from != "" && day < from {
		return false
	}
	if to != "" && day > to {
		return false
	}
	return true
}

// --- AdminRepository ---

type AdminRepo struct {
	db *DB
}

func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, a := range r.db.admins {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *AdminRepo) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, a := range r.db.admins {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *AdminRepo) Create(ctx context.Context, username, passwordHash string) (*domain.Admin, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.adminIDCounter++
	a := &domain.Admin{
		ID:           r.db.adminIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	r.db.admins = append(r.db.admins, a)
	cp := *a
	return &cp, nil
}

func (r *AdminRepo) Count(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.admins), nil
}

// --- SessionRepository ---

type SessionRepo struct {
	db *DB
}

func (r *SessionRepo) Create(ctx context.Context, adminID int64, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		AdminID:   adminID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[token]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.sessions, token)
	return nil
}

func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now()
	for token, s := range r.db.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.db.sessions, token)
		}
	}
	return nil
}
