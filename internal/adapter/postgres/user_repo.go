package postgres

import (
	"context"
	"database/sql"
	"time"

	"streaks/internal/domain"
)

// UserRepo implements domain.UserRepository.
type UserRepo struct {
	db *DB
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanOne(r.db.sql.QueryRowContext(ctx,
		"SELECT id, email, current_streak, highest_streak, last_read_date, created_at FROM users WHERE email = $1",
		email,
	))
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanOne(r.db.sql.QueryRowContext(ctx,
		"SELECT id, email, current_streak, highest_streak, last_read_date, created_at FROM users WHERE id = $1",
		id,
	))
}

func (r *UserRepo) Create(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.sql.QueryRowContext(ctx,
		"INSERT INTO users (email, created_at) VALUES ($1, $2) RETURNING id, email, current_streak, highest_streak, created_at",
		email, time.Now(),
	).Scan(&u.ID, &u.Email, &u.CurrentStreak, &u.HighestStreak, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UpdateStreak(ctx context.Context, id int64, current, highest int, lastReadDate string) error {
	_, err := r.db.sql.ExecContext(ctx,
		"UPDATE users SET current_streak = $1, highest_streak = $2, last_read_date = $3 WHERE id = $4",
		current, highest, lastReadDate, id,
	)
	return err
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT id, email, current_streak, highest_streak, last_read_date, created_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.User
	for rows.Next() {
		var u domain.User
		var lastRead sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.CurrentStreak, &u.HighestStreak, &lastRead, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.LastReadDate = lastRead.String
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

func (r *UserRepo) scanOne(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var lastRead sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.CurrentStreak, &u.HighestStreak, &lastRead, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.LastReadDate = lastRead.String
	return &u, nil
}
