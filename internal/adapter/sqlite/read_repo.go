package sqlite

import (
	"context"

	"streaks/internal/domain"
)

// ReadRepo implements domain.ReadRepository.
type ReadRepo struct {
	db *DB
}

func (r *ReadRepo) InsertReadEvent(ctx context.Context, ev *domain.ReadEvent) (bool, error) {
	res, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO read_events (user_id, post_id, read_date, utm_source, utm_medium, utm_campaign, utm_channel, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		ev.UserID, ev.PostID, ev.ReadDate,
		ev.UTM.Source, ev.UTM.Medium, ev.UTM.Campaign, ev.UTM.Channel,
		ev.CreatedAt.UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ReadRepo) ListReadDays(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT DISTINCT read_date FROM read_events WHERE user_id = ? ORDER BY read_date DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *ReadRepo) ListRecentReads(ctx context.Context, userID int64, limit int) ([]domain.ReadEvent, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, user_id, post_id, read_date, utm_source, utm_medium, utm_campaign, utm_channel, created_at
		 FROM read_events WHERE user_id = ? ORDER BY read_date DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.ReadEvent, 0, limit)
	for rows.Next() {
		var ev domain.ReadEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.PostID, &ev.ReadDate,
			&ev.UTM.Source, &ev.UTM.Medium, &ev.UTM.Campaign, &ev.UTM.Channel, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *ReadRepo) CountReads(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM read_events WHERE user_id = ?", userID).Scan(&count)
	return count, err
}

func (r *ReadRepo) SentDays(ctx context.Context, from, to string) ([]string, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT DISTINCT read_date FROM read_events
		 WHERE (? = '' OR read_date >= ?) AND (? = '' OR read_date <= ?)
		 ORDER BY read_date`,
		from, from, to, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *ReadRepo) ReadersPerDay(ctx context.Context, from, to string) (map[string]int, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT read_date, COUNT(DISTINCT user_id) FROM read_events
		 WHERE (? = '' OR read_date >= ?) AND (? = '' OR read_date <= ?)
		 GROUP BY read_date`,
		from, from, to, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[string]int)
	for rows.Next() {
		var d string
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, err
		}
		out[d] = n
	}
	return out, rows.Err()
}

func (r *ReadRepo) ReadDaysByUser(ctx context.Context) (map[int64][]string, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT DISTINCT user_id, read_date FROM read_events ORDER BY user_id, read_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[int64][]string)
	for rows.Next() {
		var id int64
		var d string
		if err := rows.Scan(&id, &d); err != nil {
			return nil, err
		}
		out[id] = append(out[id], d)
	}
	return out, rows.Err()
}
