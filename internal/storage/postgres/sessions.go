package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/42-Course/matcha/internal/models"
	"github.com/42-Course/matcha/internal/storage"
)

// StartSession opens a new activity session and returns its id
func (s *Store) StartSession(ctx context.Context, userID int64, ipAddress, userAgent string) (int64, error) {
	query := `
		INSERT INTO user_sessions (user_id, started_at, ip_address, user_agent)
		VALUES ($1, NOW(), $2, $3)
		RETURNING id
	`

	var id int64
	if err := s.pool.QueryRow(ctx, query, userID, nullIfEmpty(ipAddress), nullIfEmpty(userAgent)).Scan(&id); err != nil {
		return 0, fmt.Errorf("start session for user %d: %w", userID, err)
	}
	return id, nil
}

// EndActiveSession closes the newest open session of a user and records its duration
func (s *Store) EndActiveSession(ctx context.Context, userID int64) (*models.UserSession, error) {
	query := `
		UPDATE user_sessions
		SET ended_at = NOW(),
		    duration_minutes = EXTRACT(EPOCH FROM (NOW() - started_at)) / 60
		WHERE id = (
			SELECT id FROM user_sessions
			WHERE user_id = $1 AND ended_at IS NULL
			ORDER BY started_at DESC
			LIMIT 1
		)
		RETURNING id, user_id, started_at, ended_at, duration_minutes, ip_address, user_agent
	`

	var us models.UserSession
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&us.ID,
		&us.UserID,
		&us.StartedAt,
		&us.EndedAt,
		&us.DurationMinutes,
		&us.IPAddress,
		&us.UserAgent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("end session for user %d: %w", userID, err)
	}
	return &us, nil
}

// TotalActivityMinutes sums the durations of a user's closed sessions
func (s *Store) TotalActivityMinutes(ctx context.Context, userID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(duration_minutes), 0)
		FROM user_sessions
		WHERE user_id = $1 AND duration_minutes IS NOT NULL
	`

	n, err := s.count(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("activity minutes for user %d: %w", userID, err)
	}
	return n, nil
}

// CloseIdleSessions ends open sessions whose user has not visited within idle.
// The session ends at the user's last visit, so idle time is not counted.
func (s *Store) CloseIdleSessions(ctx context.Context, idle time.Duration) (int64, error) {
	query := `
		UPDATE user_sessions AS s
		SET ended_at = lv.last_seen,
		    duration_minutes = EXTRACT(EPOCH FROM (lv.last_seen - s.started_at)) / 60
		FROM (
			SELECT us.id,
			       GREATEST(us.started_at, COALESCE(MAX(v.visited_at), us.started_at)) AS last_seen
			FROM user_sessions us
			LEFT JOIN site_visits v
			       ON v.user_id = us.user_id AND v.visited_at >= us.started_at
			WHERE us.ended_at IS NULL
			GROUP BY us.id, us.started_at
		) lv
		WHERE s.id = lv.id
		  AND lv.last_seen < NOW() - make_interval(mins => $1)
	`

	result, err := s.pool.Exec(ctx, query, int(idle/time.Minute))
	if err != nil {
		return 0, fmt.Errorf("close idle sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
