package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/42-Course/matcha/internal/models"
)

// RecordVisit logs an authenticated request
func (s *Store) RecordVisit(ctx context.Context, userID int64, ipAddress, userAgent string) error {
	query := `
		INSERT INTO site_visits (user_id, visited_at, ip_address, user_agent)
		VALUES ($1, NOW(), $2, $3)
	`

	if _, err := s.pool.Exec(ctx, query, userID, nullIfEmpty(ipAddress), nullIfEmpty(userAgent)); err != nil {
		return fmt.Errorf("record visit for user %d: %w", userID, err)
	}
	return nil
}

// RecentVisits returns the newest visits joined with the username
func (s *Store) RecentVisits(ctx context.Context, limit int) ([]models.SiteVisit, error) {
	query := `
		SELECT site_visits.id, site_visits.user_id, users.username,
		       site_visits.visited_at, site_visits.ip_address, site_visits.user_agent
		FROM site_visits
		JOIN users ON users.id = site_visits.user_id
		ORDER BY site_visits.visited_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent visits: %w", err)
	}
	defer rows.Close()

	visits := []models.SiteVisit{}
	for rows.Next() {
		var v models.SiteVisit
		if err := rows.Scan(
			&v.ID,
			&v.UserID,
			&v.Username,
			&v.VisitedAt,
			&v.IPAddress,
			&v.UserAgent,
		); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// VisitCountsByUser returns visit counts per user, highest first.
// Users without visits are included with a zero count.
func (s *Store) VisitCountsByUser(ctx context.Context) ([]models.VisitCount, error) {
	query := `
		SELECT users.id, users.username, COUNT(site_visits.id) AS visit_count
		FROM users
		LEFT JOIN site_visits ON site_visits.user_id = users.id
		GROUP BY users.id, users.username
		ORDER BY visit_count DESC, users.id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("visit counts: %w", err)
	}
	defer rows.Close()

	counts := []models.VisitCount{}
	for rows.Next() {
		var c models.VisitCount
		if err := rows.Scan(&c.ID, &c.Username, &c.VisitCount); err != nil {
			return nil, fmt.Errorf("scan visit count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// recentLogins returns the latest visit of each distinct user, newest first
func (s *Store) recentLogins(ctx context.Context, limit int) ([]models.RecentLogin, error) {
	query := `
		SELECT username, visited_at, city, country
		FROM (
			SELECT DISTINCT ON (users.id)
				users.username,
				site_visits.visited_at,
				users.city,
				users.country
			FROM site_visits
			JOIN users ON users.id = site_visits.user_id
			ORDER BY users.id, site_visits.visited_at DESC
		) latest
		ORDER BY visited_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent logins: %w", err)
	}
	defer rows.Close()

	logins := []models.RecentLogin{}
	for rows.Next() {
		var l models.RecentLogin
		if err := rows.Scan(&l.Username, &l.VisitedAt, &l.City, &l.Country); err != nil {
			return nil, fmt.Errorf("scan recent login: %w", err)
		}
		logins = append(logins, l)
	}
	return logins, rows.Err()
}

// PurgeVisitsBefore deletes visits older than cutoff
func (s *Store) PurgeVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM site_visits WHERE visited_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge visits: %w", err)
	}
	return result.RowsAffected(), nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
