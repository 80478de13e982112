package postgres

import (
	"context"
	"fmt"

	"github.com/42-Course/matcha/internal/models"
)

// GetSiteStats returns dashboard totals and the latest logins
func (s *Store) GetSiteStats(ctx context.Context, recentLogins int) (*models.SiteStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM messages) AS total_messages,
			(SELECT COUNT(*) FROM dates) AS total_dates,
			(SELECT COUNT(*)
			   FROM likes a
			   JOIN likes b ON a.liker_id = b.liked_id AND a.liked_id = b.liker_id
			  WHERE a.liker_id < a.liked_id) AS total_matches
	`

	var stats models.SiteStats
	err := s.pool.QueryRow(ctx, query).Scan(
		&stats.TotalUsers,
		&stats.TotalMessages,
		&stats.TotalDates,
		&stats.TotalMatches,
	)
	if err != nil {
		return nil, fmt.Errorf("site totals: %w", err)
	}

	stats.RecentLogins, err = s.recentLogins(ctx, recentLogins)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
