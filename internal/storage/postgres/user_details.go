package postgres

import (
	"context"
	"fmt"

	"github.com/42-Course/matcha/internal/models"
)

const publicUserColumns = `users.id, users.username, users.first_name, users.last_name,
	users.city, users.country, users.online_status`

// GetUserDetails gathers the relationships and totals shown on the admin user page
func (s *Store) GetUserDetails(ctx context.Context, user models.User) (*models.UserDetails, error) {
	details := &models.UserDetails{User: user}
	var err error

	if details.BlockedUsers, err = s.publicUsers(ctx, `
		SELECT `+publicUserColumns+` FROM users
		JOIN blocked_users ON blocked_users.blocked_id = users.id
		WHERE blocked_users.blocker_id = $1
		ORDER BY users.username ASC`, user.ID); err != nil {
		return nil, fmt.Errorf("blocked users: %w", err)
	}

	if details.LikedUsers, err = s.publicUsers(ctx, `
		SELECT `+publicUserColumns+` FROM users
		JOIN likes ON likes.liked_id = users.id
		WHERE likes.liker_id = $1
		ORDER BY users.username ASC`, user.ID); err != nil {
		return nil, fmt.Errorf("liked users: %w", err)
	}

	if details.LikedByUsers, err = s.publicUsers(ctx, `
		SELECT `+publicUserColumns+` FROM users
		JOIN likes ON likes.liker_id = users.id
		WHERE likes.liked_id = $1
		ORDER BY users.username ASC`, user.ID); err != nil {
		return nil, fmt.Errorf("liked-by users: %w", err)
	}

	if details.Matches, err = s.publicUsers(ctx, `
		SELECT `+publicUserColumns+` FROM users
		JOIN likes a ON a.liked_id = users.id AND a.liker_id = $1
		JOIN likes b ON b.liker_id = users.id AND b.liked_id = $1
		ORDER BY users.username ASC`, user.ID); err != nil {
		return nil, fmt.Errorf("matches: %w", err)
	}

	if details.ViewedProfiles, err = s.profileVisits(ctx, `
		SELECT `+publicUserColumns+`, profile_views.visited_at FROM users
		JOIN profile_views ON profile_views.viewed_id = users.id
		WHERE profile_views.viewer_id = $1
		ORDER BY profile_views.visited_at DESC`, user.ID); err != nil {
		return nil, fmt.Errorf("viewed profiles: %w", err)
	}

	if details.ProfileViewers, err = s.profileVisits(ctx, `
		SELECT `+publicUserColumns+`, profile_views.visited_at FROM users
		JOIN profile_views ON profile_views.viewer_id = users.id
		WHERE profile_views.viewed_id = $1
		ORDER BY profile_views.visited_at DESC`, user.ID); err != nil {
		return nil, fmt.Errorf("profile viewers: %w", err)
	}

	if details.TotalMessages, err = s.count(ctx, `SELECT COUNT(*) FROM messages WHERE sender_id = $1`, user.ID); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	if details.TotalDates, err = s.count(ctx, `SELECT COUNT(*) FROM dates WHERE initiator_id = $1`, user.ID); err != nil {
		return nil, fmt.Errorf("count dates: %w", err)
	}

	if details.TotalActivityMinutes, err = s.TotalActivityMinutes(ctx, user.ID); err != nil {
		return nil, err
	}

	return details, nil
}

func (s *Store) publicUsers(ctx context.Context, query string, args ...any) ([]models.PublicUser, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.PublicUser{}
	for rows.Next() {
		var u models.PublicUser
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.City, &u.Country, &u.OnlineStatus); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) profileVisits(ctx context.Context, query string, args ...any) ([]models.ProfileVisit, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	visits := []models.ProfileVisit{}
	for rows.Next() {
		var v models.ProfileVisit
		if err := rows.Scan(
			&v.ID,
			&v.Username,
			&v.FirstName,
			&v.LastName,
			&v.City,
			&v.Country,
			&v.OnlineStatus,
			&v.VisitedAt,
		); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
