package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/42-Course/matcha/internal/models"
	"github.com/42-Course/matcha/internal/storage"
)

// userColumns never includes password_digest
const userColumns = `
	id, username, email, first_name, last_name,
	is_banned, is_email_verified,
	latitude, longitude, city, country,
	online_status, last_seen_at, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.IsBanned,
		&u.IsEmailVerified,
		&u.Latitude,
		&u.Longitude,
		&u.City,
		&u.Country,
		&u.OnlineStatus,
		&u.LastSeenAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns every user ordered by id
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// GetUserByID retrieves a user by id
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

// DeleteUser removes a user; visits, sessions, announcements and notifications cascade
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// UserLocations returns users that have coordinates
func (s *Store) UserLocations(ctx context.Context) ([]models.UserLocation, error) {
	query := `
		SELECT id, username, latitude, longitude, city, country, online_status
		FROM users
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("user locations: %w", err)
	}
	defer rows.Close()

	locations := []models.UserLocation{}
	for rows.Next() {
		var l models.UserLocation
		if err := rows.Scan(
			&l.ID,
			&l.Username,
			&l.Latitude,
			&l.Longitude,
			&l.City,
			&l.Country,
			&l.OnlineStatus,
		); err != nil {
			return nil, fmt.Errorf("scan user location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}
