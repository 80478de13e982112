package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/42-Course/matcha/internal/models"
	"github.com/42-Course/matcha/internal/storage"
)

const announcementSelect = `
	SELECT announcements.id, announcements.title, announcements.content,
	       announcements.created_by, users.username,
	       announcements.created_at, announcements.expires_at, announcements.is_active
	FROM announcements
	JOIN users ON users.id = announcements.created_by
`

func scanAnnouncement(row rowScanner) (*models.Announcement, error) {
	var a models.Announcement
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.CreatedBy,
		&a.CreatedByUsername,
		&a.CreatedAt,
		&a.ExpiresAt,
		&a.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAnnouncement stores an announcement and creates one notification for
// every user except the author, atomically
func (s *Store) CreateAnnouncement(ctx context.Context, in models.AnnouncementInput) (*models.Announcement, []models.Notification, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin announcement tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insert := `
		WITH inserted AS (
			INSERT INTO announcements (title, content, created_by, expires_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, title, content, created_by, created_at, expires_at, is_active
		)
		SELECT inserted.id, inserted.title, inserted.content,
		       inserted.created_by, users.username,
		       inserted.created_at, inserted.expires_at, inserted.is_active
		FROM inserted
		JOIN users ON users.id = inserted.created_by
	`

	announcement, err := scanAnnouncement(tx.QueryRow(ctx, insert,
		in.Title,
		in.Content,
		in.CreatedBy,
		in.ExpiresAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, storage.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("insert announcement: %w", err)
	}

	fanOut := `
		INSERT INTO notifications (to_user_id, from_user_id, type, message, target_id)
		SELECT id, $1::integer, $2::varchar, $3::text, $4::text
		FROM users
		WHERE id <> $1::integer
		RETURNING id, to_user_id, from_user_id, type, message, target_id, read, created_at
	`

	rows, err := tx.Query(ctx, fanOut,
		in.CreatedBy,
		models.NotificationAnnouncement,
		models.AnnouncementMessage(announcement.Title),
		strconv.FormatInt(announcement.ID, 10),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("fan out announcement %d: %w", announcement.ID, err)
	}

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.FromUserID,
			&n.Type,
			&n.Message,
			&n.TargetID,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan fan-out notification: %w", err)
		}
		n.FromUsername = &announcement.CreatedByUsername
		notifications = append(notifications, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("fan out announcement %d: %w", announcement.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit announcement: %w", err)
	}

	return announcement, notifications, nil
}

// ListAnnouncements returns all announcements, newest first
func (s *Store) ListAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	return s.queryAnnouncements(ctx, announcementSelect+` ORDER BY announcements.created_at DESC`)
}

// ListActiveAnnouncements returns active, unexpired announcements, newest first
func (s *Store) ListActiveAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	return s.queryAnnouncements(ctx, announcementSelect+`
		WHERE announcements.is_active = TRUE
		  AND (announcements.expires_at IS NULL OR announcements.expires_at > NOW())
		ORDER BY announcements.created_at DESC`)
}

func (s *Store) queryAnnouncements(ctx context.Context, query string) ([]models.Announcement, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	announcements := []models.Announcement{}
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		announcements = append(announcements, *a)
	}
	return announcements, rows.Err()
}

// GetAnnouncement retrieves an announcement by id
func (s *Store) GetAnnouncement(ctx context.Context, id int64) (*models.Announcement, error) {
	a, err := scanAnnouncement(s.pool.QueryRow(ctx, announcementSelect+` WHERE announcements.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("get announcement %d: %w", id, err)
	}
	return a, nil
}

// DeactivateAnnouncement hides an announcement without deleting it
func (s *Store) DeactivateAnnouncement(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, `UPDATE announcements SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate announcement %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrAnnouncementNotFound
	}
	return nil
}

// DeleteAnnouncement removes an announcement
func (s *Store) DeleteAnnouncement(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrAnnouncementNotFound
	}
	return nil
}

// ExpireAnnouncements deactivates announcements whose expiry has passed
func (s *Store) ExpireAnnouncements(ctx context.Context) (int64, error) {
	query := `
		UPDATE announcements
		SET is_active = FALSE
		WHERE is_active = TRUE
		  AND expires_at IS NOT NULL
		  AND expires_at <= NOW()
	`

	result, err := s.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("expire announcements: %w", err)
	}
	return result.RowsAffected(), nil
}
