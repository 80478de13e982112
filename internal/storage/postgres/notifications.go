package postgres

import (
	"context"
	"fmt"

	"github.com/42-Course/matcha/internal/models"
	"github.com/42-Course/matcha/internal/storage"
)

// CreateNotification stores a single notification
func (s *Store) CreateNotification(ctx context.Context, in models.NotificationInput) (*models.Notification, error) {
	if in.Type == "" {
		in.Type = models.NotificationOther
	}
	if !in.Type.IsValid() {
		return nil, storage.ErrInvalidNotification
	}

	query := `
		WITH inserted AS (
			INSERT INTO notifications (to_user_id, from_user_id, type, message, target_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, to_user_id, from_user_id, type, message, target_id, read, created_at
		)
		SELECT inserted.id, inserted.to_user_id, inserted.from_user_id, u.username,
		       inserted.type, inserted.message, inserted.target_id, inserted.read, inserted.created_at
		FROM inserted
		LEFT JOIN users u ON u.id = inserted.from_user_id
	`

	n, err := scanNotification(s.pool.QueryRow(ctx, query,
		in.UserID,
		in.FromUserID,
		in.Type,
		in.Message,
		in.TargetID,
	))
	if err != nil {
		return nil, fmt.Errorf("create notification for user %d: %w", in.UserID, err)
	}
	return n, nil
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.FromUserID,
		&n.FromUsername,
		&n.Type,
		&n.Message,
		&n.TargetID,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotifications returns a user's notifications, newest first
func (s *Store) ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	query := `
		SELECT notifications.id, notifications.to_user_id, notifications.from_user_id, u.username,
		       notifications.type, notifications.message, notifications.target_id,
		       notifications.read, notifications.created_at
		FROM notifications
		LEFT JOIN users u ON u.id = notifications.from_user_id
		WHERE notifications.to_user_id = $1
		ORDER BY notifications.created_at DESC, notifications.id DESC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications for user %d: %w", userID, err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks a notification owned by userID as read
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	result, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND to_user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotificationNotFound
	}
	return nil
}

// DeleteNotification removes a notification owned by userID
func (s *Store) DeleteNotification(ctx context.Context, userID, id int64) error {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND to_user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotificationNotFound
	}
	return nil
}
