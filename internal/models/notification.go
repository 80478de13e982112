package models

import "time"

// NotificationType mirrors the notifications_type_check constraint
type NotificationType string

const (
	NotificationLike         NotificationType = "like"
	NotificationUnlike       NotificationType = "unlike"
	NotificationView         NotificationType = "view"
	NotificationMessage      NotificationType = "message"
	NotificationVideoCall    NotificationType = "video_call"
	NotificationMatch        NotificationType = "match"
	NotificationDate         NotificationType = "date"
	NotificationAnnouncement NotificationType = "announcement"
	NotificationOther        NotificationType = "other"
	NotificationConnection   NotificationType = "connection"
)

// IsValid checks if the notification type is accepted by the database
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationLike, NotificationUnlike, NotificationView, NotificationMessage,
		NotificationVideoCall, NotificationMatch, NotificationDate,
		NotificationAnnouncement, NotificationOther, NotificationConnection:
		return true
	}
	return false
}

// Notification is a message addressed to one user
type Notification struct {
	ID           int64            `json:"id"`
	UserID       int64            `json:"user_id"`
	FromUserID   *int64           `json:"from_user_id"`
	FromUsername *string          `json:"from_username,omitempty"`
	Type         NotificationType `json:"type"`
	Message      string           `json:"message"`
	TargetID     *string          `json:"target_id,omitempty"`
	Read         bool             `json:"read"`
	CreatedAt    time.Time        `json:"created_at"`
}

// NotificationInput holds the fields needed to create a notification.
// An empty Type is stored as "other".
type NotificationInput struct {
	UserID     int64
	FromUserID *int64
	Type       NotificationType
	Message    string
	TargetID   *string
}

// CreateNotificationRequest represents the API request to notify one user
type CreateNotificationRequest struct {
	UserID   int64            `json:"user_id"`
	Type     NotificationType `json:"type,omitempty"`
	Message  string           `json:"message"`
	TargetID *string          `json:"target_id,omitempty"`
}
