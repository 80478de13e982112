package models

import "time"

// Announcement is an admin-authored broadcast message with optional expiry
type Announcement struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	CreatedBy         int64      `json:"created_by"`
	CreatedByUsername string     `json:"created_by_username"`
	CreatedAt         time.Time  `json:"created_at"`
	ExpiresAt         *time.Time `json:"expires_at"`
	IsActive          bool       `json:"is_active"`
}

// CreateAnnouncementRequest represents the API request to post an announcement
type CreateAnnouncementRequest struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	ExpiresAt *string `json:"expires_at,omitempty"`
}

// AnnouncementInput is a validated announcement ready to be stored
type AnnouncementInput struct {
	Title     string
	Content   string
	CreatedBy int64
	ExpiresAt *time.Time
}

// AnnouncementMessage is the notification text sent for an announcement
func AnnouncementMessage(title string) string {
	return "New announcement: " + title
}
