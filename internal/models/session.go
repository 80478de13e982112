package models

import "time"

// UserSession is one login-to-logout span of activity
type UserSession struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	IPAddress       *string    `json:"ip_address,omitempty"`
	UserAgent       *string    `json:"user_agent,omitempty"`
}
