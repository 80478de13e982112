package models

import "time"

// User is the admin view of a row in users. The password digest is never loaded.
type User struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	IsBanned        bool       `json:"is_banned"`
	IsEmailVerified bool       `json:"is_email_verified"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	City            *string    `json:"city"`
	Country         *string    `json:"country"`
	OnlineStatus    bool       `json:"online_status"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PublicUser is the reduced user shape embedded in relationship listings
type PublicUser struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	City         *string `json:"city"`
	Country      *string `json:"country"`
	OnlineStatus bool    `json:"online_status"`
}

// ProfileVisit is a public user together with the time of a profile view
type ProfileVisit struct {
	PublicUser
	VisitedAt time.Time `json:"visited_at"`
}

// UserLocation is one point on the user globe
type UserLocation struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	City         *string `json:"city"`
	Country      *string `json:"country"`
	OnlineStatus bool    `json:"online_status"`
}

// UserDetails aggregates everything the admin user page shows
type UserDetails struct {
	User                 User           `json:"user"`
	BlockedUsers         []PublicUser   `json:"blocked_users"`
	LikedUsers           []PublicUser   `json:"liked_users"`
	LikedByUsers         []PublicUser   `json:"liked_by_users"`
	ViewedProfiles       []ProfileVisit `json:"viewed_profiles"`
	ProfileViewers       []ProfileVisit `json:"profile_viewers"`
	Matches              []PublicUser   `json:"matches"`
	TotalMessages        int64          `json:"total_messages"`
	TotalDates           int64          `json:"total_dates"`
	TotalActivityMinutes int64          `json:"total_activity_minutes"`
}
