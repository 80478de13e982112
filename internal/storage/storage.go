package storage

import (
	"context"
	"errors"
	"time"

	"github.com/42-Course/matcha/internal/models"
)

// Common errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidSeries        = errors.New("invalid time series")
	ErrInvalidNotification  = errors.New("invalid notification type")
)

// Store defines the interface for the admin and analytics storage operations
// This allows for different implementations (PostgreSQL, in-memory, etc.)
type Store interface {
	// Ping checks that the database is reachable
	Ping(ctx context.Context) error

	// ListUsers returns every user ordered by id
	ListUsers(ctx context.Context) ([]models.User, error)

	// GetUserByID retrieves a user by id
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// GetUserByUsername retrieves a user by username
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// DeleteUser removes a user; dependent rows cascade
	DeleteUser(ctx context.Context, id int64) error

	// GetUserDetails gathers the relationships and totals shown on the admin user page
	GetUserDetails(ctx context.Context, user models.User) (*models.UserDetails, error)

	// UserLocations returns users that have coordinates
	UserLocations(ctx context.Context) ([]models.UserLocation, error)

	// RecordVisit logs an authenticated request
	RecordVisit(ctx context.Context, userID int64, ipAddress, userAgent string) error

	// RecentVisits returns the newest visits joined with the username
	RecentVisits(ctx context.Context, limit int) ([]models.SiteVisit, error)

	// VisitCountsByUser returns visit counts per user, highest first
	VisitCountsByUser(ctx context.Context) ([]models.VisitCount, error)

	// PurgeVisitsBefore deletes visits older than cutoff
	PurgeVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// GetSiteStats returns dashboard totals and the latest logins
	GetSiteStats(ctx context.Context, recentLogins int) (*models.SiteStats, error)

	// TimeSeries returns per-day counts for the last days days
	TimeSeries(ctx context.Context, series models.Series, days int) ([]models.DailyCount, error)

	// CreateAnnouncement stores an announcement and notifies every other user in one transaction
	CreateAnnouncement(ctx context.Context, in models.AnnouncementInput) (*models.Announcement, []models.Notification, error)

	// ListAnnouncements returns all announcements, newest first
	ListAnnouncements(ctx context.Context) ([]models.Announcement, error)

	// ListActiveAnnouncements returns active, unexpired announcements, newest first
	ListActiveAnnouncements(ctx context.Context) ([]models.Announcement, error)

	// GetAnnouncement retrieves an announcement by id
	GetAnnouncement(ctx context.Context, id int64) (*models.Announcement, error)

	// DeactivateAnnouncement hides an announcement without deleting it
	DeactivateAnnouncement(ctx context.Context, id int64) error

	// DeleteAnnouncement removes an announcement
	DeleteAnnouncement(ctx context.Context, id int64) error

	// ExpireAnnouncements deactivates announcements whose expiry has passed
	ExpireAnnouncements(ctx context.Context) (int64, error)

	// CreateNotification stores a single notification
	CreateNotification(ctx context.Context, in models.NotificationInput) (*models.Notification, error)

	// ListNotifications returns a user's notifications, newest first
	ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error)

	// MarkNotificationRead marks a notification owned by userID as read
	MarkNotificationRead(ctx context.Context, userID, id int64) error

	// DeleteNotification removes a notification owned by userID
	DeleteNotification(ctx context.Context, userID, id int64) error

	// StartSession opens a new activity session and returns its id
	StartSession(ctx context.Context, userID int64, ipAddress, userAgent string) (int64, error)

	// EndActiveSession closes the newest open session of a user
	EndActiveSession(ctx context.Context, userID int64) (*models.UserSession, error)

	// TotalActivityMinutes sums the durations of a user's closed sessions
	TotalActivityMinutes(ctx context.Context, userID int64) (int64, error)

	// CloseIdleSessions ends open sessions whose user has not visited within idle
	CloseIdleSessions(ctx context.Context, idle time.Duration) (int64, error)
}
