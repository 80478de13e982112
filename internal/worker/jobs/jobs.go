// Package jobs holds the periodic maintenance jobs run by the worker.
package jobs

import (
	"context"
	"time"

	"github.com/42-Course/matcha/internal/worker"
)

const (
	NameExpireAnnouncements = "expire_announcements"
	NameCloseIdleSessions   = "close_idle_sessions"
	NamePurgeSiteVisits     = "purge_site_visits"
)

type AnnouncementExpirer interface {
	ExpireAnnouncements(ctx context.Context) (int64, error)
}

type IdleSessionCloser interface {
	CloseIdleSessions(ctx context.Context, idle time.Duration) (int64, error)
}

type VisitPurger interface {
	PurgeVisitsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store is the part of storage.Store the jobs use
type Store interface {
	AnnouncementExpirer
	IdleSessionCloser
	VisitPurger
}

// Options configures the maintenance jobs
type Options struct {
	SessionIdle    time.Duration
	VisitRetention time.Duration // zero disables purging
}

// Register adds every enabled job to the registry
func Register(r *worker.Registry, store Store, opts Options) {
	r.Register(ExpireAnnouncements{Store: store})
	if opts.SessionIdle > 0 {
		r.Register(CloseIdleSessions{Store: store, Idle: opts.SessionIdle})
	}
	if opts.VisitRetention > 0 {
		r.Register(PurgeSiteVisits{Store: store, Retention: opts.VisitRetention, Now: time.Now})
	}
}

// ExpireAnnouncements deactivates announcements past their expiry
type ExpireAnnouncements struct {
	Store AnnouncementExpirer
}

func (ExpireAnnouncements) Name() string { return NameExpireAnnouncements }

func (j ExpireAnnouncements) Run(ctx context.Context) (int64, error) {
	return j.Store.ExpireAnnouncements(ctx)
}

// CloseIdleSessions ends sessions of users who stopped making requests
type CloseIdleSessions struct {
	Store IdleSessionCloser
	Idle  time.Duration
}

func (CloseIdleSessions) Name() string { return NameCloseIdleSessions }

func (j CloseIdleSessions) Run(ctx context.Context) (int64, error) {
	return j.Store.CloseIdleSessions(ctx, j.Idle)
}

// PurgeSiteVisits deletes visits older than the retention window
type PurgeSiteVisits struct {
	Store     VisitPurger
	Retention time.Duration
	Now       func() time.Time
}

func (PurgeSiteVisits) Name() string { return NamePurgeSiteVisits }

func (j PurgeSiteVisits) Run(ctx context.Context) (int64, error) {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	return j.Store.PurgeVisitsBefore(ctx, now().Add(-j.Retention).UTC())
}
