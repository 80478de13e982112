package api

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/42-Course/matcha/internal/models"
	"github.com/42-Course/matcha/internal/storage"
)

type recordedVisit struct {
	UserID    int64
	IP        string
	UserAgent string
}

// fakeStore is an in-memory storage.Store for handler tests
type fakeStore struct {
	mu sync.Mutex

	users         map[int64]*models.User
	visits        []recordedVisit
	announcements map[int64]*models.Announcement
	notifications map[int64]*models.Notification
	sessions      map[int64]*models.UserSession
	series        map[models.Series][]models.DailyCount
	nextID        int64

	statsCalls int
	pingErr    error
	visitErr   error
	failWith   error
}

var _ storage.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         map[int64]*models.User{},
		announcements: map[int64]*models.Announcement{},
		notifications: map[int64]*models.Notification{},
		sessions:      map[int64]*models.UserSession{},
		series:        map[models.Series][]models.DailyCount{},
		nextID:        100,
	}
}

func (f *fakeStore) addUser(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = &u
	return &u
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) ListUsers(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	users := []models.User{}
	for _, u := range f.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeStore) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return storage.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeStore) GetUserDetails(_ context.Context, user models.User) (*models.UserDetails, error) {
	return &models.UserDetails{
		User:           user,
		BlockedUsers:   []models.PublicUser{},
		LikedUsers:     []models.PublicUser{},
		LikedByUsers:   []models.PublicUser{},
		ViewedProfiles: []models.ProfileVisit{},
		ProfileViewers: []models.ProfileVisit{},
		Matches:        []models.PublicUser{},
		TotalMessages:  7,
	}, nil
}

func (f *fakeStore) UserLocations(context.Context) ([]models.UserLocation, error) {
	return []models.UserLocation{{ID: 1, Username: "alice", Latitude: 48.85, Longitude: 2.35}}, nil
}

func (f *fakeStore) RecordVisit(_ context.Context, userID int64, ip, ua string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.visitErr != nil {
		return f.visitErr
	}
	f.visits = append(f.visits, recordedVisit{UserID: userID, IP: ip, UserAgent: ua})
	return nil
}

func (f *fakeStore) recorded() []recordedVisit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedVisit(nil), f.visits...)
}

func (f *fakeStore) RecentVisits(_ context.Context, limit int) ([]models.SiteVisit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.SiteVisit{}
	for i := len(f.visits) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, models.SiteVisit{ID: int64(i + 1), UserID: f.visits[i].UserID})
	}
	return out, nil
}

func (f *fakeStore) VisitCountsByUser(context.Context) ([]models.VisitCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[int64]int64{}
	for _, v := range f.visits {
		counts[v.UserID]++
	}
	out := []models.VisitCount{}
	for id, u := range f.users {
		out = append(out, models.VisitCount{ID: id, Username: u.Username, VisitCount: counts[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VisitCount != out[j].VisitCount {
			return out[i].VisitCount > out[j].VisitCount
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) PurgeVisitsBefore(context.Context, time.Time) (int64, error) { return 0, nil }

func (f *fakeStore) GetSiteStats(context.Context, int) (*models.SiteStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	return &models.SiteStats{
		TotalUsers:   int64(len(f.users)),
		RecentLogins: []models.RecentLogin{},
	}, nil
}

func (f *fakeStore) TimeSeries(_ context.Context, series models.Series, days int) ([]models.DailyCount, error) {
	if !series.IsValid() {
		return nil, storage.ErrInvalidSeries
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	if points, ok := f.series[series]; ok {
		return points, nil
	}
	return []models.DailyCount{}, nil
}

func (f *fakeStore) CreateAnnouncement(_ context.Context, in models.AnnouncementInput) (*models.Announcement, []models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, nil, f.failWith
	}

	author, ok := f.users[in.CreatedBy]
	if !ok {
		return nil, nil, storage.ErrUserNotFound
	}
	a := &models.Announcement{
		ID:                f.id(),
		Title:             in.Title,
		Content:           in.Content,
		CreatedBy:         in.CreatedBy,
		CreatedByUsername: author.Username,
		CreatedAt:         time.Now(),
		ExpiresAt:         in.ExpiresAt,
		IsActive:          true,
	}
	f.announcements[a.ID] = a

	target := strconv.FormatInt(a.ID, 10)
	from := in.CreatedBy
	notifications := []models.Notification{}
	for id := range f.users {
		if id == in.CreatedBy {
			continue
		}
		n := &models.Notification{
			ID:         f.id(),
			UserID:     id,
			FromUserID: &from,
			Type:       models.NotificationAnnouncement,
			Message:    models.AnnouncementMessage(a.Title),
			TargetID:   &target,
			CreatedAt:  time.Now(),
		}
		f.notifications[n.ID] = n
		notifications = append(notifications, *n)
	}
	cp := *a
	return &cp, notifications, nil
}

func (f *fakeStore) ListAnnouncements(context.Context) ([]models.Announcement, error) {
	return f.listAnnouncements(false), nil
}

func (f *fakeStore) ListActiveAnnouncements(context.Context) ([]models.Announcement, error) {
	return f.listAnnouncements(true), nil
}

func (f *fakeStore) listAnnouncements(activeOnly bool) []models.Announcement {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	out := []models.Announcement{}
	for _, a := range f.announcements {
		if activeOnly && (!a.IsActive || (a.ExpiresAt != nil && !a.ExpiresAt.After(now))) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeStore) GetAnnouncement(_ context.Context, id int64) (*models.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.announcements[id]
	if !ok {
		return nil, storage.ErrAnnouncementNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) DeactivateAnnouncement(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.announcements[id]
	if !ok {
		return storage.ErrAnnouncementNotFound
	}
	a.IsActive = false
	return nil
}

func (f *fakeStore) DeleteAnnouncement(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.announcements[id]; !ok {
		return storage.ErrAnnouncementNotFound
	}
	delete(f.announcements, id)
	return nil
}

func (f *fakeStore) ExpireAnnouncements(context.Context) (int64, error) { return 0, nil }

func (f *fakeStore) CreateNotification(_ context.Context, in models.NotificationInput) (*models.Notification, error) {
	if in.Type == "" {
		in.Type = models.NotificationOther
	}
	if !in.Type.IsValid() {
		return nil, storage.ErrInvalidNotification
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := &models.Notification{
		ID:         f.id(),
		UserID:     in.UserID,
		FromUserID: in.FromUserID,
		Type:       in.Type,
		Message:    in.Message,
		TargetID:   in.TargetID,
		CreatedAt:  time.Now(),
	}
	f.notifications[n.ID] = n
	cp := *n
	return &cp, nil
}

func (f *fakeStore) ListNotifications(_ context.Context, userID int64) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Notification{}
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) MarkNotificationRead(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok || n.UserID != userID {
		return storage.ErrNotificationNotFound
	}
	n.Read = true
	return nil
}

func (f *fakeStore) DeleteNotification(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok || n.UserID != userID {
		return storage.ErrNotificationNotFound
	}
	delete(f.notifications, id)
	return nil
}

func (f *fakeStore) StartSession(_ context.Context, userID int64, ip, ua string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &models.UserSession{ID: f.id(), UserID: userID, StartedAt: time.Now()}
	if ip != "" {
		s.IPAddress = &ip
	}
	if ua != "" {
		s.UserAgent = &ua
	}
	f.sessions[s.ID] = s
	return s.ID, nil
}

func (f *fakeStore) EndActiveSession(_ context.Context, userID int64) (*models.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var newest *models.UserSession
	for _, s := range f.sessions {
		if s.UserID == userID && s.EndedAt == nil && (newest == nil || s.ID > newest.ID) {
			newest = s
		}
	}
	if newest == nil {
		return nil, storage.ErrSessionNotFound
	}
	now := time.Now()
	minutes := int(now.Sub(newest.StartedAt).Minutes())
	newest.EndedAt = &now
	newest.DurationMinutes = &minutes
	cp := *newest
	return &cp, nil
}

func (f *fakeStore) TotalActivityMinutes(context.Context, int64) (int64, error) { return 0, nil }

func (f *fakeStore) CloseIdleSessions(context.Context, time.Duration) (int64, error) { return 0, nil }

var errBoom = errors.New("boom")
