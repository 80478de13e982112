package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/42-Course/matcha/internal/worker"
)

type fakeStore struct {
	expired int64
	idle    time.Duration
	cutoff  time.Time
}

func (f *fakeStore) ExpireAnnouncements(context.Context) (int64, error) {
	f.expired++
	return 2, nil
}

func (f *fakeStore) CloseIdleSessions(_ context.Context, idle time.Duration) (int64, error) {
	f.idle = idle
	return 1, nil
}

func (f *fakeStore) PurgeVisitsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 10, nil
}

func TestRegister_SkipsDisabledJobs(t *testing.T) {
	r := worker.NewRegistry()
	Register(r, &fakeStore{}, Options{SessionIdle: 30 * time.Minute})

	assert.Equal(t, []string{NameCloseIdleSessions, NameExpireAnnouncements}, r.List())
}

func TestRegister_AllJobs(t *testing.T) {
	r := worker.NewRegistry()
	Register(r, &fakeStore{}, Options{SessionIdle: time.Minute, VisitRetention: 24 * time.Hour})

	assert.Equal(t, []string{NameCloseIdleSessions, NameExpireAnnouncements, NamePurgeSiteVisits}, r.List())
}

func TestJobs_Run(t *testing.T) {
	store := &fakeStore{}
	ctx := context.Background()

	n, err := ExpireAnnouncements{Store: store}.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = CloseIdleSessions{Store: store, Idle: 15 * time.Minute}.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, store.idle)

	now := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)
	n, err = PurgeSiteVisits{Store: store, Retention: 48 * time.Hour, Now: func() time.Time { return now }}.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, time.Date(2025, 4, 13, 12, 0, 0, 0, time.UTC), store.cutoff)
}

func TestPurgeSiteVisits_CutoffIsUTC(t *testing.T) {
	store := &fakeStore{}
	paris := time.FixedZone("CEST", 2*60*60)
	now := time.Date(2025, 4, 15, 14, 0, 0, 0, paris)

	_, err := PurgeSiteVisits{Store: store, Retention: 24 * time.Hour, Now: func() time.Time { return now }}.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.UTC, store.cutoff.Location())
	assert.Equal(t, time.Date(2025, 4, 14, 12, 0, 0, 0, time.UTC), store.cutoff)
}
