package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationType_IsValid(t *testing.T) {
	for _, nt := range []NotificationType{
		NotificationLike, NotificationUnlike, NotificationView, NotificationMessage,
		NotificationVideoCall, NotificationMatch, NotificationDate,
		NotificationAnnouncement, NotificationOther, NotificationConnection,
	} {
		assert.True(t, nt.IsValid(), string(nt))
	}
	assert.False(t, NotificationType("poke").IsValid())
	assert.False(t, NotificationType("").IsValid())
}

func TestSeries_IsValid(t *testing.T) {
	assert.True(t, SeriesProfileViews.IsValid())
	assert.True(t, SeriesSessions.IsValid())
	assert.False(t, Series("likes").IsValid())
}

func TestProfileVisit_FlattensPublicUser(t *testing.T) {
	v := ProfileVisit{
		PublicUser: PublicUser{ID: 3, Username: "bob"},
		VisitedAt:  time.Date(2025, 4, 15, 10, 30, 0, 0, time.UTC),
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "bob", out["username"])
	assert.Equal(t, "2025-04-15T10:30:00Z", out["visited_at"])
	assert.NotContains(t, out, "PublicUser")
}

func TestAnnouncementMessage(t *testing.T) {
	assert.Equal(t, "New announcement: Maintenance", AnnouncementMessage("Maintenance"))
}
