package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/42-Course/matcha/internal/models"
)

func TestStatsRoutes_AuthenticatedNonAdmin(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/admin/stats",
		"/admin/stats/visits-over-time",
		"/admin/stats/messages-over-time",
		"/admin/stats/profile-views-over-time",
		"/admin/stats/dates-over-time",
		"/admin/stats/sessions-over-time",
		"/admin/stats/user-locations",
	} {
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, aliceID, nil).Code, path)
		assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, path, 0, nil).Code, path)
	}
}

func TestTimeSeries(t *testing.T) {
	env := newTestEnv(t)
	env.store.series[models.SeriesMessages] = []models.DailyCount{
		{Date: "2025-04-14", Count: 3},
		{Date: "2025-04-15", Count: 5},
	}

	w := env.do(http.MethodGet, "/admin/stats/messages-over-time?days=7", aliceID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	points := decodeBody(t, w)["data"].([]any)
	require.Len(t, points, 2)
	assert.Equal(t, "2025-04-14", points[0].(map[string]any)["date"])
	assert.EqualValues(t, 5, points[1].(map[string]any)["count"])
}

func TestTimeSeries_DaysValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/admin/stats/visits-over-time?days=abc", aliceID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, q := range []string{"", "?days=0", "?days=-4", "?days=9999"} {
		w = env.do(http.MethodGet, "/admin/stats/visits-over-time"+q, aliceID, nil)
		assert.Equal(t, http.StatusOK, w.Code, q)
	}

	_, clampedHigh := env.cache.data["stats:series:visits:365"]
	_, clampedLow := env.cache.data["stats:series:visits:1"]
	_, byDefault := env.cache.data["stats:series:visits:30"]
	assert.True(t, clampedHigh)
	assert.True(t, clampedLow)
	assert.True(t, byDefault)
}

func TestUserLocations(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/admin/stats/user-locations", aliceID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	locations := decodeBody(t, w)["data"].([]any)
	require.Len(t, locations, 1)
	assert.Equal(t, "alice", locations[0].(map[string]any)["username"])
}

func TestVisits(t *testing.T) {
	env := newTestEnv(t)

	// each authenticated request records one visit
	env.do(http.MethodGet, "/announcements", aliceID, nil)
	env.do(http.MethodGet, "/announcements", aliceID, nil)

	w := env.do(http.MethodGet, "/admin/visits?limit=2", adminID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"].([]any), 2)

	w = env.do(http.MethodGet, "/admin/visits?limit=ten", adminID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/admin/visits/stats", adminID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	counts := decodeBody(t, w)["data"].([]any)
	require.Len(t, counts, 5)

	byName := map[string]float64{}
	for _, c := range counts {
		row := c.(map[string]any)
		byName[row["username"].(string)] = row["visit_count"].(float64)
	}
	assert.EqualValues(t, 2, byName["alice"])
	assert.EqualValues(t, 3, byName[adminName])
	assert.EqualValues(t, 0, byName["bob"])
	assert.Equal(t, adminName, counts[0].(map[string]any)["username"])
}
