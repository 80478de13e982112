package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(SiteVisitsRecorded.WithLabelValues(ResultFailed))
	IncrementSiteVisit(ResultFailed)
	assert.Equal(t, before+1, testutil.ToFloat64(SiteVisitsRecorded.WithLabelValues(ResultFailed)))

	before = testutil.ToFloat64(NotificationsCreated.WithLabelValues("announcement"))
	AddNotificationsCreated("announcement", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(NotificationsCreated.WithLabelValues("announcement")))

	before = testutil.ToFloat64(MaintenanceJobRuns.WithLabelValues("expire_announcements", ResultSkipped))
	IncrementJobRun("expire_announcements", ResultSkipped)
	assert.Equal(t, before+1, testutil.ToFloat64(MaintenanceJobRuns.WithLabelValues("expire_announcements", ResultSkipped)))
}
