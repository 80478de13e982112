package models

// SiteStats holds the dashboard totals
type SiteStats struct {
	TotalUsers    int64         `json:"total_users"`
	TotalMessages int64         `json:"total_messages"`
	TotalDates    int64         `json:"total_dates"`
	TotalMatches  int64         `json:"total_matches"`
	RecentLogins  []RecentLogin `json:"recent_logins"`
}

// DailyCount is one point of a per-day time series
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// Series identifies a per-day time series
type Series string

const (
	SeriesVisits       Series = "visits"
	SeriesMessages     Series = "messages"
	SeriesProfileViews Series = "profile-views"
	SeriesDates        Series = "dates"
	SeriesSessions     Series = "sessions"
)

// IsValid checks if the series is known
func (s Series) IsValid() bool {
	switch s {
	case SeriesVisits, SeriesMessages, SeriesProfileViews, SeriesDates, SeriesSessions:
		return true
	}
	return false
}

// String returns the string representation of Series
func (s Series) String() string {
	return string(s)
}
