package models

import "time"

// SiteVisit is a logged authenticated request
type SiteVisit struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	VisitedAt time.Time `json:"visited_at"`
	IPAddress *string   `json:"ip_address"`
	UserAgent *string   `json:"user_agent"`
}

// VisitCount is the number of visits logged for one user
type VisitCount struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	VisitCount int64  `json:"visit_count"`
}

// RecentLogin is the latest visit of a distinct user with their location
type RecentLogin struct {
	Username  string    `json:"username"`
	VisitedAt time.Time `json:"visited_at"`
	City      *string   `json:"city"`
	Country   *string   `json:"country"`
}
