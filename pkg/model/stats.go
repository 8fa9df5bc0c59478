package model

// UserPlayStat summarizes one user's activity, derived from their play
// records and profile at aggregation time.
type UserPlayStat struct {
	Username string `json:"username"`

	TotalPlays     int   `json:"total_plays"`
	TotalWatchTime int64 `json:"total_watch_time"`
	FavoriteCount  int   `json:"favorite_count"`

	FirstPlayAt int64 `json:"first_play_at,omitempty"`
	LastPlayAt  int64 `json:"last_play_at,omitempty"`

	// RecentRecords carries the most recently saved records for display.
	RecentRecords []PlayRecord `json:"recent_records,omitempty"`

	LoginCount  int   `json:"login_count,omitempty"`
	LastLoginAt int64 `json:"last_login_at,omitempty"`
}

// PlayStatsResult is the site-wide activity summary merged from all users.
type PlayStatsResult struct {
	TotalPlays     int   `json:"total_plays"`
	TotalWatchTime int64 `json:"total_watch_time"`
	TotalUsers     int   `json:"total_users"`

	// Active user counts bucketed by last-play falling within the last
	// 24 hours, 7 days and 30 days of the aggregation run.
	ActiveDaily   int `json:"active_daily"`
	ActiveWeekly  int `json:"active_weekly"`
	ActiveMonthly int `json:"active_monthly"`

	// Users is sorted by total watch time, descending.
	Users []UserPlayStat `json:"users"`

	// UpdatedAt is Unix milliseconds of the aggregation run.
	UpdatedAt int64 `json:"updated_at"`
}

// ContentStat is one entry of the top-content ranking, accumulated across
// every user's play records and grouped by composite key.
type ContentStat struct {
	Source     string `json:"source"`
	ID         string `json:"id"`
	Title      string `json:"title"`
	SourceName string `json:"source_name"`
	Cover      string `json:"cover,omitempty"`
	Year       string `json:"year,omitempty"`

	Plays          int   `json:"plays"`
	TotalWatchTime int64 `json:"total_watch_time"`
	UniqueUsers    int   `json:"unique_users"`
	LastPlayedAt   int64 `json:"last_played_at,omitempty"`
}

// Key returns the composite key of the ranked content.
func (c ContentStat) Key() string {
	return Key(c.Source, c.ID)
}
