package model

// PlaceholderEpisodes is the sentinel total-episode count used for content
// that is announced but not yet released. Favorites saved with this value
// are corrected once the real count becomes known.
const PlaceholderEpisodes = 99

// PlayRecord captures one piece of content's playback progress for a user.
// It is mutated on every meaningful progress save and keyed by the
// composite "{source}+{id}" key under the user's namespace.
type PlayRecord struct {
	Title      string `json:"title"`
	SourceName string `json:"source_name"`
	Year       string `json:"year,omitempty"`
	Cover      string `json:"cover,omitempty"`

	// Index is the 1-based episode currently being watched.
	Index         int `json:"index"`
	TotalEpisodes int `json:"total_episodes"`

	// OriginalEpisodes is the episode count seen when the record was first
	// written. It is preserved across later writes unless the user watches
	// beyond it; it is never lowered.
	OriginalEpisodes int `json:"original_episodes,omitempty"`

	// PlayTime and TotalTime are the elapsed and full durations of the
	// current episode, in seconds.
	PlayTime  int64 `json:"play_time"`
	TotalTime int64 `json:"total_time"`

	// SaveTime is when this record was last written, Unix milliseconds.
	SaveTime int64 `json:"save_time"`

	SearchTitle string `json:"search_title,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
}

// Favorite marks one piece of content a user chose to keep. Created and
// removed by explicit toggle; keyed like PlayRecord.
type Favorite struct {
	Title         string `json:"title"`
	SourceName    string `json:"source_name"`
	Year          string `json:"year,omitempty"`
	Cover         string `json:"cover,omitempty"`
	TotalEpisodes int    `json:"total_episodes"`

	// SaveTime is when the favorite was created, Unix milliseconds. It is
	// not disturbed by the placeholder episode-count self-heal.
	SaveTime int64 `json:"save_time"`

	SearchTitle string `json:"search_title,omitempty"`

	// Origin records where the favorite came from ("vod" or "live").
	Origin string `json:"origin,omitempty"`
}
