package model

// Skip segment types.
const (
	SegmentIntro = "intro"
	SegmentOutro = "outro"
)

// SkipSegment is one skippable span of an episode, in seconds from the
// start of playback.
type SkipSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Type  string  `json:"type"`
	Title string  `json:"title,omitempty"`

	AutoSkip        bool `json:"auto_skip"`
	AutoNextEpisode bool `json:"auto_next_episode"`
}

// EpisodeSkipConfig is the current, multi-segment skip configuration for
// one piece of content, keyed by the composite "{source}+{id}" key.
type EpisodeSkipConfig struct {
	Source   string        `json:"source"`
	ID       string        `json:"id"`
	Enable   bool          `json:"enable"`
	Segments []SkipSegment `json:"segments"`

	// UpdatedAt is Unix milliseconds of the last write.
	UpdatedAt int64 `json:"updated_time"`
}

// LegacySkipConfig is the first-generation, single-segment schema. It is
// still stored under its own document name and served to older readers.
type LegacySkipConfig struct {
	Enable    bool `json:"enable"`
	IntroTime int  `json:"intro_time"`
	OutroTime int  `json:"outro_time"`
}

// Upgrade converts a legacy single-segment config into the multi-segment
// shape. A zero intro or outro time produces no segment for that side.
func (l LegacySkipConfig) Upgrade(source, id string) *EpisodeSkipConfig {
	cfg := &EpisodeSkipConfig{
		Source: source,
		ID:     id,
		Enable: l.Enable,
	}
	if l.IntroTime > 0 {
		cfg.Segments = append(cfg.Segments, SkipSegment{
			Start:    0,
			End:      float64(l.IntroTime),
			Type:     SegmentIntro,
			AutoSkip: l.Enable,
		})
	}
	if l.OutroTime > 0 {
		// Legacy outro times count backwards from the end of the episode;
		// the player resolves the negative offset against the duration.
		cfg.Segments = append(cfg.Segments, SkipSegment{
			Start:    -float64(l.OutroTime),
			End:      0,
			Type:     SegmentOutro,
			AutoSkip: l.Enable,
		})
	}
	return cfg
}
