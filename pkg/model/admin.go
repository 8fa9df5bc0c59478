package model

// SourceOrigin tags where a configured source came from. Entries that came
// from the static or subscribed config file are replaceable by a
// subscription refresh; entries added at runtime by an admin are not.
type SourceOrigin string

const (
	OriginConfig SourceOrigin = "config"
	OriginCustom SourceOrigin = "custom"
)

// Replaceable reports whether a subscription refresh may replace or remove
// an entry with this origin. Unknown origins are treated as custom so a
// refresh never destroys data it does not understand.
func (o SourceOrigin) Replaceable() bool {
	switch o {
	case OriginConfig:
		return true
	case OriginCustom:
		return false
	default:
		return false
	}
}

// SourceConfig is one video source in the ordered site source list.
type SourceConfig struct {
	Key      string       `json:"key"`
	Name     string       `json:"name"`
	API      string       `json:"api"`
	Detail   string       `json:"detail,omitempty"`
	Origin   SourceOrigin `json:"from"`
	Disabled bool         `json:"disabled,omitempty"`
}

// LiveConfig is one live-TV source. It follows the same provenance
// discipline as SourceConfig.
type LiveConfig struct {
	Key          string       `json:"key"`
	Name         string       `json:"name"`
	URL          string       `json:"url"`
	UserAgent    string       `json:"ua,omitempty"`
	EPG          string       `json:"epg,omitempty"`
	Origin       SourceOrigin `json:"from"`
	Disabled     bool         `json:"disabled,omitempty"`
	ChannelCount int          `json:"channel_number,omitempty"`
}

// SiteConfig holds the site-wide display and behavior settings.
type SiteConfig struct {
	SiteName     string `json:"site_name"`
	Announcement string `json:"announcement,omitempty"`

	SearchDownstreamMaxPage int `json:"search_downstream_max_page"`

	// SiteInterfaceCacheTime is the suggested TTL, in seconds, for cached
	// upstream interface responses.
	SiteInterfaceCacheTime int `json:"site_interface_cache_time"`

	ImageProxy string `json:"image_proxy,omitempty"`
}

// UserEntry is a user's row in the admin config user list. The full
// account record lives in the user's own namespace; this list only carries
// what the admin UI needs for bulk display.
type UserEntry struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Banned   bool   `json:"banned,omitempty"`
}

// SubscriptionConfig holds the remote config subscription settings.
type SubscriptionConfig struct {
	URL        string `json:"url"`
	AutoUpdate bool   `json:"auto_update"`

	// LastCheck is Unix milliseconds of the last subscription fetch.
	LastCheck int64 `json:"last_check,omitempty"`
}

// AdminConfig is the single global configuration record. Exactly one
// instance exists per deployment, stored under the config namespace.
type AdminConfig struct {
	ConfigVersion int `json:"config_version"`

	// ConfigHash is the hash of the last applied subscription payload,
	// used to skip refreshes that would be no-ops.
	ConfigHash string `json:"config_hash,omitempty"`

	Site         SiteConfig         `json:"site_config"`
	Sources      []SourceConfig     `json:"source_config"`
	Lives        []LiveConfig       `json:"live_config,omitempty"`
	Users        []UserEntry        `json:"user_config"`
	Subscription SubscriptionConfig `json:"subscription"`
}

// DefaultAdminConfig returns the configuration used when no admin config
// document exists yet.
func DefaultAdminConfig() *AdminConfig {
	return &AdminConfig{
		ConfigVersion: 1,
		Site: SiteConfig{
			SiteName:                "driftwatch",
			SearchDownstreamMaxPage: 5,
			SiteInterfaceCacheTime:  7200,
		},
	}
}

// FindSource returns the index of the source with the given key, or -1.
func (c *AdminConfig) FindSource(key string) int {
	for i := range c.Sources {
		if c.Sources[i].Key == key {
			return i
		}
	}
	return -1
}
