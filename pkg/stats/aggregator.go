package stats

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kelpgrid/driftwatch/pkg/cache"
	"github.com/kelpgrid/driftwatch/pkg/model"
	"github.com/kelpgrid/driftwatch/pkg/observability"
	"github.com/kelpgrid/driftwatch/pkg/records"
)

const (
	// ResultTTL is how long aggregated results stay cached.
	ResultTTL = 30 * time.Minute

	// aggregationFanOut bounds concurrent per-user computations during a
	// site-wide run.
	aggregationFanOut = 8

	// DefaultTopN is the ranking size when the caller passes n <= 0.
	DefaultTopN = 10

	// recentRecordsLimit caps the per-user recent record list carried in
	// the summary.
	recentRecordsLimit = 10

	siteCategory     = "playstats"
	userCategory     = "playstats_user"
	siteStatsKey     = "site"
	topContentPrefix = "top"
)

// Aggregator computes activity summaries from the stored documents.
type Aggregator struct {
	users *records.Users
	plays *records.PlayRecords
	favs  *records.Favorites
	cache *cache.Manager

	log     *observability.Logger
	metrics *observability.Metrics

	sf  singleflight.Group
	now func() time.Time
}

// New creates an Aggregator over the given repository store. Metrics may
// be nil.
func New(s *records.Store, log *observability.Logger, m *observability.Metrics) *Aggregator {
	if log == nil {
		log = observability.NopLogger()
	}
	return &Aggregator{
		users:   records.NewUsers(s),
		plays:   records.NewPlayRecords(s),
		favs:    records.NewFavorites(s),
		cache:   s.Cache(),
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// UserStats returns one user's activity summary, computing it at most once
// per TTL window.
func (a *Aggregator) UserStats(ctx context.Context, username string) (*model.UserPlayStat, error) {
	if v, ok := a.cache.Get(userCategory, username); ok {
		if stat, ok := v.(*model.UserPlayStat); ok {
			return stat, nil
		}
	}

	v, err, _ := a.sf.Do("user:"+username, func() (interface{}, error) {
		stat, err := a.computeUser(ctx, username)
		if err != nil {
			return nil, err
		}
		a.cache.Set(userCategory, username, stat, ResultTTL)
		return stat, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.UserPlayStat), nil
}

// SiteStats returns the site-wide summary. Users whose documents cannot be
// read are logged and skipped rather than failing the whole run.
// Concurrent callers share one computation.
func (a *Aggregator) SiteStats(ctx context.Context) (*model.PlayStatsResult, error) {
	if v, ok := a.cache.Get(siteCategory, siteStatsKey); ok {
		if result, ok := v.(*model.PlayStatsResult); ok {
			return result, nil
		}
	}

	v, err, _ := a.sf.Do("site", func() (interface{}, error) {
		started := a.now()
		result, err := a.computeSite(ctx)
		a.observeRun(started, err)
		if err != nil {
			return nil, err
		}
		a.cache.Set(siteCategory, siteStatsKey, result, ResultTTL)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.PlayStatsResult), nil
}

// TopContent returns the n most played content items across all users,
// ranked by play count with last-played time breaking ties. n <= 0 uses
// the default size.
func (a *Aggregator) TopContent(ctx context.Context, n int) ([]model.ContentStat, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	key := fmt.Sprintf("%s:%d", topContentPrefix, n)
	if v, ok := a.cache.Get(siteCategory, key); ok {
		if ranking, ok := v.([]model.ContentStat); ok {
			return ranking, nil
		}
	}

	v, err, _ := a.sf.Do(key, func() (interface{}, error) {
		ranking, err := a.computeTopContent(ctx, n)
		if err != nil {
			return nil, err
		}
		a.cache.Set(siteCategory, key, ranking, ResultTTL)
		return ranking, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.ContentStat), nil
}

// InvalidateUser drops one user's cached summary. Site-wide results keep
// their TTL.
func (a *Aggregator) InvalidateUser(username string) {
	a.cache.Delete(userCategory, username)
}

// InvalidateSite drops every cached site-wide result.
func (a *Aggregator) InvalidateSite() {
	a.cache.ClearCategory(siteCategory)
}

func (a *Aggregator) computeUser(ctx context.Context, username string) (*model.UserPlayStat, error) {
	plays, err := a.plays.GetAll(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load play records for %s: %w", username, err)
	}
	favs, err := a.favs.GetAll(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites for %s: %w", username, err)
	}

	stat := &model.UserPlayStat{
		Username:      username,
		TotalPlays:    len(plays),
		FavoriteCount: len(favs),
	}

	recent := make([]model.PlayRecord, 0, len(plays))
	for _, rec := range plays {
		stat.TotalWatchTime += rec.PlayTime
		if stat.FirstPlayAt == 0 || rec.SaveTime < stat.FirstPlayAt {
			stat.FirstPlayAt = rec.SaveTime
		}
		if rec.SaveTime > stat.LastPlayAt {
			stat.LastPlayAt = rec.SaveTime
		}
		recent = append(recent, *rec)
	}
	sort.Slice(recent, func(i, j int) bool { return recent[i].SaveTime > recent[j].SaveTime })
	if len(recent) > recentRecordsLimit {
		recent = recent[:recentRecordsLimit]
	}
	stat.RecentRecords = recent

	profile, err := a.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		stat.LoginCount = profile.LoginCount
		stat.LastLoginAt = profile.LastLoginAt
	}

	return stat, nil
}

func (a *Aggregator) computeSite(ctx context.Context) (*model.PlayStatsResult, error) {
	usernames, err := a.users.List(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	stats := make([]model.UserPlayStat, 0, len(usernames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(aggregationFanOut)
	for _, username := range usernames {
		username := username
		g.Go(func() error {
			stat, err := a.computeUser(gctx, username)
			if err != nil {
				a.log.WithError(err).WithField("user", username).Warn("skipping user in site aggregation")
				if a.metrics != nil {
					a.metrics.StatsUsersSkipped.Inc()
				}
				return nil
			}
			a.cache.Set(userCategory, username, stat, ResultTTL)
			mu.Lock()
			stats = append(stats, *stat)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := a.now()
	result := &model.PlayStatsResult{
		TotalUsers: len(stats),
		UpdatedAt:  now.UnixMilli(),
	}
	day := now.Add(-24 * time.Hour).UnixMilli()
	week := now.Add(-7 * 24 * time.Hour).UnixMilli()
	month := now.Add(-30 * 24 * time.Hour).UnixMilli()

	for i := range stats {
		s := &stats[i]
		result.TotalPlays += s.TotalPlays
		result.TotalWatchTime += s.TotalWatchTime
		if s.LastPlayAt >= day {
			result.ActiveDaily++
		}
		if s.LastPlayAt >= week {
			result.ActiveWeekly++
		}
		if s.LastPlayAt >= month {
			result.ActiveMonthly++
		}
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalWatchTime != stats[j].TotalWatchTime {
			return stats[i].TotalWatchTime > stats[j].TotalWatchTime
		}
		return stats[i].Username < stats[j].Username
	})
	result.Users = stats

	return result, nil
}

func (a *Aggregator) computeTopContent(ctx context.Context, n int) ([]model.ContentStat, error) {
	usernames, err := a.users.List(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	acc := make(map[string]*model.ContentStat)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(aggregationFanOut)
	for _, username := range usernames {
		username := username
		g.Go(func() error {
			plays, err := a.plays.GetAll(gctx, username)
			if err != nil {
				a.log.WithError(err).WithField("user", username).Warn("skipping user in content ranking")
				if a.metrics != nil {
					a.metrics.StatsUsersSkipped.Inc()
				}
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for key, rec := range plays {
				source, id, err := model.ParseKey(key)
				if err != nil {
					continue
				}
				entry, ok := acc[key]
				if !ok {
					entry = &model.ContentStat{Source: source, ID: id}
					acc[key] = entry
				}
				entry.Plays++
				entry.UniqueUsers++
				entry.TotalWatchTime += rec.PlayTime
				if rec.SaveTime > entry.LastPlayedAt {
					entry.LastPlayedAt = rec.SaveTime
					entry.Title = rec.Title
					entry.SourceName = rec.SourceName
					entry.Cover = rec.Cover
					entry.Year = rec.Year
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranking := make([]model.ContentStat, 0, len(acc))
	for _, entry := range acc {
		ranking = append(ranking, *entry)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Plays != ranking[j].Plays {
			return ranking[i].Plays > ranking[j].Plays
		}
		if ranking[i].LastPlayedAt != ranking[j].LastPlayedAt {
			return ranking[i].LastPlayedAt > ranking[j].LastPlayedAt
		}
		return ranking[i].Key() < ranking[j].Key()
	})
	if len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking, nil
}

func (a *Aggregator) observeRun(started time.Time, err error) {
	if a.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	a.metrics.StatsRunsTotal.WithLabelValues(status).Inc()
	a.metrics.StatsRunDuration.Observe(time.Since(started).Seconds())
}
