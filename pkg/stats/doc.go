// Package stats aggregates play activity across all users into per-user
// summaries, a site-wide summary and a top-content ranking. Aggregation is
// read-only over the stored documents and results are cached; callers are
// expected to tolerate results up to the cache TTL old.
package stats
