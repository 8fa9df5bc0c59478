package records

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kelpgrid/driftwatch/pkg/model"
)

// remarksCacheSize bounds the search-result remarks kept per process.
const remarksCacheSize = 1024

// PlayRecords stores playback progress per user, keyed by the composite
// "{source}+{id}" key.
type PlayRecords struct {
	s *Store

	// remarks holds remarks seen in recent search-result lists, keyed by
	// composite key. Search results carry more accurate remarks than the
	// detail documents, so a remembered remark wins on the next save.
	remarks *expirable.LRU[string, string]
}

// NewPlayRecords creates the play record repository.
func NewPlayRecords(s *Store) *PlayRecords {
	return &PlayRecords{
		s:       s,
		remarks: expirable.NewLRU[string, string](remarksCacheSize, nil, 10*time.Minute),
	}
}

// Get returns one play record, or nil when the user has none for this key.
func (r *PlayRecords) Get(ctx context.Context, user, key string) (*model.PlayRecord, error) {
	return getOne[model.PlayRecord](ctx, r.s, user, DocPlayRecords, key)
}

// GetAll returns every play record of a user, keyed by composite key.
func (r *PlayRecords) GetAll(ctx context.Context, user string) (map[string]*model.PlayRecord, error) {
	return getAll[model.PlayRecord](ctx, r.s, user, DocPlayRecords)
}

// Set saves playback progress.
//
// The stored original episode count is preserved: a save carrying a
// smaller count keeps the stored one, unless the user is already watching
// an episode beyond it. Remarks remembered from a recent search-result
// list override whatever the caller's detail document carried.
func (r *PlayRecords) Set(ctx context.Context, user, key string, rec *model.PlayRecord) error {
	if _, _, err := model.ParseKey(key); err != nil {
		return ErrInvalidKey
	}
	if rec.SaveTime == 0 {
		rec.SaveTime = time.Now().UnixMilli()
	}
	if remark, ok := r.remarks.Get(key); ok && remark != "" {
		rec.Remarks = remark
	}

	existing, err := r.Get(ctx, user, key)
	if err != nil {
		return err
	}

	switch {
	case rec.OriginalEpisodes <= 0:
		if existing != nil && existing.OriginalEpisodes > 0 {
			rec.OriginalEpisodes = existing.OriginalEpisodes
		} else {
			rec.OriginalEpisodes = rec.TotalEpisodes
		}
	case existing != nil && existing.OriginalEpisodes > rec.OriginalEpisodes && rec.Index <= existing.OriginalEpisodes:
		rec.OriginalEpisodes = existing.OriginalEpisodes
	}

	return setOne(ctx, r.s, user, DocPlayRecords, key, rec)
}

// Delete removes one play record from the document and the cache.
func (r *PlayRecords) Delete(ctx context.Context, user, key string) error {
	return deleteOne[model.PlayRecord](ctx, r.s, user, DocPlayRecords, key)
}

// Clear removes a user's whole play record document.
func (r *PlayRecords) Clear(ctx context.Context, user string) error {
	return clearDoc(ctx, r.s, user, DocPlayRecords)
}

// SearchResult is the slice of a search-result list that matters here:
// which content it identifies and the remarks the list showed for it.
type SearchResult struct {
	Source  string
	ID      string
	Remarks string
}

// NoteSearchRemarks records the remarks seen in a search-result list. The
// search collaborator calls this once per rendered list; subsequent saves
// of these items carry the noted remarks instead of the staler ones in
// their detail documents.
func (r *PlayRecords) NoteSearchRemarks(results []SearchResult) {
	for _, res := range results {
		if res.Remarks == "" {
			continue
		}
		r.remarks.Add(model.Key(res.Source, res.ID), res.Remarks)
	}
}
