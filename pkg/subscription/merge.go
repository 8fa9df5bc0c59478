package subscription

import "github.com/kelpgrid/driftwatch/pkg/model"

// MergeSources applies a fetched source list to the current one.
//
// Entries the subscription governs (config origin) are replaced, added
// and removed to match the fetched list; a disabled flag an admin set on
// a surviving entry is kept. Custom entries are never touched, and a
// custom entry shadows a fetched one with the same key. The result is the
// fetched order followed by the surviving customs in their current order.
func MergeSources(current, fetched []model.SourceConfig) []model.SourceConfig {
	byKey := make(map[string]model.SourceConfig, len(current))
	for _, src := range current {
		byKey[src.Key] = src
	}

	out := make([]model.SourceConfig, 0, len(fetched))
	emitted := make(map[string]bool, len(fetched))
	for _, src := range fetched {
		if existing, ok := byKey[src.Key]; ok {
			if !existing.Origin.Replaceable() {
				continue
			}
			src.Disabled = existing.Disabled
		}
		src.Origin = model.OriginConfig
		out = append(out, src)
		emitted[src.Key] = true
	}

	for _, src := range current {
		if !emitted[src.Key] && !src.Origin.Replaceable() {
			out = append(out, src)
		}
	}
	return out
}

// MergeLives applies a fetched live-source list to the current one, under
// the same provenance rules as MergeSources.
func MergeLives(current, fetched []model.LiveConfig) []model.LiveConfig {
	byKey := make(map[string]model.LiveConfig, len(current))
	for _, live := range current {
		byKey[live.Key] = live
	}

	out := make([]model.LiveConfig, 0, len(fetched))
	emitted := make(map[string]bool, len(fetched))
	for _, live := range fetched {
		if existing, ok := byKey[live.Key]; ok {
			if !existing.Origin.Replaceable() {
				continue
			}
			live.Disabled = existing.Disabled
		}
		live.Origin = model.OriginConfig
		out = append(out, live)
		emitted[live.Key] = true
	}

	for _, live := range current {
		if !emitted[live.Key] && !live.Origin.Replaceable() {
			out = append(out, live)
		}
	}
	return out
}
