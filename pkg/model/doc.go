// Package model defines the persisted record types of the driftwatch
// storage layer: playback progress, favorites, episode skip configs,
// search history, user profiles, the global admin configuration and the
// aggregated statistics shapes derived from them.
//
// All timestamps in persisted documents are Unix milliseconds, matching
// the on-disk and on-wire format the rest of the application reads.
package model
