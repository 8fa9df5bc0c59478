// Package records implements the per-domain record repositories: play
// records, favorites, search history, episode skip configs, user profiles
// and the global admin configuration.
//
// Every per-user domain is persisted as one whole JSON document per user
// (e.g. all of a user's play records in users/{name}/playrecords.json).
// Repositories read through the cache, fall back to the backend on a miss,
// and write through to both. Same-document writers within one process are
// serialized by a per-document mutex; the read-modify-write cycle is not
// atomic across processes on the file backend.
package records
