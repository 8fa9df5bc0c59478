// Package storage provides the pluggable durable backends behind the
// driftwatch persistence layer.
//
// A Backend stores opaque JSON documents under (namespace, key) pairs.
// Three implementations exist:
//
//   - FileBackend: one JSON file per key under a per-namespace directory
//     tree. Best for single-instance deployments with a local data dir.
//   - RedisBackend: a flat key space against any Redis-compatible service,
//     with namespaces mapped to key prefixes. Required for multi-instance
//     deployments.
//   - NoopBackend: accepts writes and returns empty reads. Exists so that
//     unconfigured code paths never receive a nil backend.
//
// A missing key is not an error: Get returns (nil, nil). Write failures
// propagate to the caller; retry policy belongs above this layer.
//
// The file backend holds no cross-process locks. Two processes sharing one
// data directory can lose writes to each other; that deployment shape is
// unsupported and multi-instance setups must use RedisBackend instead.
package storage
