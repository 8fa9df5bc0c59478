// Package manager wires the storage backend, cache, repositories and
// aggregator into one facade. Construction is explicit: New receives the
// full configuration and returns a ready manager, there is no package
// state and nothing reads the environment after startup.
package manager
