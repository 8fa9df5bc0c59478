// Package observability provides the structured logger, Prometheus metrics
// and health probe handlers shared by the driftwatch storage daemon and its
// libraries.
package observability
