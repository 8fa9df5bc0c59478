// Package config loads the application configuration from DRIFTWATCH_*
// environment variables. Every knob has a default; only backend-specific
// requirements (a redis URL for redis storage, a data dir for file
// storage) make Load fail.
package config
