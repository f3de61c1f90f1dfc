package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrRulesNotFound       = goerr.New("rules file not found")
	ErrInvalidRules        = goerr.New("invalid rules")
	ErrInvalidBackend      = goerr.New("invalid fixspec backend")
	ErrMissingProjectID    = goerr.New("firestore-project-id is required for the firestore backend")
	ErrMissingBucket       = goerr.New("gcs-bucket is required for the gcs backend")
	ErrInvalidLogLevel     = goerr.New("invalid log level")
	ErrInvalidLogFormat    = goerr.New("invalid log format")
	ErrNegativeInterval    = goerr.New("refresh interval must not be negative")
	ErrMissingCanonicalLog = goerr.New("log-file is required")
)

// Context keys for error values
const (
	RulesPathKey = "rules_path"
	BackendKey   = "backend"
	LevelKey     = "level"
	FormatKey    = "format"
	IntervalKey  = "interval"
)
