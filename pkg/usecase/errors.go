package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	ErrLogStoreNotConfigured = goerr.New("canonical log file is not configured")
	ErrNoInput               = goerr.New("no input files")
	ErrPersistFailed         = goerr.New("some fixspecs could not be persisted")
)

// Context keys for error values
const (
	FilenameKey = "filename"
	IssueIDKey  = "issue_id"
	FailedKey   = "failed"
)
