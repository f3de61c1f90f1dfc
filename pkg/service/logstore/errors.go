package logstore

import "github.com/m-mizutani/goerr/v2"

var (
	ErrLogFileNotFound  = goerr.New("log file not found")
	ErrInvalidJSON      = goerr.New("log file is not valid JSON")
	ErrNotArray         = goerr.New("log file is not a JSON array")
	ErrInvalidLogFormat = goerr.New("invalid log format")
)

// Context keys for error values
const (
	PathKey  = "path"
	IndexKey = "index"
	CauseKey = "cause"
)
