package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidLogEntry = goerr.New("invalid log entry")
	ErrInvalidIssueID  = goerr.New("invalid issue ID")
	ErrInvalidFixspec  = goerr.New("invalid fixspec")

	ErrFixspecNotFound = goerr.New("fixspec not found")
)

// Context keys for error values
const (
	FieldKey   = "field"
	EntryIDKey = "entry_id"
	IssueIDKey = "issue_id"
	ValueKey   = "value"
)
