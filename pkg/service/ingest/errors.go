package ingest

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

var (
	// ErrNoRecords is the cause of a ParseError when a format that requires at
	// least one structured record yields none
	ErrNoRecords = goerr.New("no records found")

	ErrUnsupportedFormat = goerr.New("unsupported format")
	ErrEmptyInput        = goerr.New("input is empty")
)

// Context keys for error values
const (
	FormatKey   = "format"
	FilenameKey = "filename"
	LineKey     = "line"
)

// ParseError reports that input could not be parsed as Format
type ParseError struct {
	Format types.Format
	Cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s input: %v", e.Format, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func newParseError(format types.Format, cause error, msg string, opts ...goerr.Option) error {
	opts = append(opts, goerr.V(FormatKey, format))
	return goerr.Wrap(&ParseError{Format: format, Cause: cause}, msg, opts...)
}
