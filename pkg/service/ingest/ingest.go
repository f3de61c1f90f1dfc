package ingest

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
)

// Ingestor runs sniff -> parse -> normalize over one uploaded file
type Ingestor struct {
	parsers    map[types.Format]Parser
	normalizer *Normalizer
}

type config struct {
	xml     EntryExtractor
	parsers map[types.Format]Parser
	now     func() time.Time
	newID   func() string
}

type Option func(*config)

// WithXMLExtractor replaces the wrapper-tag XML extraction strategy
func WithXMLExtractor(x EntryExtractor) Option {
	return func(c *config) {
		c.xml = x
	}
}

// WithParser overrides the parser used for format
func WithParser(format types.Format, p Parser) Option {
	return func(c *config) {
		c.parsers[format] = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(c *config) {
		c.newID = newID
	}
}

func New(opts ...Option) *Ingestor {
	cfg := &config{parsers: map[types.Format]Parser{}}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.xml == nil {
		cfg.xml = NewTagExtractor()
	}

	parsers := defaultParsers(cfg.xml)
	for f, p := range cfg.parsers {
		parsers[f] = p
	}

	return &Ingestor{
		parsers:    parsers,
		normalizer: NewNormalizer(cfg.now, cfg.newID),
	}
}

// Result is the outcome of ingesting one file
type Result struct {
	Filename string            `json:"filename,omitempty"`
	Format   types.Format      `json:"format"`
	Entries  []*model.LogEntry `json:"entries"`
	Stats    Stats             `json:"stats"`
}

// Parse decodes data with the parser registered for format
func (x *Ingestor) Parse(ctx context.Context, format types.Format, data []byte) ([]*model.Record, error) {
	p, ok := x.parsers[format]
	if !ok {
		return nil, goerr.Wrap(ErrUnsupportedFormat, "no parser for format", goerr.V(FormatKey, format))
	}
	return p.Parse(ctx, decodeText(data))
}

// Normalize soft-validates records into entries
func (x *Ingestor) Normalize(ctx context.Context, records []*model.Record, format types.Format) ([]*model.LogEntry, Stats) {
	return x.normalizer.Normalize(ctx, records, format)
}

// Ingest detects the format of data, parses it and normalizes the records.
// Parse failures are returned as errors carrying a *ParseError.
func (x *Ingestor) Ingest(ctx context.Context, data []byte, filename string) (*Result, error) {
	format := Detect(data, filename)
	ctx = logging.With(ctx, logging.From(ctx).With("filename", filename, "format", format))

	records, err := x.Parse(ctx, format, data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to ingest file",
			goerr.V(FilenameKey, filename), goerr.V(FormatKey, format))
	}

	entries, stats := x.Normalize(ctx, records, format)
	return &Result{
		Filename: filename,
		Format:   format,
		Entries:  entries,
		Stats:    stats,
	}, nil
}
