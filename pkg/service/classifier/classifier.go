package classifier

import (
	"context"

	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
)

// Classifier runs every detector against every entry. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
	detectors  []Detector
	newID      func() string
	stable     bool
}

// Option is a functional option for Classifier
type Option func(*Classifier)

func WithThresholds(t Thresholds) Option {
	return func(c *Classifier) {
		c.thresholds = t
	}
}

// WithDetectors replaces the built-in detector set
func WithDetectors(detectors ...Detector) Option {
	return func(c *Classifier) {
		c.detectors = detectors
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Classifier) {
		c.newID = newID
	}
}

// WithStableIDs derives issue IDs from the source entry ID and issue type
// instead of generating fresh ones. Re-classifying the same log then maps
// onto the same stored fixspecs.
func WithStableIDs() Option {
	return func(c *Classifier) {
		c.stable = true
	}
}

func New(opts ...Option) *Classifier {
	c := &Classifier{
		thresholds: DefaultThresholds(),
		detectors:  Detectors(),
		newID:      model.NewIssueID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Thresholds returns the active cut-offs
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify returns the issues raised for one entry, in detector order
func (c *Classifier) Classify(entry *model.LogEntry) []*model.Issue {
	if entry == nil {
		return nil
	}

	var issues []*model.Issue
	for _, detect := range c.detectors {
		issue := detect(c.thresholds, entry)
		if issue == nil {
			continue
		}
		if c.stable && entry.ID != "" {
			issue.ID = model.StableIssueID(entry.ID, issue.Type)
		} else {
			issue.ID = c.newID()
		}
		issue.SourceLogID = entry.ID
		issue.Timestamp = entry.Timestamp
		issues = append(issues, issue)
	}
	return issues
}

// ClassifyAll classifies entries in order. Each issue references exactly one
// source entry.
func (c *Classifier) ClassifyAll(ctx context.Context, entries []*model.LogEntry) []*model.Issue {
	issues := make([]*model.Issue, 0)
	for _, entry := range entries {
		issues = append(issues, c.Classify(entry)...)
	}

	logging.From(ctx).Debug("classified entries", "entries", len(entries), "issues", len(issues))
	return issues
}
