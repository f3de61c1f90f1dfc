package model

import (
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

// SuggestedFix is the remediation body of a Fixspec
type SuggestedFix struct {
	Summary     string   `json:"summary"`
	Steps       []string `json:"steps"`
	CodeExample string   `json:"codeExample,omitempty"`
	References  []string `json:"references,omitempty"`
}

// Fixspec is a remediation document for exactly one Issue
type Fixspec struct {
	IssueID      string              `json:"issueId"`
	Type         types.IssueType     `json:"type"`
	Description  string              `json:"description"`
	Severity     types.Severity      `json:"severity"`
	SuggestedFix SuggestedFix        `json:"suggestedFix"`
	Timestamp    time.Time           `json:"timestamp"`
	Status       types.FixspecStatus `json:"status"`
}

// Validate checks the fields the stores depend on
func (f *Fixspec) Validate() error {
	if err := ValidateIssueID(f.IssueID); err != nil {
		return goerr.Wrap(err, "invalid fixspec", goerr.V(IssueIDKey, f.IssueID))
	}
	if !f.Status.IsValid() {
		return goerr.Wrap(ErrInvalidFixspec, "invalid fixspec status",
			goerr.V(IssueIDKey, f.IssueID), goerr.V(ValueKey, string(f.Status)))
	}
	if f.SuggestedFix.Summary == "" {
		return goerr.Wrap(ErrInvalidFixspec, "suggested fix summary is required",
			goerr.V(IssueIDKey, f.IssueID))
	}
	return nil
}

// Clone returns a deep copy
func (f *Fixspec) Clone() *Fixspec {
	if f == nil {
		return nil
	}
	c := *f
	c.SuggestedFix.Steps = append([]string(nil), f.SuggestedFix.Steps...)
	c.SuggestedFix.References = append([]string(nil), f.SuggestedFix.References...)
	return &c
}

// SortFixspecs orders fixspecs newest first, then by issue ID
func SortFixspecs(specs []*Fixspec) {
	sort.SliceStable(specs, func(i, j int) bool {
		if !specs[i].Timestamp.Equal(specs[j].Timestamp) {
			return specs[i].Timestamp.After(specs[j].Timestamp)
		}
		return specs[i].IssueID < specs[j].IssueID
	})
}
