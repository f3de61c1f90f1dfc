package model

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

// Issue is a detected UX defect derived from exactly one LogEntry
type Issue struct {
	ID          string          `json:"id"`
	Type        types.IssueType `json:"type"`
	Severity    types.Severity  `json:"severity"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Metadata    *Metadata       `json:"metadata,omitempty"`
	SourceLogID string          `json:"sourceLogId"`
	Timestamp   string          `json:"timestamp"`
}

var issueIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// NewIssueID generates a fresh issue ID
func NewIssueID() string {
	return uuid.NewString()
}

var issueNamespace = uuid.MustParse("6f1c1a52-3c47-4d0e-9a51-0b8f3c2d7e10")

// StableIssueID derives an issue ID from its source entry and type, so that
// classifying the same entry again yields the same ID
func StableIssueID(sourceLogID string, t types.IssueType) string {
	return uuid.NewSHA1(issueNamespace, []byte(sourceLogID+"\x00"+string(t))).String()
}

// ValidateIssueID checks that id is safe to use as a storage key and file name
func ValidateIssueID(id string) error {
	if id == "" {
		return goerr.Wrap(ErrInvalidIssueID, "issue ID cannot be empty")
	}
	if len(id) > 128 || !issueIDPattern.MatchString(id) || strings.Contains(id, "..") {
		return goerr.Wrap(ErrInvalidIssueID, "issue ID must be alphanumeric with '-', '_' or '.'",
			goerr.V(IssueIDKey, id))
	}
	return nil
}
