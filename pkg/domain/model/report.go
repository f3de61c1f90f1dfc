package model

import "github.com/secmon-lab/uxlens/pkg/domain/types"

// ExternalIssue is an issue produced outside the deterministic classifier,
// e.g. by an LLM analysis. Severity is kept raw so aliases like "moderate" survive.
type ExternalIssue struct {
	Type        string         `json:"type"`
	Severity    types.Severity `json:"severity"`
	Description string         `json:"description"`
	Category    string         `json:"category,omitempty"`
}

// ExternalReport is the issues/score shape returned by an external analyzer
type ExternalReport struct {
	Issues  []ExternalIssue `json:"issues"`
	Score   *int            `json:"score,omitempty"`
	Summary string          `json:"summary,omitempty"`
}

// ScoredReport is the result of re-scoring an ExternalReport
type ScoredReport struct {
	Score         int             `json:"score"`
	ReportedScore *int            `json:"reportedScore,omitempty"`
	Mismatch      bool            `json:"mismatch"`
	Issues        []ExternalIssue `json:"issues"`
	Dropped       int             `json:"dropped"`
}
