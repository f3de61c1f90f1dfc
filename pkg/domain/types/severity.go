package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Severity of a detected issue. Values outside the four canonical levels can
// still appear on externally produced issues and are scored as unknown.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// AllSeverities returns the canonical severities, most severe first
func AllSeverities() []Severity {
	return []Severity{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
	}
}

// IsValid checks if the severity is one of the canonical levels
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

func (s Severity) String() string {
	return string(s)
}

// Normalize lowercases and trims the severity without validating it
func (s Severity) Normalize() Severity {
	return Severity(strings.ToLower(strings.TrimSpace(string(s))))
}

// ParseSeverity parses a canonical severity, case-insensitively
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s).Normalize()
	if !sev.IsValid() {
		return "", goerr.New("invalid severity", goerr.V("severity", s))
	}
	return sev, nil
}
