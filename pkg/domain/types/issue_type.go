package types

import "github.com/m-mizutani/goerr/v2"

// IssueType is the class of a detected UX defect
type IssueType string

const (
	IssueTypeLatency       IssueType = "latency"
	IssueTypeAccessibility IssueType = "accessibility"
	IssueTypeContrast      IssueType = "contrast"
	IssueTypeScriptError   IssueType = "script_error"
	IssueTypeOther         IssueType = "other"
)

// AllIssueTypes returns all valid issue types
func AllIssueTypes() []IssueType {
	return []IssueType{
		IssueTypeLatency,
		IssueTypeAccessibility,
		IssueTypeContrast,
		IssueTypeScriptError,
		IssueTypeOther,
	}
}

// IsValid checks if the issue type is valid
func (t IssueType) IsValid() bool {
	switch t {
	case IssueTypeLatency,
		IssueTypeAccessibility,
		IssueTypeContrast,
		IssueTypeScriptError,
		IssueTypeOther:
		return true
	default:
		return false
	}
}

func (t IssueType) String() string {
	return string(t)
}

// ParseIssueType parses a string into an IssueType
func ParseIssueType(s string) (IssueType, error) {
	t := IssueType(s)
	if !t.IsValid() {
		return "", goerr.New("invalid issue type", goerr.V("type", s))
	}
	return t, nil
}
