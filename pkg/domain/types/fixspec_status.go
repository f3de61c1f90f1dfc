package types

import "github.com/m-mizutani/goerr/v2"

// FixspecStatus represents the workflow state of a fixspec
type FixspecStatus string

const (
	FixspecStatusPending  FixspecStatus = "pending"
	FixspecStatusApplied  FixspecStatus = "applied"
	FixspecStatusRejected FixspecStatus = "rejected"
)

// AllFixspecStatuses returns all valid fixspec statuses
func AllFixspecStatuses() []FixspecStatus {
	return []FixspecStatus{
		FixspecStatusPending,
		FixspecStatusApplied,
		FixspecStatusRejected,
	}
}

// IsValid checks if the fixspec status is valid
func (s FixspecStatus) IsValid() bool {
	switch s {
	case FixspecStatusPending, FixspecStatusApplied, FixspecStatusRejected:
		return true
	default:
		return false
	}
}

func (s FixspecStatus) String() string {
	return string(s)
}

// ParseFixspecStatus parses a string into a FixspecStatus
func ParseFixspecStatus(s string) (FixspecStatus, error) {
	status := FixspecStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid fixspec status", goerr.V("status", s))
	}
	return status, nil
}
