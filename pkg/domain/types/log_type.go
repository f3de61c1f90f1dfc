package types

import "github.com/m-mizutani/goerr/v2"

// LogType is the kind of an observed UX event
type LogType string

const (
	LogTypePerformance   LogType = "performance"
	LogTypeAccessibility LogType = "accessibility"
	LogTypeError         LogType = "error"
	LogTypeUI            LogType = "ui"
)

// AllLogTypes returns all valid log types
func AllLogTypes() []LogType {
	return []LogType{
		LogTypePerformance,
		LogTypeAccessibility,
		LogTypeError,
		LogTypeUI,
	}
}

// IsValid checks if the log type is one of the known values
func (t LogType) IsValid() bool {
	switch t {
	case LogTypePerformance, LogTypeAccessibility, LogTypeError, LogTypeUI:
		return true
	default:
		return false
	}
}

func (t LogType) String() string {
	return string(t)
}

// ParseLogType parses a string into a LogType
func ParseLogType(s string) (LogType, error) {
	t := LogType(s)
	if !t.IsValid() {
		return "", goerr.New("invalid log type", goerr.V("type", s))
	}
	return t, nil
}
