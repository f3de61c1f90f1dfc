package scoring

import (
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

const (
	MaxScore = 100
	MinScore = 0
)

// Penalty returns the points deducted for one issue of severity sev.
// "moderate" and "minor" are accepted as aliases used by external analyzers.
func Penalty(sev types.Severity) int {
	switch sev.Normalize() {
	case types.SeverityCritical, types.SeverityHigh:
		return 15
	case types.SeverityMedium, "moderate":
		return 8
	case types.SeverityLow, "minor":
		return 3
	default:
		return 5
	}
}

// Score maps issues to a 0-100 quality score. The result depends only on the
// multiset of severities.
func Score(issues []*model.Issue) int {
	sevs := make([]types.Severity, 0, len(issues))
	for _, issue := range issues {
		if issue != nil {
			sevs = append(sevs, issue.Severity)
		}
	}
	return ScoreSeverities(sevs...)
}

// ScoreSeverities scores a plain list of severities
func ScoreSeverities(sevs ...types.Severity) int {
	score := MaxScore
	for _, sev := range sevs {
		score -= Penalty(sev)
	}
	return clamp(score)
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
