package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
	"github.com/secmon-lab/uxlens/pkg/service/scoring"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
)

// ScoreExternalReport recomputes the score of an externally produced report.
// The reported score is echoed back for comparison and never used.
func (uc *UseCases) ScoreExternalReport(ctx context.Context, report *model.ExternalReport) (*model.ScoredReport, error) {
	if report == nil {
		return nil, goerr.Wrap(ErrNoInput, "report is required")
	}

	issues := make([]model.ExternalIssue, 0, len(report.Issues))
	sevs := make([]types.Severity, 0, len(report.Issues))
	dropped := 0
	for _, issue := range report.Issues {
		if strings.TrimSpace(issue.Type) == "" && strings.TrimSpace(issue.Description) == "" {
			dropped++
			continue
		}
		issues = append(issues, issue)
		sevs = append(sevs, issue.Severity)
	}

	scored := &model.ScoredReport{
		Score:         scoring.ScoreSeverities(sevs...),
		ReportedScore: report.Score,
		Issues:        issues,
		Dropped:       dropped,
	}
	if report.Score != nil && *report.Score != scored.Score {
		scored.Mismatch = true
		logging.From(ctx).Warn("external report score differs from recomputed score",
			"reported", *report.Score,
			"recomputed", scored.Score,
		)
	}

	return scored, nil
}
