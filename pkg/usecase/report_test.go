package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/repository/memory"
	"github.com/secmon-lab/uxlens/pkg/usecase"
)

func intPtr(v int) *int { return &v }

func TestScoreExternalReport(t *testing.T) {
	uc := usecase.New(memory.New())
	ctx := context.Background()

	tests := []struct {
		name     string
		report   *model.ExternalReport
		score    int
		mismatch bool
		dropped  int
	}{
		{
			name: "reported score is ignored",
			report: &model.ExternalReport{
				Issues: []model.ExternalIssue{
					{Type: "latency", Severity: "high", Description: "slow"},
					{Type: "contrast", Severity: "moderate", Description: "faint"},
				},
				Score: intPtr(95),
			},
			score:    77,
			mismatch: true,
		},
		{
			name: "matching score",
			report: &model.ExternalReport{
				Issues: []model.ExternalIssue{{Type: "x", Severity: "minor", Description: "y"}},
				Score:  intPtr(97),
			},
			score: 97,
		},
		{
			name: "no reported score",
			report: &model.ExternalReport{
				Issues: []model.ExternalIssue{{Type: "x", Severity: "weird"}},
			},
			score: 95,
		},
		{
			name: "empty issues are dropped",
			report: &model.ExternalReport{
				Issues: []model.ExternalIssue{
					{Severity: "critical"},
					{Type: "x", Severity: "CRITICAL"},
				},
				Score: intPtr(85),
			},
			score:   85,
			dropped: 1,
		},
		{
			name:   "empty report",
			report: &model.ExternalReport{},
			score:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.ScoreExternalReport(ctx, tt.report)
			gt.NoError(t, err).Required()
			gt.Value(t, got.Score).Equal(tt.score)
			gt.Value(t, got.Mismatch).Equal(tt.mismatch)
			gt.Value(t, got.Dropped).Equal(tt.dropped)
			gt.Value(t, len(got.Issues)).Equal(len(tt.report.Issues) - tt.dropped)
		})
	}

	t.Run("nil report", func(t *testing.T) {
		_, err := uc.ScoreExternalReport(ctx, nil)
		gt.Error(t, err).Is(usecase.ErrNoInput)
	})
}
