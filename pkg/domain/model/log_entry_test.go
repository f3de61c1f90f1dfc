package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

func TestLogEntry_Validate(t *testing.T) {
	valid := func() model.LogEntry {
		return model.LogEntry{
			ID:        "a",
			Timestamp: "2025-01-01T00:00:00Z",
			Type:      types.LogTypePerformance,
			Message:   "slow",
		}
	}

	tests := []struct {
		name    string
		mutate  func(e *model.LogEntry)
		wantErr bool
	}{
		{name: "valid entry", mutate: func(e *model.LogEntry) {}},
		{name: "missing id", mutate: func(e *model.LogEntry) { e.ID = "" }, wantErr: true},
		{name: "missing timestamp", mutate: func(e *model.LogEntry) { e.Timestamp = "" }, wantErr: true},
		{name: "unknown type", mutate: func(e *model.LogEntry) { e.Type = "network" }, wantErr: true},
		{name: "missing message", mutate: func(e *model.LogEntry) { e.Message = "" }, wantErr: true},
		{name: "category is optional", mutate: func(e *model.LogEntry) { e.Category = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr {
				gt.Bool(t, errors.Is(err, model.ErrInvalidLogEntry)).True()
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestValidateIssueID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{id: "0f8c2a6e-8d4f-4b7e-9d55-3a2b1c0d9e8f", valid: true},
		{id: "issue_1.v2", valid: true},
		{id: "", valid: false},
		{id: "../etc/passwd", valid: false},
		{id: "a..b", valid: false},
		{id: "dir/file", valid: false},
		{id: ".hidden", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := model.ValidateIssueID(tt.id)
			if tt.valid {
				gt.NoError(t, err)
			} else {
				gt.Bool(t, errors.Is(err, model.ErrInvalidIssueID)).True()
			}
		})
	}
}

func TestFixspec_Validate(t *testing.T) {
	f := &model.Fixspec{
		IssueID:      "issue-1",
		Type:         types.IssueTypeLatency,
		Severity:     types.SeverityHigh,
		SuggestedFix: model.SuggestedFix{Summary: "Reduce latency"},
		Status:       types.FixspecStatusPending,
	}
	gt.NoError(t, f.Validate())

	f.Status = "done"
	gt.Bool(t, errors.Is(f.Validate(), model.ErrInvalidFixspec)).True()

	f.Status = types.FixspecStatusPending
	f.IssueID = "../x"
	gt.Bool(t, errors.Is(f.Validate(), model.ErrInvalidIssueID)).True()
}
