package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

func TestLogType_IsValid(t *testing.T) {
	tests := []struct {
		name string
		typ  types.LogType
		want bool
	}{
		{name: "performance", typ: types.LogTypePerformance, want: true},
		{name: "accessibility", typ: types.LogTypeAccessibility, want: true},
		{name: "error", typ: types.LogTypeError, want: true},
		{name: "ui", typ: types.LogTypeUI, want: true},
		{name: "upper case is rejected", typ: types.LogType("ERROR"), want: false},
		{name: "unknown", typ: types.LogType("network"), want: false},
		{name: "empty", typ: types.LogType(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.typ.IsValid()).Equal(tt.want)
		})
	}
}

func TestParseLogType(t *testing.T) {
	got, err := types.ParseLogType("accessibility")
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal(types.LogTypeAccessibility)

	_, err = types.ParseLogType("metrics")
	gt.Value(t, err).NotNil()
}

func TestEnumerationsRoundTrip(t *testing.T) {
	for _, it := range types.AllIssueTypes() {
		parsed, err := types.ParseIssueType(it.String())
		gt.NoError(t, err).Required()
		gt.Value(t, parsed).Equal(it)
	}
	for _, st := range types.AllFixspecStatuses() {
		parsed, err := types.ParseFixspecStatus(st.String())
		gt.NoError(t, err).Required()
		gt.Value(t, parsed).Equal(st)
	}
	for _, f := range types.AllFormats() {
		parsed, err := types.ParseFormat(f.String())
		gt.NoError(t, err).Required()
		gt.Value(t, parsed).Equal(f)
	}

	_, err := types.ParseFixspecStatus("done")
	gt.Value(t, err).NotNil()
	_, err = types.ParseFormat("yaml")
	gt.Value(t, err).NotNil()
	_, err = types.ParseIssueType("slow")
	gt.Value(t, err).NotNil()
}
