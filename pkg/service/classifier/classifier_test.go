package classifier_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
	"github.com/secmon-lab/uxlens/pkg/service/classifier"
)

func entry(logType types.LogType, category string, kv ...any) *model.LogEntry {
	meta := model.NewMetadata()
	for i := 0; i+1 < len(kv); i += 2 {
		meta.Set(kv[i].(string), model.FromAny(kv[i+1]))
	}
	return &model.LogEntry{
		ID:        "log-1",
		Timestamp: "2025-01-01T00:00:00Z",
		Type:      logType,
		Category:  category,
		Message:   "message",
		Metadata:  meta,
	}
}

func TestLatencyBoundaries(t *testing.T) {
	tests := []struct {
		ms   float64
		want types.Severity
	}{
		{ms: 2999, want: ""},
		{ms: 3000, want: ""},
		{ms: 3001, want: types.SeverityMedium},
		{ms: 5000, want: types.SeverityMedium},
		{ms: 5001, want: types.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.ms), func(t *testing.T) {
			issue := classifier.DetectLatency(classifier.DefaultThresholds(),
				entry(types.LogTypePerformance, "", "responseTime", tt.ms, "endpoint", "/api"))
			if tt.want == "" {
				gt.Value(t, issue).Nil()
				return
			}
			gt.Value(t, issue).NotNil().Required()
			gt.Value(t, issue.Severity).Equal(tt.want)
			gt.Value(t, issue.Type).Equal(types.IssueTypeLatency)
		})
	}
}

func TestDetectLatency(t *testing.T) {
	th := classifier.DefaultThresholds()

	t.Run("description carries value and endpoint", func(t *testing.T) {
		issue := classifier.DetectLatency(th, entry(types.LogTypePerformance, "", "responseTime", 6000, "endpoint", "/x"))
		gt.Value(t, issue).NotNil().Required()
		gt.String(t, issue.Description).Contains("6000ms")
		gt.String(t, issue.Description).Contains("/x")
		gt.Value(t, issue.Category).Equal(classifier.CategoryPerformance)
	})

	t.Run("numeric strings are accepted", func(t *testing.T) {
		issue := classifier.DetectLatency(th, entry(types.LogTypePerformance, "", "responseTime", "4500"))
		gt.Value(t, issue).NotNil().Required()
		gt.Value(t, issue.Severity).Equal(types.SeverityMedium)
	})

	t.Run("other types are ignored", func(t *testing.T) {
		gt.Value(t, classifier.DetectLatency(th, entry(types.LogTypeUI, "", "responseTime", 9000))).Nil()
	})

	t.Run("missing responseTime is ignored", func(t *testing.T) {
		gt.Value(t, classifier.DetectLatency(th, entry(types.LogTypePerformance, ""))).Nil()
	})

	t.Run("custom thresholds", func(t *testing.T) {
		custom := classifier.Thresholds{LatencyMs: 1000, LatencyHighMs: 2000, ContrastMin: 4.5, ContrastHighBelow: 3}
		issue := classifier.DetectLatency(custom, entry(types.LogTypePerformance, "", "responseTime", 2500))
		gt.Value(t, issue).NotNil().Required()
		gt.Value(t, issue.Severity).Equal(types.SeverityHigh)
	})
}

func TestDetectLatencyIgnoresNonFinite(t *testing.T) {
	th := classifier.DefaultThresholds()
	for _, raw := range []string{"NaN", "Inf", "+Inf", "-Inf"} {
		t.Run(raw, func(t *testing.T) {
			gt.Value(t, classifier.DetectLatency(th, entry(types.LogTypePerformance, "", "responseTime", raw))).Nil()
		})
	}
}

func TestContrastBoundaries(t *testing.T) {
	tests := []struct {
		ratio float64
		want  types.Severity
	}{
		{ratio: 2.9, want: types.SeverityHigh},
		{ratio: 3.0, want: types.SeverityMedium},
		{ratio: 4.4, want: types.SeverityMedium},
		{ratio: 4.5, want: ""},
		{ratio: 4.6, want: ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.ratio), func(t *testing.T) {
			issue := classifier.DetectContrast(classifier.DefaultThresholds(),
				entry(types.LogTypeUI, "contrast", "contrastRatio", tt.ratio))
			if tt.want == "" {
				gt.Value(t, issue).Nil()
				return
			}
			gt.Value(t, issue).NotNil().Required()
			gt.Value(t, issue.Severity).Equal(tt.want)
		})
	}
}

func TestDetectContrast(t *testing.T) {
	th := classifier.DefaultThresholds()

	t.Run("ratio has two decimals", func(t *testing.T) {
		issue := classifier.DetectContrast(th, entry(types.LogTypeUI, "Contrast", "contrastRatio", 2.456, "element", "p.note"))
		gt.Value(t, issue).NotNil().Required()
		gt.String(t, issue.Description).Contains("2.46:1")
		gt.String(t, issue.Description).Contains("p.note")
	})

	t.Run("non-finite ratio is ignored", func(t *testing.T) {
		gt.Value(t, classifier.DetectContrast(th, entry(types.LogTypeUI, "contrast", "contrastRatio", "NaN"))).Nil()
	})

	t.Run("requires contrast category", func(t *testing.T) {
		gt.Value(t, classifier.DetectContrast(th, entry(types.LogTypeUI, "layout", "contrastRatio", 1.0))).Nil()
	})
}

func TestDetectAccessibility(t *testing.T) {
	th := classifier.DefaultThresholds()

	tests := []struct {
		name     string
		category string
		kv       []any
		severity types.Severity
		contains string
	}{
		{
			name:     "missing alt text",
			kv:       []any{"violation", "missing-alt-text", "element", "img.hero"},
			severity: types.SeverityHigh,
			contains: "img.hero",
		},
		{
			name:     "images category",
			category: "images",
			severity: types.SeverityHigh,
			contains: "alternative text",
		},
		{
			name:     "invalid aria attribute",
			kv:       []any{"violation", "invalid-aria-attribute", "element", "div.menu", "attribute", "aria-expanded", "value", "maybe"},
			severity: types.SeverityHigh,
			contains: `aria-expanded="maybe"`,
		},
		{
			name:     "keyboard category",
			category: "keyboard",
			kv:       []any{"element", "button.buy"},
			severity: types.SeverityHigh,
			contains: "keyboard",
		},
		{
			name:     "keyword wins over wcag level",
			kv:       []any{"violation", "missing-alt-text", "wcagLevel", "AAA"},
			severity: types.SeverityHigh,
		},
		{
			name:     "wcag level A",
			kv:       []any{"wcagLevel", "A"},
			severity: types.SeverityHigh,
		},
		{
			name:     "wcag level AA",
			kv:       []any{"wcagLevel", "aa"},
			severity: types.SeverityMedium,
		},
		{
			name:     "wcag level AAA",
			kv:       []any{"wcagLevel", "AAA"},
			severity: types.SeverityLow,
		},
		{
			name:     "default",
			kv:       []any{"violation", "heading-order"},
			severity: types.SeverityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issue := classifier.DetectAccessibility(th, entry(types.LogTypeAccessibility, tt.category, tt.kv...))
			gt.Value(t, issue).NotNil().Required()
			gt.Value(t, issue.Severity).Equal(tt.severity)
			gt.Value(t, issue.Type).Equal(types.IssueTypeAccessibility)
			if tt.contains != "" {
				gt.String(t, issue.Description).Contains(tt.contains)
			}
		})
	}

	t.Run("other types are ignored", func(t *testing.T) {
		gt.Value(t, classifier.DetectAccessibility(th, entry(types.LogTypeUI, "images"))).Nil()
	})
}

func TestDetectScriptError(t *testing.T) {
	th := classifier.DefaultThresholds()

	t.Run("full description", func(t *testing.T) {
		issue := classifier.DetectScriptError(th, entry(types.LogTypeError, "javascript",
			"errorMessage", "TypeError: x is undefined", "component", "Checkout", "file", "app.js", "line", 42))
		gt.Value(t, issue).NotNil().Required()
		gt.Value(t, issue.Severity).Equal(types.SeverityHigh)
		gt.String(t, issue.Description).Contains("TypeError: x is undefined")
		gt.String(t, issue.Description).Contains("Checkout")
		gt.String(t, issue.Description).Contains("app.js:42")
	})

	t.Run("falls back to entry message", func(t *testing.T) {
		issue := classifier.DetectScriptError(th, entry(types.LogTypeError, "JavaScript"))
		gt.Value(t, issue).NotNil().Required()
		gt.String(t, issue.Description).Contains("message")
	})

	t.Run("both type and category are required", func(t *testing.T) {
		gt.Value(t, classifier.DetectScriptError(th, entry(types.LogTypeError, "network"))).Nil()
		gt.Value(t, classifier.DetectScriptError(th, entry(types.LogTypeUI, "javascript"))).Nil()
	})
}

func TestClassify(t *testing.T) {
	n := 0
	c := classifier.New(classifier.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("issue-%d", n)
	}))

	entries := []*model.LogEntry{
		entry(types.LogTypePerformance, "", "responseTime", 6000, "endpoint", "/x"),
		entry(types.LogTypeUI, "layout"),
		entry(types.LogTypeUI, "contrast", "contrastRatio", 2.0),
	}
	entries[2].ID = "log-3"

	issues := c.ClassifyAll(context.Background(), entries)
	gt.Value(t, len(issues)).Equal(2).Required()

	gt.Value(t, issues[0].ID).Equal("issue-1")
	gt.Value(t, issues[0].SourceLogID).Equal("log-1")
	gt.Value(t, issues[0].Timestamp).Equal("2025-01-01T00:00:00Z")
	gt.Value(t, issues[1].ID).Equal("issue-2")
	gt.Value(t, issues[1].SourceLogID).Equal("log-3")
	gt.Value(t, issues[1].Type).Equal(types.IssueTypeContrast)

	// source metadata is copied, not shared
	issues[0].Metadata.Set("responseTime", model.NumberValue(1))
	rt, _ := entries[0].Metadata.Number("responseTime")
	gt.Value(t, rt).Equal(6000.0)
}

func TestClassifyStableIDs(t *testing.T) {
	c := classifier.New(classifier.WithStableIDs())
	e := entry(types.LogTypePerformance, "", "responseTime", 6000)

	first := c.Classify(e)
	second := c.Classify(e)
	gt.Value(t, len(first)).Equal(1).Required()
	gt.Value(t, len(second)).Equal(1).Required()
	gt.Value(t, first[0].ID).Equal(second[0].ID)
	gt.Value(t, first[0].ID).Equal(model.StableIssueID("log-1", types.IssueTypeLatency))
	gt.NoError(t, model.ValidateIssueID(first[0].ID))

	other := entry(types.LogTypePerformance, "", "responseTime", 6000)
	other.ID = "log-2"
	gt.Value(t, c.Classify(other)[0].ID).NotEqual(first[0].ID)
}

func TestClassifyEmpty(t *testing.T) {
	issues := classifier.New().ClassifyAll(context.Background(), nil)
	gt.Array(t, issues).Length(0)
}

func TestThresholdsValidate(t *testing.T) {
	gt.NoError(t, classifier.DefaultThresholds().Validate())

	bad := classifier.DefaultThresholds()
	bad.LatencyHighMs = 100
	gt.Error(t, bad.Validate()).Is(classifier.ErrInvalidThresholds)

	bad = classifier.DefaultThresholds()
	bad.ContrastHighBelow = 5
	gt.Error(t, bad.Validate()).Is(classifier.ErrInvalidThresholds)

	bad = classifier.DefaultThresholds()
	bad.LatencyMs = 0
	gt.Error(t, bad.Validate()).Is(classifier.ErrInvalidThresholds)
}
