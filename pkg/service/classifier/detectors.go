package classifier

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

// Display groupings
const (
	CategoryPerformance   = "Performance"
	CategoryAccessibility = "Accessibility"
	CategoryVisualDesign  = "Visual Design"
	CategoryFunctionality = "Functionality"
)

// Accessibility violation identifiers
const (
	ViolationMissingAltText       = "missing-alt-text"
	ViolationInvalidARIAAttribute = "invalid-aria-attribute"
	ViolationNoKeyboardAccess     = "no-keyboard-access"
)

// Detector inspects one entry and returns an issue draft or nil. The
// classifier assigns ID, source and timestamp.
type Detector func(t Thresholds, entry *model.LogEntry) *model.Issue

// Detectors returns the built-in detectors in evaluation order
func Detectors() []Detector {
	return []Detector{
		DetectLatency,
		DetectAccessibility,
		DetectContrast,
		DetectScriptError,
	}
}

// DetectLatency raises slow responses on performance entries
func DetectLatency(t Thresholds, entry *model.LogEntry) *model.Issue {
	if entry.Type != types.LogTypePerformance {
		return nil
	}
	ms, ok := entry.Metadata.Number("responseTime")
	if !ok || ms <= t.LatencyMs {
		return nil
	}

	severity := types.SeverityMedium
	if ms > t.LatencyHighMs {
		severity = types.SeverityHigh
	}

	endpoint := firstText(entry.Metadata, "endpoint", "url")
	if endpoint == "" {
		endpoint = "unknown endpoint"
	}

	meta := carry(entry)
	meta.Set("responseTime", model.NumberValue(ms))
	meta.Set("endpoint", model.StringValue(endpoint))
	meta.Set("threshold", model.NumberValue(t.LatencyMs))

	return &model.Issue{
		Type:        types.IssueTypeLatency,
		Severity:    severity,
		Description: fmt.Sprintf("Slow response time of %sms on %s (threshold %sms)", formatNumber(ms), endpoint, formatNumber(t.LatencyMs)),
		Category:    CategoryPerformance,
		Metadata:    meta,
	}
}

// DetectAccessibility raises every accessibility entry. The three Level-A
// violations are always high, matched on violation id or category, and take
// precedence over the wcagLevel fallback.
func DetectAccessibility(_ Thresholds, entry *model.LogEntry) *model.Issue {
	if entry.Type != types.LogTypeAccessibility {
		return nil
	}

	violation := strings.ToLower(firstText(entry.Metadata, "violation"))
	category := strings.ToLower(entry.Category)
	element := firstText(entry.Metadata, "element", "selector")
	if element == "" {
		element = "element"
	}

	issue := &model.Issue{
		Type:     types.IssueTypeAccessibility,
		Severity: types.SeverityMedium,
		Category: CategoryAccessibility,
		Metadata: carry(entry),
	}

	switch {
	case violation == ViolationMissingAltText || category == "images":
		issue.Severity = types.SeverityHigh
		issue.Description = fmt.Sprintf("Image %s is missing alternative text", element)

	case violation == ViolationInvalidARIAAttribute || category == "aria":
		issue.Severity = types.SeverityHigh
		attr := firstText(entry.Metadata, "attribute", "ariaAttribute")
		if attr != "" {
			issue.Description = fmt.Sprintf("Element %s has an invalid ARIA attribute %s=%q",
				element, attr, firstText(entry.Metadata, "value", "ariaValue"))
		} else {
			issue.Description = fmt.Sprintf("Element %s has an invalid ARIA attribute", element)
		}

	case violation == ViolationNoKeyboardAccess || category == "keyboard":
		issue.Severity = types.SeverityHigh
		issue.Description = fmt.Sprintf("Element %s cannot be reached or operated with the keyboard", element)

	default:
		if level, ok := entry.Metadata.Text("wcagLevel"); ok {
			switch strings.ToUpper(strings.TrimSpace(level)) {
			case "A":
				issue.Severity = types.SeverityHigh
			case "AA":
				issue.Severity = types.SeverityMedium
			default:
				issue.Severity = types.SeverityLow
			}
		}
		issue.Description = fmt.Sprintf("Accessibility violation on %s: %s", element, entry.Message)
	}

	return issue
}

// DetectContrast raises insufficient colour contrast on ui/contrast entries
func DetectContrast(t Thresholds, entry *model.LogEntry) *model.Issue {
	if entry.Type != types.LogTypeUI || !strings.EqualFold(entry.Category, "contrast") {
		return nil
	}
	ratio, ok := entry.Metadata.Number("contrastRatio")
	if !ok || ratio >= t.ContrastMin {
		return nil
	}

	severity := types.SeverityMedium
	if ratio < t.ContrastHighBelow {
		severity = types.SeverityHigh
	}

	desc := fmt.Sprintf("Insufficient color contrast ratio %.2f:1 (minimum %.1f:1)", ratio, t.ContrastMin)
	if element := firstText(entry.Metadata, "element", "selector"); element != "" {
		desc = fmt.Sprintf("Insufficient color contrast ratio %.2f:1 on %s (minimum %.1f:1)", ratio, element, t.ContrastMin)
	}

	meta := carry(entry)
	meta.Set("contrastRatio", model.NumberValue(ratio))
	meta.Set("requiredRatio", model.NumberValue(t.ContrastMin))

	return &model.Issue{
		Type:        types.IssueTypeContrast,
		Severity:    severity,
		Description: desc,
		Category:    CategoryVisualDesign,
		Metadata:    meta,
	}
}

// DetectScriptError raises every error/javascript entry as high
func DetectScriptError(_ Thresholds, entry *model.LogEntry) *model.Issue {
	if entry.Type != types.LogTypeError || !strings.EqualFold(entry.Category, "javascript") {
		return nil
	}

	msg := firstText(entry.Metadata, "errorMessage")
	if msg == "" {
		msg = entry.Message
	}

	var b strings.Builder
	b.WriteString("JavaScript error: ")
	b.WriteString(msg)
	if component := firstText(entry.Metadata, "component"); component != "" {
		b.WriteString(" in component ")
		b.WriteString(component)
	}
	if file := firstText(entry.Metadata, "file", "filename", "source"); file != "" {
		b.WriteString(" at ")
		b.WriteString(file)
		if line := firstText(entry.Metadata, "line", "lineNumber", "lineno"); line != "" {
			b.WriteString(":")
			b.WriteString(line)
		}
	}

	return &model.Issue{
		Type:        types.IssueTypeScriptError,
		Severity:    types.SeverityHigh,
		Description: b.String(),
		Category:    CategoryFunctionality,
		Metadata:    carry(entry),
	}
}

func carry(entry *model.LogEntry) *model.Metadata {
	if entry.Metadata == nil {
		return model.NewMetadata()
	}
	return entry.Metadata.Clone()
}

func firstText(m *model.Metadata, keys ...string) string {
	for _, k := range keys {
		if v, ok := m.Text(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
