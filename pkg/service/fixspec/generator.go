package fixspec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

// ariaWord matches "aria" as a word or attribute prefix, not inside words like "variable"
var ariaWord = regexp.MustCompile(`\baria\b`)

// Generator builds remediation documents from issues
type Generator struct {
	now func() time.Time
}

type Option func(*Generator)

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a pending Fixspec for issue. The result is derived only
// from the issue and the clock.
func (g *Generator) Generate(issue *model.Issue) *model.Fixspec {
	var fix model.SuggestedFix
	switch issue.Type {
	case types.IssueTypeLatency:
		fix = latencyFix(issue)
	case types.IssueTypeAccessibility:
		fix = accessibilityFix(issue)
	case types.IssueTypeContrast:
		fix = contrastFix(issue)
	case types.IssueTypeScriptError:
		fix = scriptErrorFix(issue)
	default:
		fix = genericFix(issue)
	}

	return &model.Fixspec{
		IssueID:      issue.ID,
		Type:         issue.Type,
		Description:  issue.Description,
		Severity:     issue.Severity,
		SuggestedFix: fix,
		Timestamp:    g.now().UTC(),
		Status:       types.FixspecStatusPending,
	}
}

// GenerateAll maps issues to fixspecs in order
func (g *Generator) GenerateAll(issues []*model.Issue) []*model.Fixspec {
	specs := make([]*model.Fixspec, 0, len(issues))
	for _, issue := range issues {
		specs = append(specs, g.Generate(issue))
	}
	return specs
}

func latencyFix(issue *model.Issue) model.SuggestedFix {
	endpoint := text(issue.Metadata, "unknown endpoint", "endpoint", "url")
	ms, _ := issue.Metadata.Number("responseTime")
	threshold, ok := issue.Metadata.Number("threshold")
	if !ok {
		threshold = 3000
	}

	return model.SuggestedFix{
		Summary: fmt.Sprintf("Reduce the response time of %s from %sms to under %sms",
			endpoint, formatNumber(ms), formatNumber(threshold)),
		Steps: []string{
			fmt.Sprintf("Profile the handler behind %s and identify the slowest phase (DNS, connect, server wait, transfer)", endpoint),
			"Add caching for repeated reads and set Cache-Control headers on cacheable responses",
			"Move slow database queries behind indexes or paginate large result sets",
			"Compress and trim the response payload; defer non-critical data to follow-up requests",
			"Show a loading state for requests that cannot be made fast, and add a latency alert at the threshold",
		},
		CodeExample: fmt.Sprintf(`// Before: every request recomputes the response
app.get(%[1]q, async (req, res) => {
  res.json(await buildReport(req.query));
});

// After: cache the computed response for a short TTL
app.get(%[1]q, async (req, res) => {
  const key = JSON.stringify(req.query);
  let body = cache.get(key);
  if (!body) {
    body = await buildReport(req.query);
    cache.set(key, body, { ttl: 60 });
  }
  res.set("Cache-Control", "public, max-age=60").json(body);
});`, endpoint),
		References: []string{
			"Web Vitals: Largest Contentful Paint (LCP)",
			"Web Vitals: Interaction to Next Paint (INP)",
			"Web Vitals: Time to First Byte (TTFB)",
		},
	}
}

// accessibilityFix picks a template by violation id or description keyword:
// alt text, then ARIA, then keyboard, then a generic fallback.
func accessibilityFix(issue *model.Issue) model.SuggestedFix {
	violation := strings.ToLower(text(issue.Metadata, "", "violation"))
	desc := strings.ToLower(issue.Description)
	element := text(issue.Metadata, "the element", "element", "selector")

	switch {
	case violation == "missing-alt-text" || strings.Contains(desc, "alt text") || strings.Contains(desc, "alternative text"):
		return model.SuggestedFix{
			Summary: fmt.Sprintf("Add descriptive alternative text to %s", element),
			Steps: []string{
				fmt.Sprintf("Add an alt attribute to %s describing the image's purpose", element),
				`Use alt="" for purely decorative images so screen readers skip them`,
				"Avoid phrases such as \"image of\"; describe the content or function instead",
				"Verify the result with a screen reader or an automated accessibility checker",
			},
			CodeExample: `<!-- Before -->
<img src="/img/hero.jpg">

<!-- After -->
<img src="/img/hero.jpg" alt="Team members reviewing a dashboard">`,
			References: []string{
				"WCAG 2.1 SC 1.1.1 Non-text Content (Level A)",
			},
		}

	case ariaWord.MatchString(violation) || ariaWord.MatchString(desc):
		attr := text(issue.Metadata, "aria-*", "attribute", "ariaAttribute")
		value := text(issue.Metadata, "", "value", "ariaValue")
		return model.SuggestedFix{
			Summary: fmt.Sprintf("Correct the ARIA attribute %s on %s", attrPair(attr, value), element),
			Steps: []string{
				fmt.Sprintf("Check that %s is a valid attribute for the element's role", attr),
				"Use only the values the attribute allows (for example true/false for aria-expanded)",
				"Prefer native HTML elements over ARIA roles where an equivalent exists",
				"Re-test with the browser accessibility tree inspector",
			},
			CodeExample: `<!-- Before -->
<div role="button" aria-expanded="maybe">Menu</div>

<!-- After -->
<button type="button" aria-expanded="false" aria-controls="menu">Menu</button>`,
			References: []string{
				"WCAG 2.1 SC 4.1.2 Name, Role, Value (Level A)",
				"WAI-ARIA 1.2 States and Properties",
			},
		}

	case strings.Contains(violation, "keyboard") || strings.Contains(desc, "keyboard"):
		return model.SuggestedFix{
			Summary: fmt.Sprintf("Make %s reachable and operable with the keyboard", element),
			Steps: []string{
				"Use a native interactive element (button, a, input) or add tabindex=\"0\"",
				"Handle Enter and Space key events alongside click handlers",
				"Ensure a visible focus indicator is present",
				"Tab through the page to confirm a logical focus order",
			},
			CodeExample: `<!-- Before -->
<div class="buy" onclick="buy()">Buy</div>

<!-- After -->
<button type="button" class="buy" onclick="buy()">Buy</button>`,
			References: []string{
				"WCAG 2.1 SC 2.1.1 Keyboard (Level A)",
				"WCAG 2.1 SC 2.4.7 Focus Visible (Level AA)",
			},
		}

	default:
		return model.SuggestedFix{
			Summary: fmt.Sprintf("Resolve the accessibility violation on %s", element),
			Steps: []string{
				"Reproduce the violation with an automated accessibility checker",
				"Identify the WCAG success criterion that fails",
				"Apply the fix and re-run the checker",
				"Confirm the behaviour with assistive technology",
			},
			CodeExample: `<!-- Before -->
<span onclick="save()">Save</span>

<!-- After -->
<button type="button" onclick="save()">Save</button>`,
			References: []string{
				"WCAG 2.1 Quick Reference",
			},
		}
	}
}

func contrastFix(issue *model.Issue) model.SuggestedFix {
	element := text(issue.Metadata, "the text", "element", "selector")
	current, _ := issue.Metadata.Number("contrastRatio")
	required, ok := issue.Metadata.Number("requiredRatio")
	if !ok {
		required = 4.5
	}

	return model.SuggestedFix{
		Summary: fmt.Sprintf("Increase the contrast of %s from %.2f:1 to at least %.1f:1", element, current, required),
		Steps: []string{
			"Measure the foreground and background colours with a contrast checker",
			"Darken the text or lighten the background until the ratio meets the minimum",
			"Use at least 3:1 only for large text (18pt, or 14pt bold)",
			"Update the design tokens so every use of the colour pair is fixed",
		},
		CodeExample: `/* Before */
.note { color: #999999; background: #ffffff; } /* 2.85:1 */

/* After */
.note { color: #595959; background: #ffffff; } /* 7.00:1 */`,
		References: []string{
			"WCAG 2.1 SC 1.4.3 Contrast (Minimum) (Level AA)",
			"WCAG 2.1 SC 1.4.11 Non-text Contrast (Level AA)",
		},
	}
}

func scriptErrorFix(issue *model.Issue) model.SuggestedFix {
	component := text(issue.Metadata, "", "component")
	file := text(issue.Metadata, "", "file", "filename", "source")
	line := text(issue.Metadata, "", "line", "lineNumber", "lineno")

	location := "the affected script"
	switch {
	case component != "" && file != "":
		location = fmt.Sprintf("%s (%s)", component, fileLine(file, line))
	case component != "":
		location = component
	case file != "":
		location = fileLine(file, line)
	}

	return model.SuggestedFix{
		Summary: fmt.Sprintf("Fix the uncaught JavaScript error in %s", location),
		Steps: []string{
			fmt.Sprintf("Reproduce the error and inspect the stack trace in %s", location),
			"Guard against undefined or null values before property access",
			"Wrap the failing render or handler in an error boundary or try/catch",
			"Add a regression test for the failing input",
		},
		CodeExample: `// Before
const total = cart.items.reduce((sum, i) => sum + i.price, 0);

// After
const total = (cart?.items ?? []).reduce((sum, i) => sum + i.price, 0);`,
		References: []string{
			"MDN: Control flow and error handling",
			"MDN: Optional chaining (?.)",
		},
	}
}

func genericFix(issue *model.Issue) model.SuggestedFix {
	return model.SuggestedFix{
		Summary: fmt.Sprintf("Investigate and resolve: %s", issue.Description),
		Steps: []string{
			"Reproduce the issue",
			"Identify the root cause",
			"Apply and verify a fix",
		},
	}
}

func text(m *model.Metadata, fallback string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m.Text(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return fallback
}

func attrPair(attr, value string) string {
	if value == "" {
		return attr
	}
	return fmt.Sprintf("%s=%q", attr, value)
}

func fileLine(file, line string) string {
	if line == "" {
		return file
	}
	return file + ":" + line
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
