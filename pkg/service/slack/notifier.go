package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/interfaces"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
	"github.com/slack-go/slack"
)

const (
	// DefaultMaxItems caps the fixspecs listed in one message
	DefaultMaxItems = 10

	// section text limit of the Slack block kit
	maxSectionBytes = 3000
)

// Notifier posts newly created high and critical fixspecs to an incoming
// webhook
type Notifier struct {
	webhookURL string
	httpClient *http.Client
	maxItems   int
}

var _ interfaces.Notifier = &Notifier{}

// Option is a functional option for Notifier configuration
type Option func(*Notifier)

// WithHTTPClient replaces the HTTP client used for webhook calls
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) {
		n.httpClient = c
	}
}

// WithMaxItems sets how many fixspecs are listed before the rest are summarized
func WithMaxItems(max int) Option {
	return func(n *Notifier) {
		n.maxItems = max
	}
}

// New creates a webhook notifier
func New(webhookURL string, opts ...Option) (*Notifier, error) {
	if webhookURL == "" {
		return nil, goerr.New("Slack webhook URL is required")
	}

	n := &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxItems:   DefaultMaxItems,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// NotifyFixspecs posts one message listing the high and critical fixspecs.
// Nothing is sent when none qualify.
func (n *Notifier) NotifyFixspecs(ctx context.Context, specs []*model.Fixspec) error {
	urgent := make([]*model.Fixspec, 0, len(specs))
	for _, spec := range specs {
		if isUrgent(spec.Severity) {
			urgent = append(urgent, spec)
		}
	}
	if len(urgent) == 0 {
		return nil
	}

	msg := buildMessage(urgent, n.maxItems)
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post fixspec notification", goerr.V("count", len(urgent)))
	}
	return nil
}

func isUrgent(sev types.Severity) bool {
	switch sev.Normalize() {
	case types.SeverityCritical, types.SeverityHigh:
		return true
	default:
		return false
	}
}

func buildMessage(specs []*model.Fixspec, maxItems int) *slack.WebhookMessage {
	title := fmt.Sprintf("%d new UX fixspec(s) need attention", len(specs))

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, false, false)),
	}

	shown := specs
	if maxItems > 0 && len(shown) > maxItems {
		shown = shown[:maxItems]
	}
	for _, spec := range shown {
		text := fmt.Sprintf("*[%s] %s* `%s`\n%s\n_%s_",
			strings.ToUpper(string(spec.Severity)), spec.Type, spec.IssueID,
			spec.Description, spec.SuggestedFix.Summary)
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, truncateToMaxBytes(text, maxSectionBytes), false, false),
			nil, nil,
		))
	}
	if rest := len(specs) - len(shown); rest > 0 {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("and %d more", rest), false, false),
		))
	}

	return &slack.WebhookMessage{
		Text:   title,
		Blocks: &slack.Blocks{BlockSet: blocks},
	}
}

// truncateToMaxBytes cuts s to at most max bytes without splitting a rune
func truncateToMaxBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	const ellipsis = "…"
	cut := max - len(ellipsis)
	if cut <= 0 {
		return ""
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
