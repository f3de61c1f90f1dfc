package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/interfaces"
	"github.com/secmon-lab/uxlens/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	webhookURL string
	maxItems   int
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for new high and critical fixspecs",
			Category:    "Slack",
			Destination: &x.webhookURL,
			Sources:     cli.EnvVars("UXLENS_SLACK_WEBHOOK_URL"),
		},
		&cli.IntFlag{
			Name:        "slack-max-items",
			Usage:       "Maximum fixspecs listed in one Slack message",
			Category:    "Slack",
			Value:       slack.DefaultMaxItems,
			Destination: &x.maxItems,
			Sources:     cli.EnvVars("UXLENS_SLACK_MAX_ITEMS"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("webhook-url.len", len(x.webhookURL)),
		slog.Int("max-items", x.maxItems),
	)
}

// IsConfigured checks if a webhook URL is set
func (x *Slack) IsConfigured() bool {
	return x.webhookURL != ""
}

// Configure returns nil when no webhook is configured
func (x *Slack) Configure() (interfaces.Notifier, error) {
	if !x.IsConfigured() {
		return nil, nil
	}

	var opts []slack.Option
	if x.maxItems > 0 {
		opts = append(opts, slack.WithMaxItems(x.maxItems))
	}
	n, err := slack.New(x.webhookURL, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure Slack notifier")
	}
	return n, nil
}
