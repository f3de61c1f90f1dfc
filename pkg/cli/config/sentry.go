package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const sentryFlushTimeout = 2 * time.Second

// Sentry holds error reporting settings. Reporting is disabled without a DSN.
type Sentry struct {
	dsn     string
	env     string
	release string
}

func (x *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting",
			Category:    "Sentry",
			Destination: &x.dsn,
			Sources:     cli.EnvVars("UXLENS_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Category:    "Sentry",
			Destination: &x.env,
			Sources:     cli.EnvVars("UXLENS_SENTRY_ENV"),
		},
	}
}

func (x Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", x.dsn != ""),
		slog.String("env", x.env),
	)
}

// SetRelease sets the release reported with events
func (x *Sentry) SetRelease(release string) {
	x.release = release
}

// Configure initializes the global Sentry client. The returned function
// flushes buffered events and must be called before exit.
func (x *Sentry) Configure() (func(), error) {
	if x.dsn == "" {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         x.dsn,
		Environment: x.env,
		Release:     x.release,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Sentry")
	}

	return func() {
		sentry.Flush(sentryFlushTimeout)
	}, nil
}
