package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/service/logstore"
	"github.com/urfave/cli/v3"
)

// CanonicalLog points at the JSON array log file served by LogStore and
// polled by the refresh worker
type CanonicalLog struct {
	path     string
	interval time.Duration
}

func (x *CanonicalLog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "Canonical JSON array log file",
			Category:    "Canonical log",
			Sources:     cli.EnvVars("UXLENS_LOG_FILE"),
			Destination: &x.path,
		},
		&cli.DurationFlag{
			Name:        "refresh-interval",
			Usage:       "Polling interval of the canonical log file (0 disables the worker)",
			Category:    "Canonical log",
			Value:       time.Minute,
			Sources:     cli.EnvVars("UXLENS_REFRESH_INTERVAL"),
			Destination: &x.interval,
		},
	}
}

func (x CanonicalLog) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", x.path),
		slog.Duration("interval", x.interval),
	)
}

func (x *CanonicalLog) Interval() time.Duration {
	return x.interval
}

// Configure returns nil when no log file is set
func (x *CanonicalLog) Configure() (*logstore.Store, error) {
	if x.interval < 0 {
		return nil, goerr.Wrap(ErrNegativeInterval, "invalid refresh interval", goerr.V(IntervalKey, x.interval))
	}
	if x.path == "" {
		return nil, nil
	}
	return logstore.New(x.path), nil
}
