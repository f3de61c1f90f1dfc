package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Logger struct {
	level  string
	format string
	output string
}

func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Aliases:     []string{"l"},
			Usage:       "Log level [debug|info|warn|error]",
			Category:    "Logging",
			Value:       "info",
			Sources:     cli.EnvVars("UXLENS_LOG_LEVEL"),
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format [console|json]",
			Category:    "Logging",
			Value:       "console",
			Sources:     cli.EnvVars("UXLENS_LOG_FORMAT"),
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output [stdout|stderr|<file path>]",
			Category:    "Logging",
			Value:       "stderr",
			Sources:     cli.EnvVars("UXLENS_LOG_OUTPUT"),
			Destination: &x.output,
		},
	}
}

func (x Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.String("output", x.output),
	)
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// redactor masks secrets such as webhook URLs and DSNs in log attributes
func redactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("token"),
		masq.WithFieldName("secret"),
		masq.WithFieldName("password"),
		masq.WithFieldName("dsn"),
		masq.WithFieldName("webhook_url"),
		masq.WithContain("hooks.slack.com/services/"),
	)
}

// Configure sets the default logger and returns a function closing the log
// file, if any
func (x *Logger) Configure() (func(), error) {
	level, ok := logLevels[x.level]
	if !ok {
		return nil, goerr.Wrap(ErrInvalidLogLevel, "unknown log level", goerr.V(LevelKey, x.level))
	}

	closer := func() {}
	var w io.Writer
	switch x.output {
	case "stdout", "-":
		w = os.Stdout
	case "stderr", "":
		w = os.Stderr
	default:
		// #nosec G304 - path is expected to be provided by CLI argument
		f, err := os.OpenFile(x.output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", x.output))
		}
		w = f
		closer = func() {
			_ = f.Close()
		}
	}

	var handler slog.Handler
	switch x.format {
	case "console":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(redactor()),
		)
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redactor(),
		})
	default:
		closer()
		return nil, goerr.Wrap(ErrInvalidLogFormat, "unknown log format", goerr.V(FormatKey, x.format))
	}

	logging.SetDefault(slog.New(handler))
	return closer, nil
}
