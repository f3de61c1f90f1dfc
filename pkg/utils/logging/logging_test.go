package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
)

func TestFromFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	prev := logging.Default()
	logging.SetDefault(logger)
	t.Cleanup(func() { logging.SetDefault(prev) })

	gt.Value(t, logging.From(context.Background())).Equal(logger)
}

func TestWithStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := logging.With(context.Background(), logger)

	logging.From(ctx).Info("hello", "key", "value")
	gt.String(t, buf.String()).Contains(`"key":"value"`)
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	prev := logging.Default()
	logging.SetDefault(nil)
	gt.Value(t, logging.Default()).Equal(prev)
}
