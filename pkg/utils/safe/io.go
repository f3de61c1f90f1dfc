package safe

import (
	"context"
	"encoding/json"
	"io"

	"github.com/secmon-lab/uxlens/pkg/utils/logging"
)

// Close closes closer and logs a failure instead of returning it. A nil
// closer is a no-op.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", "error", err.Error())
	}
}

// WriteJSON encodes v to w, logging encoder or write failures. Used for
// responses whose headers are already sent.
func WriteJSON(ctx context.Context, w io.Writer, v any) {
	if w == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.From(ctx).Error("failed to write JSON", "error", err.Error())
	}
}
