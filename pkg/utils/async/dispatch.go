package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine detached from ctx cancellation.
// The logger carried by ctx is preserved. Errors and panics are logged, never propagated.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
