package interfaces

import (
	"context"

	"github.com/secmon-lab/uxlens/pkg/domain/model"
)

// Notifier announces newly created fixspecs to an external channel
type Notifier interface {
	NotifyFixspecs(ctx context.Context, fixspecs []*model.Fixspec) error
}
