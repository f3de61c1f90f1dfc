package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
)

// ReadLogs returns the canonical log entries. force bypasses the mtime cache.
func (uc *UseCases) ReadLogs(ctx context.Context, force bool) ([]*model.LogEntry, error) {
	if uc.logStore == nil {
		return nil, goerr.Wrap(ErrLogStoreNotConfigured, "no canonical log file")
	}

	entries, err := uc.logStore.Read(ctx, force)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read canonical log")
	}
	return entries, nil
}
