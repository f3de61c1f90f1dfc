package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/interfaces"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
)

// ListFixspecs returns stored fixspecs, newest first
func (uc *UseCases) ListFixspecs(ctx context.Context, filter interfaces.FixspecFilter) ([]*model.Fixspec, error) {
	specs, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list fixspecs")
	}
	return specs, nil
}

func (uc *UseCases) GetFixspec(ctx context.Context, issueID string) (*model.Fixspec, error) {
	spec, err := uc.repo.Get(ctx, issueID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get fixspec", goerr.V(IssueIDKey, issueID))
	}
	return spec, nil
}
