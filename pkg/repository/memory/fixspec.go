package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/interfaces"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
)

// FixspecRepository keeps fixspecs in process memory. Intended for
// development and tests.
type FixspecRepository struct {
	mu    sync.RWMutex
	specs map[string]*model.Fixspec
}

var _ interfaces.FixspecRepository = &FixspecRepository{}

func New() *FixspecRepository {
	return &FixspecRepository{
		specs: make(map[string]*model.Fixspec),
	}
}

func (r *FixspecRepository) SaveOnce(ctx context.Context, fixspec *model.Fixspec) (bool, error) {
	if err := fixspec.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[fixspec.IssueID]; exists {
		return false, nil
	}
	r.specs[fixspec.IssueID] = fixspec.Clone()
	return true, nil
}

func (r *FixspecRepository) Get(ctx context.Context, issueID string) (*model.Fixspec, error) {
	if err := model.ValidateIssueID(issueID); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[issueID]
	if !ok {
		return nil, goerr.Wrap(model.ErrFixspecNotFound, "fixspec not found", goerr.V(model.IssueIDKey, issueID))
	}
	return spec.Clone(), nil
}

func (r *FixspecRepository) List(ctx context.Context, filter interfaces.FixspecFilter) ([]*model.Fixspec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]*model.Fixspec, 0, len(r.specs))
	for _, spec := range r.specs {
		if filter.Match(spec) {
			specs = append(specs, spec.Clone())
		}
	}
	model.SortFixspecs(specs)
	return specs, nil
}

func (r *FixspecRepository) Close() error {
	return nil
}
