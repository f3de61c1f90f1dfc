package interfaces

import (
	"context"

	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

// FixspecFilter narrows List results. The zero value matches everything.
type FixspecFilter struct {
	Status types.FixspecStatus
}

// Match reports whether f passes the filter
func (x FixspecFilter) Match(f *model.Fixspec) bool {
	return x.Status == "" || f.Status == x.Status
}

// FixspecRepository is the durable, issue-keyed store for fixspecs
type FixspecRepository interface {
	// SaveOnce persists fixspec unless a record already exists under its issue ID.
	// It reports whether this call created the record. An existing record is never
	// modified.
	SaveOnce(ctx context.Context, fixspec *model.Fixspec) (bool, error)

	// Get retrieves a fixspec by issue ID
	Get(ctx context.Context, issueID string) (*model.Fixspec, error)

	// List returns stored fixspecs, newest first
	List(ctx context.Context, filter FixspecFilter) ([]*model.Fixspec, error)

	// Close releases backend resources
	Close() error
}
