package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/interfaces"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
	"github.com/secmon-lab/uxlens/pkg/utils/safe"
)

const fileExt = ".json"

// FixspecRepository stores one pretty-printed JSON document per issue under
// dir, named <issueId>.json
type FixspecRepository struct {
	dir string
}

var _ interfaces.FixspecRepository = &FixspecRepository{}

func New(dir string) *FixspecRepository {
	return &FixspecRepository{dir: dir}
}

// Dir returns the backing directory
func (r *FixspecRepository) Dir() string {
	return r.dir
}

func (r *FixspecRepository) path(issueID string) string {
	return filepath.Join(r.dir, issueID+fileExt)
}

// SaveOnce writes the document to a temporary file and hard-links it into
// place. The link fails if the target exists, so concurrent writers for the
// same issue never observe or produce a partial file.
func (r *FixspecRepository) SaveOnce(ctx context.Context, fixspec *model.Fixspec) (bool, error) {
	if err := fixspec.Validate(); err != nil {
		return false, err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return false, goerr.Wrap(err, "failed to create fixspec directory", goerr.V("dir", r.dir))
	}

	target := r.path(fixspec.IssueID)
	if _, err := os.Stat(target); err == nil {
		return false, nil
	}

	data, err := json.MarshalIndent(fixspec, "", "  ")
	if err != nil {
		return false, goerr.Wrap(err, "failed to marshal fixspec", goerr.V(model.IssueIDKey, fixspec.IssueID))
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(r.dir, "."+fixspec.IssueID+".*.tmp")
	if err != nil {
		return false, goerr.Wrap(err, "failed to create temporary file", goerr.V("dir", r.dir))
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.From(ctx).Warn("failed to remove temporary file", "path", tmpPath, "error", err.Error())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		safe.Close(ctx, tmp)
		return false, goerr.Wrap(err, "failed to write temporary file", goerr.V("path", tmpPath))
	}
	if err := tmp.Sync(); err != nil {
		safe.Close(ctx, tmp)
		return false, goerr.Wrap(err, "failed to sync temporary file", goerr.V("path", tmpPath))
	}
	if err := tmp.Close(); err != nil {
		return false, goerr.Wrap(err, "failed to close temporary file", goerr.V("path", tmpPath))
	}

	if err := os.Link(tmpPath, target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to publish fixspec", goerr.V("path", target))
	}

	return true, nil
}

func (r *FixspecRepository) Get(ctx context.Context, issueID string) (*model.Fixspec, error) {
	if err := model.ValidateIssueID(issueID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path(issueID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(model.ErrFixspecNotFound, "fixspec not found", goerr.V(model.IssueIDKey, issueID))
		}
		return nil, goerr.Wrap(err, "failed to read fixspec", goerr.V(model.IssueIDKey, issueID))
	}

	var fixspec model.Fixspec
	if err := json.Unmarshal(data, &fixspec); err != nil {
		return nil, goerr.Wrap(err, "failed to parse fixspec", goerr.V(model.IssueIDKey, issueID))
	}
	return &fixspec, nil
}

// List parses every <issueId>.json in the directory. Unreadable or malformed
// files are skipped with a warning; a missing directory is an empty store.
func (r *FixspecRepository) List(ctx context.Context, filter interfaces.FixspecFilter) ([]*model.Fixspec, error) {
	dirEntries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*model.Fixspec{}, nil
		}
		return nil, goerr.Wrap(err, "failed to read fixspec directory", goerr.V("dir", r.dir))
	}

	logger := logging.From(ctx)
	specs := make([]*model.Fixspec, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != fileExt {
			continue
		}

		data, err := os.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			logger.Warn("skipping unreadable fixspec file", "file", name, "error", err.Error())
			continue
		}
		var fixspec model.Fixspec
		if err := json.Unmarshal(data, &fixspec); err != nil {
			logger.Warn("skipping malformed fixspec file", "file", name, "error", err.Error())
			continue
		}
		if filter.Match(&fixspec) {
			specs = append(specs, &fixspec)
		}
	}

	model.SortFixspecs(specs)
	return specs, nil
}

func (r *FixspecRepository) Close() error {
	return nil
}
