package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/interfaces"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
	"github.com/secmon-lab/uxlens/pkg/utils/safe"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// FixspecRepository stores one JSON object per issue in a Cloud Storage
// bucket, named <prefix>/<issueId>.json. Writes carry a DoesNotExist
// precondition so the first writer wins.
type FixspecRepository struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.FixspecRepository = &FixspecRepository{}

type Option func(*FixspecRepository)

func WithPrefix(prefix string) Option {
	return func(r *FixspecRepository) {
		r.prefix = strings.Trim(prefix, "/")
	}
}

func New(ctx context.Context, bucket string, opts ...Option) (*FixspecRepository, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	r := &FixspecRepository{client: client, bucket: bucket}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *FixspecRepository) objectName(issueID string) string {
	name := issueID + ".json"
	if r.prefix == "" {
		return name
	}
	return path.Join(r.prefix, name)
}

func (r *FixspecRepository) SaveOnce(ctx context.Context, fixspec *model.Fixspec) (bool, error) {
	if err := fixspec.Validate(); err != nil {
		return false, err
	}

	data, err := json.MarshalIndent(fixspec, "", "  ")
	if err != nil {
		return false, goerr.Wrap(err, "failed to marshal fixspec", goerr.V(model.IssueIDKey, fixspec.IssueID))
	}

	name := r.objectName(fixspec.IssueID)
	obj := r.client.Bucket(r.bucket).Object(name).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		safe.Close(ctx, w)
		return false, goerr.Wrap(err, "failed to write fixspec object", goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) && gErr.Code == http.StatusPreconditionFailed {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to finalize fixspec object", goerr.V("object", name))
	}
	return true, nil
}

func (r *FixspecRepository) Get(ctx context.Context, issueID string) (*model.Fixspec, error) {
	if err := model.ValidateIssueID(issueID); err != nil {
		return nil, err
	}
	return r.read(ctx, r.objectName(issueID))
}

func (r *FixspecRepository) read(ctx context.Context, name string) (*model.Fixspec, error) {
	reader, err := r.client.Bucket(r.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(model.ErrFixspecNotFound, "fixspec not found", goerr.V("object", name))
		}
		return nil, goerr.Wrap(err, "failed to open fixspec object", goerr.V("object", name))
	}
	defer safe.Close(ctx, reader)

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read fixspec object", goerr.V("object", name))
	}

	var fixspec model.Fixspec
	if err := json.Unmarshal(data, &fixspec); err != nil {
		return nil, goerr.Wrap(err, "failed to parse fixspec object", goerr.V("object", name))
	}
	return &fixspec, nil
}

// List reads every object under the prefix. Malformed objects are skipped
// with a warning.
func (r *FixspecRepository) List(ctx context.Context, filter interfaces.FixspecFilter) ([]*model.Fixspec, error) {
	query := &storage.Query{}
	if r.prefix != "" {
		query.Prefix = r.prefix + "/"
	}

	logger := logging.From(ctx)
	it := r.client.Bucket(r.bucket).Objects(ctx, query)
	specs := []*model.Fixspec{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list fixspec objects", goerr.V("bucket", r.bucket))
		}
		if !strings.HasSuffix(attrs.Name, ".json") {
			continue
		}

		spec, err := r.read(ctx, attrs.Name)
		if err != nil {
			logger.Warn("skipping unreadable fixspec object", "object", attrs.Name, "error", err.Error())
			continue
		}
		if filter.Match(spec) {
			specs = append(specs, spec)
		}
	}

	model.SortFixspecs(specs)
	return specs, nil
}

func (r *FixspecRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
