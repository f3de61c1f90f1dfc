package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/interfaces"
	"github.com/secmon-lab/uxlens/pkg/repository/filesystem"
	"github.com/secmon-lab/uxlens/pkg/repository/firestore"
	"github.com/secmon-lab/uxlens/pkg/repository/memory"
	"github.com/secmon-lab/uxlens/pkg/repository/storage"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Fixspec store backends
const (
	BackendFilesystem = "fs"
	BackendMemory     = "memory"
	BackendFirestore  = "firestore"
	BackendGCS        = "gcs"
)

// Repository holds CLI flags for the fixspec store backend
type Repository struct {
	backend    string
	dir        string
	projectID  string
	databaseID string
	bucket     string
	prefix     string
}

func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "fixspec-backend",
			Usage:       "Fixspec store backend (fs, memory, firestore or gcs)",
			Category:    "Fixspec store",
			Value:       BackendFilesystem,
			Sources:     cli.EnvVars("UXLENS_FIXSPEC_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "fixspec-dir",
			Usage:       "Directory of fixspec files (fs backend)",
			Category:    "Fixspec store",
			Value:       "fixspecs",
			Sources:     cli.EnvVars("UXLENS_FIXSPEC_DIR"),
			Destination: &r.dir,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (firestore backend)",
			Category:    "Fixspec store",
			Sources:     cli.EnvVars("UXLENS_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Fixspec store",
			Sources:     cli.EnvVars("UXLENS_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket (gcs backend)",
			Category:    "Fixspec store",
			Sources:     cli.EnvVars("UXLENS_GCS_BUCKET"),
			Destination: &r.bucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix in the bucket",
			Category:    "Fixspec store",
			Value:       "fixspecs",
			Sources:     cli.EnvVars("UXLENS_GCS_PREFIX"),
			Destination: &r.prefix,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("dir", r.dir),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
		slog.String("bucket", r.bucket),
		slog.String("prefix", r.prefix),
	)
}

func (r *Repository) Backend() string {
	return r.backend
}

// Configure initializes the fixspec store for the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.FixspecRepository, error) {
	logger := logging.From(ctx)

	switch r.backend {
	case BackendFilesystem:
		logger.Info("Using filesystem fixspec store", "dir", r.dir)
		return filesystem.New(r.dir), nil

	case BackendMemory:
		logger.Info("Using in-memory fixspec store (development mode)")
		return memory.New(), nil

	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingProjectID, "cannot configure firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore fixspec store")
		}
		logger.Info("Using Firestore fixspec store",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendGCS:
		if r.bucket == "" {
			return nil, goerr.Wrap(ErrMissingBucket, "cannot configure gcs backend")
		}
		repo, err := storage.New(ctx, r.bucket, storage.WithPrefix(r.prefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize gcs fixspec store")
		}
		logger.Info("Using Cloud Storage fixspec store", "bucket", r.bucket, "prefix", r.prefix)
		return repo, nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "unknown backend", goerr.V(BackendKey, r.backend))
	}
}
