package cli

import (
	"context"
	"strings"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/repository/firestore"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var collectionPrefix string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes of the fixspec store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("UXLENS_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("UXLENS_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "collection-prefix",
				Usage:       "Prefix of the fixspec collection name",
				Sources:     cli.EnvVars("UXLENS_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &collectionPrefix,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"dryRun", dryRun)

			indexConfig := getIndexConfig(collectionPrefix)

			client, err := fireconf.New(ctx, projectID, databaseOrDefault(databaseID), indexConfig,
				fireconf.WithLogger(logger),
				fireconf.WithDryRun(dryRun),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
				current, err := client.Import(ctx, collectionNames(indexConfig)...)
				if err != nil {
					return goerr.Wrap(err, "failed to import current indexes")
				}
				diff, err := client.DiffConfigs(current)
				if err != nil {
					return goerr.Wrap(err, "failed to diff index configuration")
				}

				changes := planChanges(diff)
				if len(changes) == 0 {
					logger.Info("No changes required")
					return nil
				}
				for _, ch := range changes {
					logger.Info("Migration step",
						"collection", ch.collection,
						"operation", ch.operation,
						"fields", ch.fields)
				}
				return nil
			}

			logger.Info("Applying migrations")
			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			logger.Info("Migrations applied successfully")
			return nil
		},
	}
}

// databaseOrDefault maps an empty database ID to Firestore's default database
func databaseOrDefault(id string) string {
	if id == "" {
		return "(default)"
	}
	return id
}

func collectionNames(cfg *fireconf.Config) []string {
	names := make([]string, 0, len(cfg.Collections))
	for _, c := range cfg.Collections {
		names = append(names, c.Name)
	}
	return names
}

type indexChange struct {
	collection string
	operation  string
	fields     string
}

// planChanges flattens a fireconf diff into one entry per index to add or delete
func planChanges(diff *fireconf.DiffResult) []indexChange {
	var changes []indexChange
	for _, col := range diff.Collections {
		for _, idx := range col.IndexesToAdd {
			changes = append(changes, indexChange{collection: col.Name, operation: "create index", fields: indexFields(idx)})
		}
		for _, idx := range col.IndexesToDelete {
			changes = append(changes, indexChange{collection: col.Name, operation: "delete index", fields: indexFields(idx)})
		}
		if col.TTLAction != "" {
			changes = append(changes, indexChange{collection: col.Name, operation: "ttl " + strings.ToLower(string(col.TTLAction))})
		}
	}
	return changes
}

func indexFields(idx fireconf.Index) string {
	parts := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		parts = append(parts, f.Path+" "+string(f.Order))
	}
	return strings.Join(parts, ", ")
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig(prefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: firestore.CollectionName(prefix),
				Indexes: []fireconf.Index{
					// List with status filter: status ASC, timestamp DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "status", Order: fireconf.OrderAscending},
							{Path: "timestamp", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
