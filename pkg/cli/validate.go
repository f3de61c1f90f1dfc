package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/cli/config"
	"github.com/secmon-lab/uxlens/pkg/service/logstore"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Strictly validate a canonical JSON array log file",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return goerr.Wrap(config.ErrMissingCanonicalLog, "usage: uxlens validate FILE")
			}

			entries, err := logstore.New(path).Read(ctx, true)
			if err != nil {
				return goerr.Wrap(err, "canonical log validation failed")
			}

			logging.Default().Info("Canonical log validation passed",
				"path", path,
				"entries", len(entries),
			)

			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			_, _ = fmt.Fprintf(w, "%s: %d valid entries\n", path, len(entries))
			return nil
		},
	}
}
