package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/cli/config"
	httpctrl "github.com/secmon-lab/uxlens/pkg/controller/http"
	"github.com/secmon-lab/uxlens/pkg/service/classifier"
	"github.com/secmon-lab/uxlens/pkg/service/worker"
	"github.com/secmon-lab/uxlens/pkg/usecase"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
	"github.com/secmon-lab/uxlens/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var maxUploadBytes int64
	var repoCfg config.Repository
	var rulesCfg config.Rules
	var canonicalCfg config.CanonicalLog
	var slackCfg config.Slack
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("UXLENS_ADDR"),
			Destination: &addr,
		},
		&cli.Int64Flag{
			Name:        "max-upload-bytes",
			Usage:       "Maximum request body size of uploads",
			Value:       32 << 20,
			Sources:     cli.EnvVars("UXLENS_MAX_UPLOAD_BYTES"),
			Destination: &maxUploadBytes,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, rulesCfg.Flags()...)
	flags = append(flags, canonicalCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Serve configuration",
				"repository", repoCfg,
				"canonical_log", canonicalCfg,
				"slack", slackCfg,
				"sentry", sentryCfg,
			)

			sentryCfg.SetRelease(version)
			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize fixspec store")
			}
			defer safe.Close(ctx, repo)

			// stable IDs keep re-reads of the canonical log idempotent
			cls, err := rulesCfg.Classifier(classifier.WithStableIDs())
			if err != nil {
				return goerr.Wrap(err, "failed to load detector rules")
			}

			ucOpts := []usecase.Option{usecase.WithClassifier(cls)}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
				logger.Info("Slack notification enabled")
			}

			store, err := canonicalCfg.Configure()
			if err != nil {
				return err
			}
			if store != nil {
				ucOpts = append(ucOpts, usecase.WithLogStore(store))
			}

			uc := usecase.New(repo, ucOpts...)

			var refreshWorker *worker.LogRefreshWorker
			if store != nil && canonicalCfg.Interval() > 0 {
				refreshWorker = worker.NewLogRefreshWorker(store, uc, canonicalCfg.Interval())
				if err := refreshWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start log refresh worker")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithMaxUploadBytes(maxUploadBytes)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if refreshWorker != nil {
					refreshWorker.Stop()
				}
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				if refreshWorker != nil {
					refreshWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
