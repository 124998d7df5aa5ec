package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scarnyc/spacewalks/pkg/dataset"
	"github.com/scarnyc/spacewalks/pkg/metrics"
	"github.com/scarnyc/spacewalks/pkg/server"
	"github.com/scarnyc/spacewalks/pkg/service"
	"github.com/scarnyc/spacewalks/pkg/store/sql"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the dataset and serve the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			evaStore, err := sql.NewSQLStore(ctx, cfg.Store)
			if err != nil {
				return err
			}

			defer func() {
				if err := evaStore.Close(); err != nil {
					logrus.WithError(err).Warn("Failed to close store")
				}
			}()

			m := metrics.New(cfg.Version)
			svc := service.NewEVAService(cfg, dataset.NewLoader(cfg.Dataset), evaStore, m)

			if err := svc.Reload(ctx); err != nil {
				return fmt.Errorf("no dataset available: %w", err)
			}

			return server.Launch(ctx, cfg, svc, m)
		},
	}
}
