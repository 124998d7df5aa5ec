package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/scarnyc/spacewalks/pkg/config"
	"github.com/scarnyc/spacewalks/pkg/metrics"
	"github.com/scarnyc/spacewalks/pkg/service"
)

// Launch listens on the configured address and serves until ctx is done.
func Launch(ctx context.Context, cfg *config.Config, svc *service.EVAService, m *metrics.Metrics) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Address, err)
	}

	return Serve(ctx, ln, cfg, svc, m)
}

// Serve runs the dashboard on ln, together with the dataset refresher when a
// refresh interval is configured. It returns once the server has shut down
// and the refresher has stopped.
func Serve(ctx context.Context, ln net.Listener, cfg *config.Config, svc *service.EVAService, m *metrics.Metrics) error {
	app, err := NewApp(cfg, svc, m)
	if err != nil {
		ln.Close()

		return err
	}

	group, ctx := errgroup.WithContext(ctx)

	if interval := cfg.Dataset.RefreshInterval.Duration; interval > 0 {
		group.Go(func() error {
			return svc.RunRefresher(ctx, interval)
		})
	}

	group.Go(func() error {
		<-ctx.Done()

		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout.Duration); err != nil {
			logrus.Errorf("Failed to gracefully shutdown dashboard server: %v", err)
		}

		// Unblocks Listener when shutdown raced ahead of it.
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logrus.Debugf("Failed to close listener: %v", err)
		}

		return nil
	})

	group.Go(func() error {
		logrus.Infof("Serving dashboard on %s", ln.Addr())

		if err := app.Listener(ln); err != nil {
			return fmt.Errorf("failed to serve dashboard: %w", err)
		}

		return nil
	})

	return group.Wait()
}
