package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// RunRefresher reloads the dataset every interval and blocks until ctx ends.
// The first run happens one interval after the start and runs never overlap.
// The scheduler is stopped, and any running reload awaited, before it returns.
func (s *EVAService) RunRefresher(ctx context.Context, interval time.Duration) error {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()
	scheduler.WaitForScheduleAll()

	if _, err := scheduler.Every(interval).Do(func() {
		if err := s.Reload(ctx); err != nil && ctx.Err() == nil {
			logrus.WithError(err).Error("Scheduled dataset reload failed, keeping the previous dataset")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule dataset refresh: %w", err)
	}

	scheduler.StartAsync()
	logrus.Infof("Refreshing the dataset every %s", interval)

	<-ctx.Done()
	scheduler.Stop()

	return nil
}
