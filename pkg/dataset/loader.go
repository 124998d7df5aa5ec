package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/scarnyc/spacewalks/pkg/config"
)

// Loader fetches the dataset from its primary source and keeps a
// last-known-good snapshot to fall back on.
type Loader struct {
	Primary       Source
	SnapshotPath  string
	WriteSnapshot bool
}

func NewLoader(cfg config.DatasetConfig) *Loader {
	if cfg.Path != "" {
		return &Loader{
			Primary:      &FileSource{Path: cfg.Path},
			SnapshotPath: cfg.SnapshotPath,
		}
	}

	return &Loader{
		Primary:       NewHTTPSource(cfg),
		SnapshotPath:  cfg.SnapshotPath,
		WriteSnapshot: cfg.SnapshotPath != "",
	}
}

func (l *Loader) Load(ctx context.Context) (*Table, error) {
	table, err := l.Primary.Fetch(ctx)
	if err == nil {
		if l.WriteSnapshot {
			if err := WriteSnapshot(l.SnapshotPath, table.Raw()); err != nil {
				logrus.WithError(err).Warn("Failed to write dataset snapshot")
			} else {
				logrus.Debugf("Wrote dataset snapshot to %s", l.SnapshotPath)
			}
		}

		return table, nil
	}

	if l.SnapshotPath == "" || ctx.Err() != nil {
		return nil, fmt.Errorf("failed to load dataset from %s: %w", l.Primary.Name(), err)
	}

	logrus.WithError(err).Warnf("Failed to load dataset from %s, falling back to snapshot %s",
		l.Primary.Name(), l.SnapshotPath)

	snapshot, snapErr := (&FileSource{Path: l.SnapshotPath}).Fetch(ctx)
	if snapErr != nil {
		return nil, errors.Join(
			fmt.Errorf("failed to load dataset from %s: %w", l.Primary.Name(), err),
			fmt.Errorf("failed to load snapshot: %w", snapErr),
		)
	}

	snapshot.FromSnapshot = true

	return snapshot, nil
}
