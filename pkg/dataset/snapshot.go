package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
)

// snappyMagic is the stream identifier chunk that opens every snappy framed stream.
var snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")

// WriteSnapshot stores raw CSV bytes snappy-compressed at path. The file is
// replaced atomically so readers never see a partial snapshot.
func WriteSnapshot(path string, raw []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := snappy.NewBufferedWriter(tmp)
	if _, err := w.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := w.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	return nil
}
