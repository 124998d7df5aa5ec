package dataset

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang/snappy"
	"github.com/sirupsen/logrus"

	"github.com/scarnyc/spacewalks/pkg/config"
)

// Source produces a complete table.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*Table, error)
}

type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

type HTTPSource struct {
	URL        string
	UserAgent  string
	Client     *http.Client
	Retries    int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

func NewHTTPSource(cfg config.DatasetConfig) *HTTPSource {
	return &HTTPSource{
		URL:        cfg.URL,
		UserAgent:  cfg.UserAgent,
		Client:     NewHTTPClient(cfg.Timeout.Duration),
		Retries:    cfg.Retries,
		Backoff:    cfg.Backoff.Duration,
		MaxBackoff: cfg.MaxBackoff.Duration,
	}
}

func (s *HTTPSource) Name() string {
	return s.URL
}

func (s *HTTPSource) Fetch(ctx context.Context) (*Table, error) {
	var body []byte

	attempt := 0
	err := Retry(ctx, s.Retries, s.Backoff, s.MaxBackoff, func() error {
		attempt++

		b, err := s.get(ctx)
		if err != nil {
			logrus.WithError(err).Debugf("Dataset fetch attempt %d/%d failed", attempt, s.Retries)
			return err
		}

		body = b

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.URL, err)
	}

	return Decode(bytes.NewReader(body), s.URL)
}

func (s *HTTPSource) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, permanent(err)
	}

	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)

		statusErr := &StatusError{URL: s.URL, StatusCode: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, permanent(statusErr)
		}

		return nil, statusErr
	}

	return io.ReadAll(resp.Body)
}

// FileSource reads a local CSV, either plain or a snappy framed snapshot.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string {
	return s.Path
}

func (s *FileSource) Fetch(_ context.Context) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)

	var r io.Reader = br
	if magic, _ := br.Peek(len(snappyMagic)); bytes.Equal(magic, snappyMagic) {
		r = snappy.NewReader(br)
	}

	return Decode(r, s.Path)
}
