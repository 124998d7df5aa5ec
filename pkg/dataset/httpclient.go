package dataset

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &http.Client{Timeout: timeout, Transport: tr}
}

// permanentError stops Retry early.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

// Retry calls fn up to attempts times with exponential backoff between
// attempts, capped at maxBackoff.
func Retry(ctx context.Context, attempts int, initial, maxBackoff time.Duration, fn func() error) error {
	if attempts <= 1 {
		return fn()
	}

	d := initial
	for i := range attempts {
		if i > 0 {
			timer := time.NewTimer(d)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		var p *permanentError
		if errors.As(err, &p) || i == attempts-1 {
			return err
		}

		if d < maxBackoff {
			d *= 2
			if d > maxBackoff {
				d = maxBackoff
			}
		}
	}

	return errors.New("retry: exhausted")
}
