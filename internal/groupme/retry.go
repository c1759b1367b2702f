package groupme

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// RetryPolicy bounds how often a request is attempted.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetry makes three attempts two seconds apart.
var DefaultRetry = RetryPolicy{Attempts: 3, Delay: 2 * time.Second}

// RetryError is returned once every attempt of a request has failed.
type RetryError struct {
	Purpose  string
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Purpose, e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// StatusError reports a response with an unexpected status code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// do sends the request built by build until it gets an acceptable response
// or the attempts run out. The caller owns the returned response body.
// build is called once per attempt so request bodies are fresh.
func (c *Client) do(ctx context.Context, purpose string, build func(context.Context) (*http.Request, error), ok func(int) bool) (*http.Response, error) {
	attempts := c.retry.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: build request: %w", purpose, err)
		}

		resp, err := c.http.Do(req)
		switch {
		case err != nil:
			lastErr = err
			c.log.Error("request attempt failed", "purpose", purpose, "attempt", attempt, "error", err)
		case ok(resp.StatusCode):
			return resp, nil
		default:
			resp.Body.Close()
			lastErr = &StatusError{Code: resp.StatusCode}
			c.log.Warn("request attempt failed", "purpose", purpose, "attempt", attempt, "status", resp.StatusCode)
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", purpose, ctx.Err())
		}
		if attempt < attempts {
			if err := sleep(ctx, c.retry.Delay); err != nil {
				return nil, fmt.Errorf("%s: %w", purpose, err)
			}
		}
	}

	c.log.Error("request failed, giving up", "purpose", purpose, "attempts", attempts)
	return nil, &RetryError{Purpose: purpose, Attempts: attempts, Err: lastErr}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isOK(code int) bool {
	return code >= 200 && code < 300
}

// isOKOrNotModified also accepts 304, which GroupMe returns for an
// empty page of messages.
func isOKOrNotModified(code int) bool {
	return isOK(code) || code == http.StatusNotModified
}
