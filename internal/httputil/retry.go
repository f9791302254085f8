// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the search and synthesis
// providers.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// MaxRetryDelay caps any single wait, including one requested by Retry-After.
var MaxRetryDelay = 30 * time.Second

const defaultMaxRetries = 3

// maxErrorBody bounds how much of a failed response body ends up in an error.
const maxErrorBody = 512

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests). The delay doubles from RetryBaseDelay each attempt unless the
// server sends a Retry-After header in seconds; either way it is capped at
// MaxRetryDelay.
//
// When maxRetries is 0 the default (3) is used. Requests with a body must
// be replayable (http.NewRequest sets GetBody for in-memory readers). If the
// context is cancelled during a backoff wait the function returns ctx.Err().
// After exhausting retries the last 429 response is returned so the caller
// can inspect it. Any other status, success or not, is returned immediately.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		if attempt >= maxRetries {
			return resp, nil
		}

		backoff := retryDelay(resp, attempt)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// retryDelay honors a Retry-After header given in seconds and otherwise
// backs off exponentially.
func retryDelay(resp *http.Response, attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
	if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs >= 0 {
			d = time.Duration(secs) * time.Second
		}
	}
	if d > MaxRetryDelay {
		d = MaxRetryDelay
	}
	return d
}

// IsSuccess reports whether code is in the 2xx range.
func IsSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

// StatusError builds an error for a non-2xx response, including a bounded
// prefix of the body. It does not close the body.
func StatusError(service string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return fmt.Errorf("%s returned HTTP %d", service, resp.StatusCode)
	}
	return fmt.Errorf("%s returned HTTP %d: %s", service, resp.StatusCode, msg)
}
