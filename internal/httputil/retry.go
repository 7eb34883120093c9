// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the outbound HTTP transport shared by the
// catalog clients: a per-catalog request gate, a circuit breaker, and an
// optional 429 retry budget.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryBaseDelay is the first backoff after an HTTP 429. Tests override
// it to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

// MaxRetryDelay caps a single backoff, including one requested by the
// server through Retry-After.
var MaxRetryDelay = 2 * time.Minute

// DoWithRetry sends req and retries HTTP 429 up to maxRetries times. Zero
// sends once. wait runs before every attempt so retries stay inside the
// caller's rate gate; nil sends immediately.
//
// The backoff doubles from RetryBaseDelay and never undercuts the server's
// Retry-After. A 429 that survives the budget is returned unread for the
// caller to inspect. Cancelling ctx during a backoff returns ctx.Err().
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, wait func(context.Context) error) (*http.Response, error) {
	maxRetries = max(maxRetries, 0)

	for attempt := 0; ; attempt++ {
		if wait != nil {
			if err := wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= maxRetries {
			return resp, nil
		}

		delay := backoff(attempt, retryAfter(resp.Header.Get("Retry-After"), time.Now()))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// backoff is RetryBaseDelay doubled per attempt, raised to the server's
// hint and capped at MaxRetryDelay.
func backoff(attempt int, hint time.Duration) time.Duration {
	d := RetryBaseDelay << min(attempt, 16)
	if d <= 0 || d > MaxRetryDelay {
		d = MaxRetryDelay
	}
	return min(max(d, hint), MaxRetryDelay)
}

// retryAfter parses a Retry-After value given in seconds or as an HTTP
// date. Unparseable or past values yield zero.
func retryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(at.Sub(now), 0)
	}
	return 0
}
