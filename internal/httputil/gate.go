// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Request outcomes reported to a Gate's observer.
const (
	OutcomeOK          = "ok"
	OutcomeHTTPError   = "http_error"
	OutcomeNetwork     = "network_error"
	OutcomeRateLimited = "rate_limited"
	OutcomeCircuitOpen = "circuit_open"
)

// StatusError is returned for responses the gate treats as catalog failures
// (HTTP 429 after retries and 5xx). The body has already been closed.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

// GateConfig configures one catalog's gate.
type GateConfig struct {
	// Name identifies the catalog in breaker state and metrics.
	Name string

	// Interval is the minimum gap between consecutive requests.
	Interval time.Duration

	// MaxRetries is the 429 retry budget. Zero sends each request once.
	MaxRetries int

	// BreakerFailures opens the circuit after this many consecutive failures.
	// Zero disables the breaker.
	BreakerFailures uint32

	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration
}

// Gate serializes access to one catalog. The limiter has burst 1, so
// concurrent callers queue in Wait instead of bursting. A Gate is meant to
// be shared by every client of the same catalog within a process.
type Gate struct {
	name       string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	maxRetries int

	// Observe, when set, is called once per Do with the request outcome.
	Observe func(catalog, outcome string)
}

// NewGate creates a gate from cfg.
func NewGate(cfg GateConfig) *Gate {
	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}
	g := &Gate{
		name:       cfg.Name,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: cfg.MaxRetries,
	}
	if cfg.BreakerFailures > 0 {
		threshold := cfg.BreakerFailures
		g.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: 1,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
		})
	}
	return g
}

// Name returns the catalog name.
func (g *Gate) Name() string { return g.name }

// Wait blocks until the next request slot or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Do sends req through the rate gate and the circuit breaker. Network
// errors, 5xx responses, and a 429 that survives the retry budget count as
// failures and are returned as errors; any other response (including 404)
// is returned for the caller to inspect.
func (g *Gate) Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	call := func() (*http.Response, error) {
		resp, err := DoWithRetry(ctx, client, req, g.maxRetries, g.Wait)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode}
		}
		return resp, nil
	}

	var (
		resp *http.Response
		err  error
	)
	if g.breaker != nil {
		resp, err = g.breaker.Execute(call)
	} else {
		resp, err = call()
	}
	g.observe(resp, err)
	return resp, err
}

func (g *Gate) observe(resp *http.Response, err error) {
	if g.Observe == nil {
		return
	}
	var se *StatusError
	switch {
	case err == nil && resp != nil && resp.StatusCode == http.StatusOK:
		g.Observe(g.name, OutcomeOK)
	case err == nil:
		g.Observe(g.name, OutcomeHTTPError)
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		g.Observe(g.name, OutcomeCircuitOpen)
	case errors.As(err, &se) && se.Code == http.StatusTooManyRequests:
		g.Observe(g.name, OutcomeRateLimited)
	case errors.As(err, &se):
		g.Observe(g.name, OutcomeHTTPError)
	default:
		g.Observe(g.name, OutcomeNetwork)
	}
}
