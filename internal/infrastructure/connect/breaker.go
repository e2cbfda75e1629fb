// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package connect

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/uninett/connect-import-service/internal/metrics"
)

const breakerName = "adobe-connect-api"

// BreakerConfig configures the circuit breaker shared by all clients of a
// Factory. The breaker only counts transport and parse failures; it never
// retries, it only fails fast while Connect is down. Requests abandoned by
// their caller are not counted against Connect.
type BreakerConfig struct {
	Enabled bool
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval after which failure counts reset while closed.
	Interval time.Duration
	// Timeout spent open before probing again.
	Timeout time.Duration
	// MinRequests before the failure ratio is considered.
	MinRequests uint32
	// FailureRatio at or above which the breaker opens.
	FailureRatio float64
}

// DefaultBreakerConfig returns the breaker settings used when none are configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

func newBreaker(config BreakerConfig) *gobreaker.CircuitBreaker[*exchange] {
	if !config.Enabled {
		return nil
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[*exchange](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		IsExcluded: func(err error) bool {
			return errors.Is(err, errCallerGone)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= config.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Connect circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

// errCallerGone marks a request that failed because the caller's context
// ended, not because Connect did.
var errCallerGone = errors.New("request abandoned by caller")

// callerGone reports whether err came from the caller's own context ending.
// A client timeout also matches context.DeadlineExceeded, so the check is on
// ctx itself.
func callerGone(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
