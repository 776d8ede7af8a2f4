// Copyright (C) 2026 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package vulndb

import (
	"context"
	"errors"
	"math"
	"time"
)

// RetryPolicy decides whether and when a failed request is attempted again.
type RetryPolicy struct {
	// MaxAttempts counts the first request as well.
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	// MaxDelay caps the computed backoff. Zero means no cap.
	MaxDelay  time.Duration
	Retryable func(err error) bool
}

func NewRetryPolicy(maxRetries int, baseDelay time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxRetries + 1,
		BaseDelay:   baseDelay,
		Multiplier:  2,
		Retryable:   IsRetryable,
	}
}

// Next returns the delay before the next attempt, given that attempt requests have
// failed so far (1-based). The second return value is false once the error is final.
func (p RetryPolicy) Next(attempt int, err error) (time.Duration, bool) {
	if err == nil || attempt >= p.MaxAttempts {
		return 0, false
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}
	if !retryable(err) {
		return 0, false
	}

	// the server knows best
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) && rateLimitErr.RetryAfter > 0 {
		return rateLimitErr.RetryAfter, true
	}

	return p.Backoff(attempt), true
}

// Backoff returns BaseDelay * Multiplier^(attempt-1), capped by MaxDelay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	delay := time.Duration(float64(p.BaseDelay) * math.Pow(multiplier, float64(attempt-1)))
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// IsRetryable reports rate limits, network errors, timeouts and 5xx responses.
func IsRetryable(err error) bool {
	var (
		rateLimitErr *RateLimitError
		networkErr   *NetworkError
		timeoutErr   *TimeoutError
		serverErr    *ServerError
	)
	return errors.As(err, &rateLimitErr) ||
		errors.As(err, &networkErr) ||
		errors.As(err, &timeoutErr) ||
		errors.As(err, &serverErr)
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}
