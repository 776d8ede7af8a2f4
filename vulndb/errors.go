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
	"fmt"
	"time"
)

// RateLimitError is returned once the retry budget is spent on 403 or 429 responses.
type RateLimitError struct {
	StatusCode int
	RetryAfter time.Duration
	Attempts   int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("nvd rate limit exceeded (status %d) after %d attempts", e.StatusCode, e.Attempts)
}

type NetworkError struct {
	Err      error
	Attempts int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error after %d attempts: %v", e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type TimeoutError struct {
	Err      error
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

type ServerError struct {
	StatusCode int
	Body       string
	Attempts   int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("nvd server error (status %d) after %d attempts: %s", e.StatusCode, e.Attempts, e.Body)
}

// ClientError is any 4xx response that is not a rate limit signal. It is never retried.
type ClientError struct {
	StatusCode int
	Body       string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("nvd rejected the request (status %d): %s", e.StatusCode, e.Body)
}

type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode nvd response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// withAttempts stamps the number of attempts onto retryable errors.
func withAttempts(err error, attempts int) error {
	switch e := err.(type) {
	case *RateLimitError:
		e.Attempts = attempts
	case *NetworkError:
		e.Attempts = attempts
	case *TimeoutError:
		e.Attempts = attempts
	case *ServerError:
		e.Attempts = attempts
	}
	return err
}
