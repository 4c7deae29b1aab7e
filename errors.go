package ragjudge

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors.
var (
	ErrNoRecords        = errors.New("no records")
	ErrIncompleteRecord = errors.New("record is missing a required field")
	ErrNotFound         = errors.New("not found")
	ErrAccessDenied     = errors.New("access denied")
)

// ConfigError reports missing or invalid configuration. It is never retried.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// AuthError reports a judge call rejected because of bad credentials or
// missing permissions. It is never retried.
type AuthError struct {
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("authentication failed: %v", e.Err)
	}
	return fmt.Sprintf("authentication failed (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// RateLimitError reports a throttled call. RetryAfter is the wait the
// server asked for, or zero if it did not say.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// RequestError is returned once every attempt of a judge request has failed.
// Err is the error from the final attempt.
type RequestError struct {
	Attempts int
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must not be retried.
func IsFatal(err error) bool {
	var authErr *AuthError
	var cfgErr *ConfigError
	return errors.As(err, &authErr) || errors.As(err, &cfgErr)
}

// ParseRetryAfter parses a Retry-After header value given either as
// delay-seconds or as an HTTP date relative to now. It returns zero when
// the value is empty or invalid.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
