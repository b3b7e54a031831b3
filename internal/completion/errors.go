package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// --- Error Definitions ---
var (
	ErrServiceUnavailable = errors.New("completion service unavailable: no API key configured")
	ErrEmptyResponse      = errors.New("completion service returned an empty response")
	ErrUnauthorized       = errors.New("completion service rejected the credentials")
	ErrQuotaExceeded      = errors.New("completion service quota or rate limit exceeded")
)

// MalformedOutputError reports that the model kept producing output that
// could not be parsed into the requested schema, even after repair and
// corrective retries.
type MalformedOutputError struct {
	Attempts int    // completions consumed, including the first
	Raw      string // last raw model output
	LastErr  error  // last parse failure
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("completion output malformed after %d attempt(s): %v", e.Attempts, e.LastErr)
}

func (e *MalformedOutputError) Unwrap() error { return e.LastErr }

// translateTransportError maps provider failures onto the package sentinels
// so callers can make retry decisions with errors.Is. Errors it does not
// recognize pass through unchanged.
func translateTransportError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "api key") || strings.Contains(msg, "401"):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "quota") || strings.Contains(msg, "429"):
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return err
}

// fatal reports whether an error class must never be retried.
func fatal(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
