package httputil

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/circuitdraw/pkg/errors"
)

// maxErrorBody bounds how much of an error response is kept in messages.
const maxErrorBody = 512

// CheckResponse returns nil for 2xx responses and a structured error
// otherwise. Rate limits and server errors are wrapped in [RetryableError].
// It reads (but does not close) the body of failed responses.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "upstream rejected credentials: %s", msg)
	case code == http.StatusForbidden:
		return errors.New(errors.ErrCodeForbidden, "upstream denied access: %s", msg)
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "upstream resource not found: %s", msg)
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &RetryableError{Err: &errors.RateLimitedError{RetryAfter: retryAfter, Message: msg}}
	case code >= 500:
		return &RetryableError{Err: errors.New(errors.ErrCodeUpstream, "upstream returned %d: %s", code, msg)}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "upstream returned %d: %s", code, msg)
	}
}

// Status formats a status code for log fields.
func Status(code int) string {
	return fmt.Sprintf("%d %s", code, http.StatusText(code))
}
