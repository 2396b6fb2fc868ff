// Package httputil provides HTTP helpers for upstream API clients.
//
// # Overview
//
// The LLM client is the only component that talks to a remote HTTP API.
// This package holds the parts of that client that are not specific to
// one provider:
//
//   - [Retry]: automatic retry with exponential backoff
//   - [CheckResponse]: classification of HTTP status codes into errors
//
// # Retry
//
// [Retry] re-runs an operation while it fails with a [RetryableError]:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckResponse(resp)
//	})
//
// Any other error stops the loop immediately. The delay doubles after each
// attempt, a 429 with Retry-After waits at least as long as the server asks
// (capped at [MaxRetryAfter]), and the loop honours context cancellation.
//
// # Status Classification
//
// [CheckResponse] maps responses onto the structured error codes of
// pkg/errors and marks transient ones retryable:
//
//   - 2xx: nil
//   - 401/403: UNAUTHORIZED / FORBIDDEN
//   - 404: NOT_FOUND
//   - 429: RATE_LIMITED (retryable)
//   - 5xx: UPSTREAM_UNAVAILABLE (retryable)
package httputil
