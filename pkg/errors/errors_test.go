package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
		user string
	}{
		{
			name: "new",
			err:  New(ErrCodeInvalidNetlist, "connection %d has %d endpoints", 2, 3),
			want: "INVALID_NETLIST: connection 2 has 3 endpoints",
			user: "connection 2 has 3 endpoints",
		},
		{
			name: "wrapped",
			err:  Wrap(ErrCodeUpstream, errors.New("connection refused"), "generate netlist"),
			want: "UPSTREAM_UNAVAILABLE: generate netlist: connection refused",
			user: "generate netlist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if got := UserMessage(tt.err); got != tt.user {
				t.Errorf("UserMessage() = %q, want %q", got, tt.user)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeRenderFailed, cause, "write %s", "circuit.png")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestIsAndGetCode(t *testing.T) {
	render := Wrap(ErrCodeRenderFailed, New(ErrCodeUnsupported, "no converter"), "encode pdf")

	tests := []struct {
		name   string
		err    error
		code   Code
		wantIs bool
		want   Code
	}{
		{"matching", New(ErrCodeInvalidInput, "empty query"), ErrCodeInvalidInput, true, ErrCodeInvalidInput},
		{"different", New(ErrCodeInvalidInput, "empty query"), ErrCodeRenderFailed, false, ErrCodeInvalidInput},
		{"outermost wins", render, ErrCodeRenderFailed, true, ErrCodeRenderFailed},
		{"inner hidden", render, ErrCodeUnsupported, false, ErrCodeRenderFailed},
		{"fmt wrapped", fmt.Errorf("render: %w", render), ErrCodeRenderFailed, true, ErrCodeRenderFailed},
		{"plain", errors.New("plain"), ErrCodeInvalidInput, false, ""},
		{"nil", nil, ErrCodeInvalidInput, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.wantIs {
				t.Errorf("Is() = %v, want %v", got, tt.wantIs)
			}
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMessagePlain(t *testing.T) {
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestRateLimitedError(t *testing.T) {
	tests := []struct {
		retryAfter int
		want       string
	}{
		{30, "rate limited: retry after 30 seconds"},
		{0, "rate limited"},
	}
	for _, tt := range tests {
		err := &RateLimitedError{RetryAfter: tt.retryAfter}
		if err.Error() != tt.want {
			t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
		}
		if err.Code() != ErrCodeRateLimited {
			t.Errorf("Code() = %q", err.Code())
		}
	}
}
