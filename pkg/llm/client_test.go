package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/circuitdraw/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		APIKey:   "test-key",
		BaseURL:  srv.URL,
		Attempts: 3,
		Backoff:  time.Millisecond,
	})
}

func reply(w http.ResponseWriter, texts ...string) {
	parts := make([]map[string]string, len(texts))
	for i, t := range texts {
		parts[i] = map[string]string{"text": t}
	}
	json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"role": "model", "parts": parts}},
		},
	})
}

func TestGenerate(t *testing.T) {
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		reply(w, "  hello ", "world\n")
	})

	text, err := c.Generate(context.Background(), "be terse", "say hi")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q, want %q", text, "hello world")
	}
	if got.SystemInstruction == nil || got.SystemInstruction.Parts[0].Text != "be terse" {
		t.Errorf("system instruction = %+v", got.SystemInstruction)
	}
	if len(got.Contents) != 1 || got.Contents[0].Role != "user" || got.Contents[0].Parts[0].Text != "say hi" {
		t.Errorf("contents = %+v", got.Contents)
	}
}

func TestGenerateNotConfigured(t *testing.T) {
	c := New(Config{})
	if c.Configured() {
		t.Fatal("client without key should not be configured")
	}
	if _, err := c.Generate(context.Background(), "", "x"); !stderrors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		reply(w, "ok")
	})

	text, err := c.Generate(context.Background(), "", "x")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "ok" || calls.Load() != 3 {
		t.Errorf("text = %q after %d calls", text, calls.Load())
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	_, err := c.Generate(context.Background(), "", "x")
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("err = %v, want UNAUTHORIZED", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGenerateEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"no candidates", `{"candidates":[]}`, ""},
		{"blank text", `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`, ""},
		{"blocked", `{"promptFeedback":{"blockReason":"SAFETY"}}`, errors.ErrCodeUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			_, err := c.Generate(context.Background(), "", "x")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.code == "" && !stderrors.Is(err, ErrEmptyResponse) {
				t.Errorf("err = %v, want ErrEmptyResponse", err)
			}
			if tt.code != "" && !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestGenerateContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, "late")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Generate(ctx, "", "x"); !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
