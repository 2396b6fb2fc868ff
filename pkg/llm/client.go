package llm

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/circuitdraw/pkg/buildinfo"
	"github.com/matzehuels/circuitdraw/pkg/errors"
	"github.com/matzehuels/circuitdraw/pkg/httputil"
	"github.com/matzehuels/circuitdraw/pkg/observability"
)

const (
	DefaultModel    = "gemini-2.5-flash"
	DefaultBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTimeout  = 60 * time.Second
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = stderrors.New("llm: GEMINI_API_KEY not configured")

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = stderrors.New("llm: empty response")

// Generator produces text from a system instruction and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Config holds client settings. Zero values select the defaults above.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	Attempts   int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client is a Gemini generateContent client. It is safe for concurrent use.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	attempts int
	backoff  time.Duration
	http     *http.Client
	logger   *log.Logger
}

// New creates a client. A client without an API key is valid but every
// call fails with [ErrNotConfigured].
func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		model:    cfg.Model,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/models/" + url.PathEscape(cfg.Model) + ":generateContent",
		attempts: cfg.Attempts,
		backoff:  cfg.Backoff,
		http:     cfg.HTTPClient,
		logger:   cfg.Logger,
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate sends system and user to the model and returns the reply text,
// trimmed of surrounding whitespace.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: user}}}},
	}
	if system != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var out generateResponse
	start := time.Now()
	err = httputil.Retry(ctx, c.attempts, c.backoff, func() error {
		return c.post(ctx, body, &out)
	})
	if err != nil {
		c.logger.Debug("generate failed", "model", c.model, "duration", time.Since(start), "err", err)
		return "", err
	}

	if len(out.Candidates) == 0 {
		if reason := out.PromptFeedback.BlockReason; reason != "" {
			return "", errors.New(errors.ErrCodeUpstream, "prompt blocked: %s", reason)
		}
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	c.logger.Debug("generate", "model", c.model, "chars", len(text), "duration", time.Since(start))
	return text, nil
}

func (c *Client) post(ctx context.Context, body []byte, out *generateResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "request %s", host)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	c.logger.Debug("response", "status", httputil.Status(resp.StatusCode), "duration", time.Since(start))

	if err := httputil.CheckResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeUpstream, err, "decode response")
	}
	return nil
}

var _ Generator = (*Client)(nil)

// Available reports whether gen can be called. Generators that expose
// Configured, such as [*Client], are asked; others are assumed ready.
func Available(gen Generator) bool {
	if gen == nil {
		return false
	}
	if c, ok := gen.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}
