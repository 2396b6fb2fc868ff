package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/circuitdraw/pkg/errors"
	"github.com/matzehuels/circuitdraw/pkg/llm"
	"github.com/matzehuels/circuitdraw/pkg/pipeline"
)

// Error messages returned to clients.
const (
	msgRenderFailed   = "Failed to render image"
	msgGenerateFailed = "Failed to generate circuit"
	msgEmptyQuery     = "query is required"
	msgBadBody        = "request body must be JSON {query, force_fallback?}"
)

const homePage = `<!doctype html>
<html><head><title>circuitdraw</title></head>
<body>
<h3>Text-to-Circuit API</h3>
<p>POST /generate with JSON <code>{"query": "...", "force_fallback": false}</code></p>
<p>Response: <code>{"image_url", "explanation", "arduino_code"}</code></p>
</body></html>
`

// GenerateRequest is the POST /generate body.
type GenerateRequest struct {
	Query         string `json:"query"`
	ForceFallback bool   `json:"force_fallback,omitempty"`
}

// GenerateResponse is the POST /generate reply.
type GenerateResponse struct {
	ImageURL    string `json:"image_url"`
	Explanation string `json:"explanation"`
	ArduinoCode string `json:"arduino_code"`
}

// HealthResponse is the GET /health reply.
type HealthResponse struct {
	OK  bool `json:"ok"`
	LLM bool `json:"llm"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, homePage)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{OK: true, LLM: llm.Available(s.gen)})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, msgEmptyQuery)
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Request:       req.Query,
		ForceFallback: req.ForceFallback,
		OutputDir:     s.outputDir,
		Logger:        s.logger,
	})
	if err != nil {
		status, msg := classify(err)
		s.logger.Error("generate failed", "status", status, "err", err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		ImageURL:    res.ImageURL,
		Explanation: res.Explanation,
		ArduinoCode: res.Firmware,
	})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		writeError(w, http.StatusNotFound, "image hosting is disabled")
		return
	}
	q := r.URL.Query()
	path, err := s.images.Verify(chi.URLParam(r, "name"), q.Get("expires"), q.Get("sig"))
	if err != nil {
		status, msg := classify(err)
		writeError(w, status, msg)
		return
	}
	w.Header().Set("Cache-Control", "private, max-age=300")
	http.ServeFile(w, r, path)
}

// classify maps an error onto an HTTP status and a client-safe message.
func classify(err error) (int, string) {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	case errors.Is(err, errors.ErrCodeRenderFailed):
		return http.StatusInternalServerError, msgRenderFailed
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidNetlist,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest, errors.UserMessage(err)
	case errors.ErrCodeForbidden:
		return http.StatusForbidden, errors.UserMessage(err)
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound, "not found"
	}
	return http.StatusInternalServerError, msgGenerateFailed
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
