package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/circuitdraw/pkg/cache"
	"github.com/matzehuels/circuitdraw/pkg/llm"
	"github.com/matzehuels/circuitdraw/pkg/pipeline"
	"github.com/matzehuels/circuitdraw/pkg/storage"
)

type staticGenerator struct{}

func (staticGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	return "", context.Canceled
}

type testEnv struct {
	srv    *httptest.Server
	images *storage.Local
	dir    string
}

func newTestEnv(t *testing.T, outputDir string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	if outputDir == "" {
		outputDir = filepath.Join(dir, "out")
	}

	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
	images, err := storage.NewLocal(storage.LocalOptions{
		Dir:        filepath.Join(dir, "public"),
		SigningKey: []byte("test-key"),
	})
	if err != nil {
		t.Fatal(err)
	}
	runner.Uploader = images

	s := New(Options{Runner: runner, Images: images, OutputDir: outputDir})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{srv: ts, images: images, dir: dir}
}

func (e *testEnv) post(t *testing.T, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(e.srv.URL+"/generate", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestHome(t *testing.T) {
	env := newTestEnv(t, "")
	resp, err := http.Get(env.srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
	if !bytes.Contains(body, []byte("POST /generate")) {
		t.Errorf("home page missing usage: %s", body)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name string
		gen  llm.Generator
		want bool
	}{
		{"no model", nil, false},
		{"model", staticGenerator{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Runner: pipeline.NewRunner(nil, nil, nil), LLM: tt.gen}
			rec := httptest.NewRecorder()
			New(opts).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var got HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if !got.OK || got.LLM != tt.want {
				t.Errorf("health = %+v, want llm=%v", got, tt.want)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t, "")
	resp, body := env.post(t, `{"query": "esp32 cam", "force_fallback": true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}

	var got GenerateResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Explanation == "" || got.ArduinoCode == "" {
		t.Errorf("missing texts: %+v", got)
	}
	if !strings.Contains(got.ArduinoCode, "ESP32-CAM sketch") {
		t.Errorf("ArduinoCode is not the camera sketch:\n%s", got.ArduinoCode)
	}
	if !strings.HasPrefix(got.ImageURL, "/images/") {
		t.Fatalf("ImageURL = %q", got.ImageURL)
	}

	img, err := http.Get(env.srv.URL + got.ImageURL)
	if err != nil {
		t.Fatal(err)
	}
	defer img.Body.Close()
	data, _ := io.ReadAll(img.Body)
	if img.StatusCode != http.StatusOK {
		t.Fatalf("image status = %d", img.StatusCode)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("image is not a PNG")
	}
}

func TestGenerateBadRequests(t *testing.T) {
	env := newTestEnv(t, "")
	tests := []struct {
		name string
		body string
	}{
		{"empty query", `{"query": ""}`},
		{"blank query", `{"query": "   "}`},
		{"missing query", `{}`},
		{"not json", `query=led`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.post(t, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			var e errorResponse
			if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
				t.Errorf("body = %s, want {\"error\": ...}", body)
			}
		})
	}
}

func TestGenerateRenderFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	env := newTestEnv(t, blocker)

	resp, body := env.post(t, `{"query": "led"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatal(err)
	}
	if e.Error != msgRenderFailed {
		t.Errorf("error = %q, want %q", e.Error, msgRenderFailed)
	}
}

func TestImageSignature(t *testing.T) {
	env := newTestEnv(t, "")
	src := filepath.Join(env.dir, "circuit.png")
	if err := os.WriteFile(src, []byte("\x89PNG fake"), 0644); err != nil {
		t.Fatal(err)
	}
	link, err := env.images.Upload(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	u, _ := url.Parse(link)
	q := u.Query()

	tampered := url.Values{}
	tampered.Set("expires", q.Get("expires"))
	tampered.Set("sig", strings.Repeat("0", len(q.Get("sig"))))

	expired := url.Values{}
	expired.Set("expires", "1")
	expired.Set("sig", q.Get("sig"))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"valid", u.Path + "?" + q.Encode(), http.StatusOK},
		{"bad signature", u.Path + "?" + tampered.Encode(), http.StatusForbidden},
		{"expired", u.Path + "?" + expired.Encode(), http.StatusForbidden},
		{"missing params", u.Path, http.StatusForbidden},
		{"bad name", "/images/..%2Fsecret.png?" + q.Encode(), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(env.srv.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestImagesDisabled(t *testing.T) {
	s := New(Options{Runner: pipeline.NewRunner(nil, nil, nil)})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/abc.png?expires=1&sig=x", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	s := New(Options{Runner: pipeline.NewRunner(nil, nil, nil)})

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin on GET = %q, want *", got)
	}
}

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{Runner: pipeline.NewRunner(nil, nil, nil)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
