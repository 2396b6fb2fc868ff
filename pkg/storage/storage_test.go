package storage

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/circuitdraw/pkg/errors"
)

func newLocal(t *testing.T) (*Local, string) {
	t.Helper()
	root := t.TempDir()
	l, err := NewLocal(LocalOptions{
		Dir:        filepath.Join(root, "public"),
		BaseURL:    "http://localhost:8000/",
		SigningKey: []byte("secret"),
	})
	if err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(root, "circuit.png")
	if err := os.WriteFile(src, []byte("png bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	return l, src
}

func parseLink(t *testing.T, link string) (name, expires, sig string) {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatal(err)
	}
	return path.Base(u.Path), u.Query().Get("expires"), u.Query().Get("sig")
}

func TestNoop(t *testing.T) {
	u, err := Noop{}.Upload(context.Background(), "/does/not/exist.png")
	if u != "" || err != nil {
		t.Errorf("Upload() = %q, %v", u, err)
	}
}

func TestNewLocalValidation(t *testing.T) {
	if _, err := NewLocal(LocalOptions{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("missing dir: err = %v", err)
	}
	if _, err := NewLocal(LocalOptions{Dir: t.TempDir(), BaseURL: "ftp://x"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad base url: err = %v", err)
	}
}

func TestLocalUploadAndVerify(t *testing.T) {
	l, src := newLocal(t)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	link, err := l.Upload(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(link, "http://localhost:8000/images/") {
		t.Errorf("link = %q", link)
	}
	name, expires, sig := parseLink(t, link)
	if !strings.HasSuffix(name, ".png") || len(name) != 32+4 {
		t.Errorf("name = %q", name)
	}
	if expires != "1700003600" {
		t.Errorf("expires = %q, want one hour from now", expires)
	}

	p, err := l.Verify(name, expires, sig)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	data, err := os.ReadFile(p)
	if err != nil || string(data) != "png bytes" {
		t.Errorf("published file = %q, %v", data, err)
	}

	tests := []struct {
		name    string
		file    string
		expires string
		sig     string
		now     time.Time
		code    errors.Code
	}{
		{"tampered signature", name, expires, strings.Repeat("0", 64), now, errors.ErrCodeForbidden},
		{"extended expiry", name, "1800000000", sig, now, errors.ErrCodeForbidden},
		{"bad expiry", name, "soon", sig, now, errors.ErrCodeForbidden},
		{"expired", name, expires, sig, now.Add(2 * time.Hour), errors.ErrCodeForbidden},
		{"traversal", "../secret.png", expires, sig, now, errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l.now = func() time.Time { return tt.now }
			if _, err := l.Verify(tt.file, tt.expires, tt.sig); !errors.Is(err, tt.code) {
				t.Errorf("Verify() err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLocalVerifyMissingFile(t *testing.T) {
	l, _ := newLocal(t)
	name, expires, sig := parseLink(t, l.URL("deadbeef.png"))
	if _, err := l.Verify(name, expires, sig); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestLocalUploadMissingSource(t *testing.T) {
	l, _ := newLocal(t)
	_, err := l.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, errors.ErrCodeUploadFailed) {
		t.Errorf("err = %v, want UPLOAD_FAILED", err)
	}
	entries, _ := os.ReadDir(l.Dir())
	if len(entries) != 0 {
		t.Errorf("public dir not empty: %v", entries)
	}
}
