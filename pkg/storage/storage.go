// Package storage publishes rendered images.
//
// An [Uploader] takes a local file and returns a URL under which it can be
// fetched, or "" when publishing is disabled. [Noop] never publishes;
// [Local] copies images into a public directory served by circuitdraw's
// HTTP service and hands out HMAC-signed links that expire.
package storage

import "context"

// Uploader publishes a file and returns its public URL.
type Uploader interface {
	// Name identifies the uploader in logs and hooks.
	Name() string
	// Upload publishes the file at path. An empty URL with a nil error
	// means the uploader intentionally published nothing.
	Upload(ctx context.Context, path string) (string, error)
}

// Noop is an uploader that publishes nothing.
type Noop struct{}

// Name returns "noop".
func (Noop) Name() string { return "noop" }

// Upload returns "".
func (Noop) Upload(ctx context.Context, path string) (string, error) { return "", nil }

var _ Uploader = Noop{}
