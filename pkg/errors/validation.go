package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxRequestLength bounds the free-text circuit request accepted by the service.
const MaxRequestLength = 2000

// ValidateRequest validates a free-text circuit request.
//
// The rules are intentionally loose since the text goes to a language model
// or the keyword builder, never to a shell or filesystem:
//   - No empty or whitespace-only requests
//   - Maximum length of MaxRequestLength characters
//   - No null bytes or control characters other than newlines and tabs
func ValidateRequest(query string) error {
	if strings.TrimSpace(query) == "" {
		return New(ErrCodeInvalidInput, "query cannot be empty")
	}

	if len(query) > MaxRequestLength {
		return New(ErrCodeInvalidInput, "query too long (max %d characters)", MaxRequestLength)
	}

	for _, r := range query {
		if r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "query contains invalid control characters")
		}
	}

	return nil
}

// imageNameRegex matches the names produced by the image publishers:
// a hex or UUID token followed by a known image extension.
var imageNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}\.(png|svg|pdf)$`)

// ValidateImageName validates a published image name taken from a URL path.
// It must be a simple basename so it can be joined onto the public directory.
func ValidateImageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "image name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "image name cannot contain path separators")
	}

	if !imageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPath, "invalid image name: %q", name)
	}

	return nil
}

// ValidatePath validates a relative output path for safety.
// It prevents path traversal when callers join user input onto a base directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
