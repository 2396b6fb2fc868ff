package storage

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/circuitdraw/pkg/errors"
)

// DefaultLinkTTL is how long a signed link stays valid.
const DefaultLinkTTL = time.Hour

// LocalOptions configures a [Local] uploader.
type LocalOptions struct {
	Dir        string        // public directory images are copied into
	BaseURL    string        // external base URL of the HTTP service
	SigningKey []byte        // HMAC key; a random key is generated when empty
	TTL        time.Duration // link lifetime; DefaultLinkTTL when zero
}

// Local publishes images into a directory and signs links to them.
// Links have the form <base>/images/<name>?expires=<unix>&sig=<hex>.
type Local struct {
	dir     string
	baseURL string
	key     []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewLocal creates the public directory if needed and returns the uploader.
func NewLocal(opts LocalOptions) (*Local, error) {
	if opts.Dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "public directory is required")
	}
	if opts.BaseURL != "" {
		if err := errors.ValidateURL(opts.BaseURL); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "create %s", opts.Dir)
	}
	key := opts.SigningKey
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate signing key")
		}
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	return &Local{
		dir:     opts.Dir,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		key:     key,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// Name returns "local".
func (l *Local) Name() string { return "local" }

// Dir returns the public directory.
func (l *Local) Dir() string { return l.dir }

// Upload copies path into the public directory under a random name that
// keeps the file's extension, and returns a signed link to it.
func (l *Local) Upload(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.New()
	name := hex.EncodeToString(id[:]) + strings.ToLower(filepath.Ext(path))
	if err := errors.ValidateImageName(name); err != nil {
		return "", errors.Wrap(errors.ErrCodeUploadFailed, err, "publish %s", path)
	}
	if err := copyFile(path, filepath.Join(l.dir, name)); err != nil {
		return "", errors.Wrap(errors.ErrCodeUploadFailed, err, "publish %s", path)
	}
	return l.URL(name), nil
}

// URL returns a signed link to name valid for the uploader's TTL.
func (l *Local) URL(name string) string {
	expires := l.now().Add(l.ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", l.sign(name, expires))
	return l.baseURL + "/images/" + url.PathEscape(name) + "?" + q.Encode()
}

// Verify checks a link's expiry and signature and returns the published
// file's path. Bad or expired signatures are FORBIDDEN; unknown files are
// NOT_FOUND.
func (l *Local) Verify(name, expires, sig string) (string, error) {
	if err := errors.ValidateImageName(name); err != nil {
		return "", err
	}
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return "", errors.New(errors.ErrCodeForbidden, "invalid expiry")
	}
	want := l.sign(name, exp)
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(sig))) {
		return "", errors.New(errors.ErrCodeForbidden, "invalid signature")
	}
	if l.now().Unix() > exp {
		return "", errors.New(errors.ErrCodeForbidden, "link expired")
	}
	path := filepath.Join(l.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", errors.Wrap(errors.ErrCodeNotFound, err, "image %s", name)
	}
	return path, nil
}

func (l *Local) sign(name string, expires int64) string {
	mac := hmac.New(sha256.New, l.key)
	mac.Write([]byte(name))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// copyFile writes src to dst through a temp file in dst's directory.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

var _ Uploader = (*Local)(nil)
