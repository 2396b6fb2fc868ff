// Package history records past generations.
//
// Every run of the generation pipeline can be stored as a [Record]: the
// request, the netlist, the explanation and firmware, and where the image
// went. Records expire after a TTL.
//
// Two [Store] backends are provided:
//   - [FileStore]: JSON files under ~/.config/circuitdraw/history, for the CLI
//   - [MongoStore]: a MongoDB collection with a TTL index, for the service
//
// # Usage
//
//	store, err := history.NewFileStore("")
//	if err != nil {
//	    return err
//	}
//	rec := history.NewRecord(request, src.Name(), nl)
//	rec.ImagePath = out
//	store.Put(ctx, rec)
//
//	recent, err := store.List(ctx, 10)
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/circuitdraw/pkg/netlist"
)

// DefaultTTL is how long records are kept.
const DefaultTTL = 30 * 24 * time.Hour

// ErrInvalidID is returned for ids that are not UUIDs.
var ErrInvalidID = errors.New("invalid record id")

// Record is one generation.
type Record struct {
	ID          string           `json:"id" bson:"_id"`
	Request     string           `json:"request" bson:"request"`
	Source      string           `json:"source" bson:"source"`
	Netlist     *netlist.Netlist `json:"netlist" bson:"netlist"`
	Explanation string           `json:"explanation,omitempty" bson:"explanation,omitempty"`
	Firmware    string           `json:"firmware,omitempty" bson:"firmware,omitempty"`
	ImagePath   string           `json:"image_path,omitempty" bson:"image_path,omitempty"`
	ImageURL    string           `json:"image_url,omitempty" bson:"image_url,omitempty"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
	ExpiresAt   time.Time        `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
}

// NewRecord creates a record with a fresh id that expires after [DefaultTTL].
func NewRecord(request, source string, nl *netlist.Netlist) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        uuid.NewString(),
		Request:   request,
		Source:    source,
		Netlist:   nl,
		CreatedAt: now,
		ExpiresAt: now.Add(DefaultTTL),
	}
}

// IsExpired reports whether the record has passed its expiry.
// A zero expiry never expires.
func (r *Record) IsExpired() bool {
	return !r.ExpiresAt.IsZero() && time.Now().After(r.ExpiresAt)
}

// Store persists records.
type Store interface {
	// Get returns a record by id, or nil, nil if it does not exist or expired.
	Get(ctx context.Context, id string) (*Record, error)
	// Put inserts or replaces a record.
	Put(ctx context.Context, rec *Record) error
	// List returns up to limit unexpired records, newest first.
	// A limit of zero or less returns all of them.
	List(ctx context.Context, limit int) ([]*Record, error)
	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error
	// Cleanup removes expired records and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
	// Close releases the backend.
	Close() error
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}
