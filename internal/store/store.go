// Package store defines the key/value port the ledger persists through and
// the guard every backend is wrapped in.
package store

import (
	"context"
	"encoding/json"
)

// Store holds whole collections as JSON documents keyed by collection name.
// Writes replace the full document.
type Store interface {
	// Get returns the stored document, or nil when the key was never written.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	// Keys lists the keys currently stored.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Doc is one document of a batch write.
type Doc struct {
	Key   string
	Value json.RawMessage
}

// Batcher is implemented by stores that can write several documents
// atomically: either every document is stored or none is.
type Batcher interface {
	SetMany(ctx context.Context, docs []Doc) error
}
