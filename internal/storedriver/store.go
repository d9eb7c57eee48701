// Package storedriver defines the abstract capability the bridge
// needs from whatever vector-indexed memory store it's bridging into
// markdown.
package storedriver

import (
	"context"
	"time"

	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

// QueryOptions narrows a Query call the way the bridge's sync path
// needs: entries at or above MinConfidence, updated at or after
// Since, newest first, capped at Limit.
type QueryOptions struct {
	Namespace     string
	MinConfidence float64
	Since         time.Time
	Limit         int
}

// Store is the capability surface the bridge coordinator depends on
// directly: persisting a new entry, batch-importing entries recovered
// from markdown, and querying recent high-confidence entries to sync
// out. Everything else below is surrounding-code surface (status
// endpoints, CLI introspection) the bridge itself never calls.
type Store interface {
	// Store persists a single entry and returns its assigned ID.
	Store(ctx context.Context, namespace string, entry models.StoreEntry) (string, error)

	// BulkInsert persists many entries in one call, skipping any whose
	// Key already exists, and returns the IDs of the entries actually
	// inserted.
	BulkInsert(ctx context.Context, namespace string, entries []models.StoreEntry) ([]string, error)

	// Query returns entries in namespace matching opts.
	Query(ctx context.Context, opts QueryOptions) ([]models.StoreEntry, error)

	// Search performs a free-text/semantic lookup; the bridge itself
	// never calls this, but callers embedding the bridge alongside a
	// retrieval surface do.
	Search(ctx context.Context, namespace, query string, limit int) ([]models.StoreEntry, error)

	// Get returns a single entry by key.
	Get(ctx context.Context, namespace, key string) (models.StoreEntry, bool, error)

	// Delete removes a single entry by key.
	Delete(ctx context.Context, namespace, key string) error

	// Count returns the number of entries in namespace.
	Count(ctx context.Context, namespace string) (int, error)

	// ListNamespaces returns every namespace currently holding entries.
	ListNamespaces(ctx context.Context) ([]string, error)

	// HealthCheck reports whether the backing store is reachable.
	HealthCheck(ctx context.Context) error
}
