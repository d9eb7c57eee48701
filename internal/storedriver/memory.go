package storedriver

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/thebtf/auto-memory-bridge/pkg/models"
)

// MemoryStore is an in-process Store used by bridge tests and as the
// default backend when no database URL is configured.
type MemoryStore struct {
	mu   sync.Mutex
	byNS map[string]map[string]models.StoreEntry // namespace -> key -> entry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byNS: make(map[string]map[string]models.StoreEntry)}
}

func (m *MemoryStore) ns(namespace string) map[string]models.StoreEntry {
	if m.byNS[namespace] == nil {
		m.byNS[namespace] = make(map[string]models.StoreEntry)
	}
	return m.byNS[namespace]
}

// Store implements Store.
func (m *MemoryStore) Store(_ context.Context, namespace string, entry models.StoreEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	m.ns(namespace)[entry.Key] = entry
	return entry.ID, nil
}

// BulkInsert implements Store, skipping keys that already exist.
func (m *MemoryStore) BulkInsert(_ context.Context, namespace string, entries []models.StoreEntry) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket := m.ns(namespace)
	var inserted []string
	for _, e := range entries {
		if _, exists := bucket[e.Key]; exists {
			continue
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		bucket[e.Key] = e
		inserted = append(inserted, e.ID)
	}
	return inserted, nil
}

// Query implements Store.
func (m *MemoryStore) Query(_ context.Context, opts QueryOptions) ([]models.StoreEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.StoreEntry
	for _, e := range m.ns(opts.Namespace) {
		if opts.MinConfidence > 0 && e.MetadataFloat("confidence") < opts.MinConfidence {
			continue
		}
		if !opts.Since.IsZero() && e.UpdatedAt.Before(opts.Since) {
			continue
		}
		matched = append(matched, e)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

// Search implements Store with a case-insensitive substring match.
func (m *MemoryStore) Search(_ context.Context, namespace, query string, limit int) ([]models.StoreEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.StoreEntry
	needle := strings.ToLower(query)
	for _, e := range m.ns(namespace) {
		if strings.Contains(strings.ToLower(e.Content), needle) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, namespace, key string) (models.StoreEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ns(namespace)[key]
	return e, ok, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ns(namespace), key)
	return nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context, namespace string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ns(namespace)), nil
}

// ListNamespaces implements Store.
func (m *MemoryStore) ListNamespaces(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.byNS))
	for ns := range m.byNS {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out, nil
}

// HealthCheck implements Store and always succeeds.
func (m *MemoryStore) HealthCheck(_ context.Context) error {
	return nil
}
