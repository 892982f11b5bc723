// Package session keeps suspended imports between gate decisions.
// Both stores hold imports as JSON so every Load returns an independent copy.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/stockimport/internal/core"
)

// DefaultJanitorInterval is how often expired imports are purged.
const DefaultJanitorInterval = time.Minute

type entry struct {
	data    []byte
	expires time.Time
}

// MemoryStore is a process-local core.StateStore with expiry.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

var _ core.StateStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store whose imports expire ttl after their last save.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, state *core.ImportState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode import %s: %w", state.ID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[state.ID] = entry{data: data, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*core.ImportState, error) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if ok && !m.now().Before(e.expires) {
		delete(m.entries, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, core.ErrImportNotFound
	}
	return decode(id, e.data)
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len returns the number of stored imports, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// RunJanitor purges expired imports every interval until ctx is cancelled.
func (m *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	slog.Info("import session janitor started", "interval", interval, "ttl", m.ttl)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("import session janitor stopped")
			return
		case <-ticker.C:
			if n := m.purgeExpired(); n > 0 {
				slog.Info("expired import sessions purged", "count", n)
			}
		}
	}
}

func (m *MemoryStore) purgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	purged := 0
	for id, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, id)
			purged++
		}
	}
	return purged
}

func decode(id string, data []byte) (*core.ImportState, error) {
	var state core.ImportState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode import %s: %w", id, err)
	}
	return &state, nil
}
