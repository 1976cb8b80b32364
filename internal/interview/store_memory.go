package interview

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default in-process session store. A single RWMutex
// guards the map; each entry carries its own lock so updates for one session
// serialize without blocking other sessions.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memoryEntry
}

type memoryEntry struct {
	mu   sync.Mutex
	sess *Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*memoryEntry)}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &memoryEntry{sess: s.Clone()}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.sess.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*Session) error) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// fn runs on a working copy; the entry only sees a fully applied update.
	working := entry.sess.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.LastActivityAt = time.Now().UTC()
	entry.sess = working
	return working.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) ExpireBefore(_ context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	expired := 0
	for id, entry := range m.sessions {
		entry.mu.Lock()
		stale := entry.sess.LastActivityAt.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			delete(m.sessions, id)
			expired++
		}
	}
	return expired, nil
}

func (m *MemoryStore) ActiveCount(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, entry := range m.sessions {
		entry.mu.Lock()
		if !entry.sess.Finished {
			count++
		}
		entry.mu.Unlock()
	}
	return count, nil
}

func (m *MemoryStore) Close() error { return nil }

// StartJanitor periodically evicts idle sessions until ctx is done. onExpire,
// when set, receives the number of evicted sessions per sweep.
func StartJanitor(ctx context.Context, store Store, ttl, interval time.Duration, onExpire func(int)) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := store.ExpireBefore(ctx, ttl)
				if err == nil && n > 0 && onExpire != nil {
					onExpire(n)
				}
			}
		}
	}()
}
