package checkpoint

import (
	"context"
	"sort"
	"sync"

	"loom/internal/session"
)

// MemoryStore keeps encoded snapshots in process memory. Snapshots are stored
// as serialized bytes so a Load never aliases the engine's working state and
// repeated Loads without an intervening Save are bitwise-identical.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewMemoryStore constructs an empty in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]byte)}
}

// Save overwrites the snapshot for the state's session id.
func (m *MemoryStore) Save(_ context.Context, state *session.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.snapshots[state.SessionID] = data
	m.mu.Unlock()
	return nil
}

// Load returns the latest snapshot for the session.
func (m *MemoryStore) Load(_ context.Context, sessionID string) (*session.State, error) {
	m.mu.RLock()
	data, ok := m.snapshots[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeState(data)
}

// List returns every known session snapshot, newest first by update time.
func (m *MemoryStore) List(_ context.Context) ([]*session.State, error) {
	m.mu.RLock()
	encoded := make([][]byte, 0, len(m.snapshots))
	for _, data := range m.snapshots {
		encoded = append(encoded, data)
	}
	m.mu.RUnlock()

	states := make([]*session.State, 0, len(encoded))
	for _, data := range encoded {
		state, err := decodeState(data)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		return states[i].UpdatedAt.After(states[j].UpdatedAt)
	})
	return states, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }
