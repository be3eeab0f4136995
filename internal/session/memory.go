package session

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	data    []byte
	expires time.Time
}

// Memory is an in-process store. Sessions are lost on restart.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]memEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Load(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, id)
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.data...), nil
}

// Save stores data and drops expired sessions.
func (m *Memory) Save(_ context.Context, id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
	m.entries[id] = memEntry{data: append([]byte(nil), data...), expires: now.Add(m.ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
