package cart

import (
	"context"
	"sync"
	"time"

	"bodega-pos/internal/ledger"
)

// Store keeps one cart per operator and kind between requests.
type Store interface {
	// Load returns the saved cart or a new empty one.
	Load(ctx context.Context, operatorID string, kind ledger.Kind) (*Cart, error)
	Save(ctx context.Context, operatorID string, c *Cart) error
	Delete(ctx context.Context, operatorID string, kind ledger.Kind) error
}

func key(operatorID string, kind ledger.Kind) string {
	return "bodega:cart:" + operatorID + ":" + string(kind)
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is the single-process Store. Entries expire after ttl.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, operatorID string, kind ledger.Kind) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(operatorID, kind)
	entry, ok := s.entries[k]
	if !ok {
		return New(kind), nil
	}
	if s.ttl > 0 && s.now().After(entry.expiresAt) {
		delete(s.entries, k)
		return New(kind), nil
	}
	c := New(kind)
	if err := c.UnmarshalJSON(entry.data); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *MemoryStore) Save(_ context.Context, operatorID string, c *Cart) error {
	data, err := c.MarshalJSON()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key(operatorID, c.Kind())] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, operatorID string, kind ledger.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key(operatorID, kind))
	return nil
}
