package greeted

import (
	"context"
	"sync"
	"time"

	domainCommand "github.com/AzielCF/piebot/domains/command"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultCapacity = 10000

// MemoryStore keeps greeted chats in a bounded LRU. Entries older than the
// TTL, or evicted by capacity, will be greeted again.
type MemoryStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, struct{}]
}

var _ domainCommand.IGreetedStore = (*MemoryStore)(nil)

// NewMemoryStore builds the store. A ttl of zero disables expiry.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		cache: expirable.NewLRU[string, struct{}](capacity, nil, ttl),
	}
}

func (s *MemoryStore) MarkGreeted(_ context.Context, chatID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Get, unlike Contains, honours the TTL.
	if _, ok := s.cache.Get(chatID); ok {
		return false, nil
	}
	s.cache.Add(chatID, struct{}{})
	return true, nil
}

func (s *MemoryStore) Len(context.Context) int {
	return s.cache.Len()
}

func (s *MemoryStore) Close() error {
	s.cache.Purge()
	return nil
}
