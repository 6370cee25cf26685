package guide

import (
	"context"
	"sync"
)

// Cache maps an exact question to the answer computed for it. Entries are never
// replaced or evicted.
type Cache interface {
	Get(ctx context.Context, question string) (string, bool, error)
	// PutIfAbsent stores answer unless question already has one, and returns
	// whichever answer is now cached.
	PutIfAbsent(ctx context.Context, question, answer string) (string, error)
	Len(ctx context.Context) (int, error)
}

// MemoryCache lives for the lifetime of the process and grows without bound.
type MemoryCache struct {
	mu      sync.RWMutex
	answers map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{answers: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, question string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	answer, ok := c.answers[question]
	return answer, ok, nil
}

func (c *MemoryCache) PutIfAbsent(_ context.Context, question, answer string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.answers[question]; ok {
		return existing, nil
	}
	c.answers[question] = answer
	return answer, nil
}

func (c *MemoryCache) Len(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.answers), nil
}
