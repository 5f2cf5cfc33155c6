package storage

import (
	"context"
	"encoding/json"
	"sync"
)

var _ Adapter = (*MemoryAdapter)(nil)

// MemoryAdapter keeps records in process memory. It backs tests and the
// degraded mode when Redis is unavailable.
type MemoryAdapter struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		records: make(map[string][]byte),
	}
}

func (a *MemoryAdapter) Read(_ context.Context, key string, into any) (bool, error) {
	a.mu.RLock()
	data, ok := a.records[key]
	a.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, into); err != nil {
		return false, err
	}

	return true, nil
}

func (a *MemoryAdapter) Write(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.records[key] = data
	a.mu.Unlock()

	return nil
}

func (a *MemoryAdapter) Remove(_ context.Context, key string) error {
	a.mu.Lock()
	delete(a.records, key)
	a.mu.Unlock()

	return nil
}

// Len reports the number of stored records.
func (a *MemoryAdapter) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}
