package sequence

import (
	"context"
	"sync"

	"github.com/fitora/fitora/internal/sequence/domain"
)

// Memory is a mutex-protected in-memory sequence store. It preserves the
// atomicity contract for tests and single-process development setups.
type Memory struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]int64)}
}

func (m *Memory) Next(_ context.Context, dateKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[dateKey]++
	return m.values[dateKey], nil
}

var _ domain.Store = (*Memory)(nil)
