// Package store provides the non-SQL ledger backends.
package store

import (
	"context"
	"sync"

	"github.com/Alias1177/fxanalyst/internal/ledger"
)

// Memory keeps the ledger for the life of the process.
type Memory struct {
	mu sync.Mutex
	l  *ledger.Ledger
}

func NewMemory() *Memory {
	return &Memory{l: &ledger.Ledger{}}
}

func (m *Memory) Read(_ context.Context) (*ledger.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.l.Clone(), nil
}

func (m *Memory) Write(_ context.Context, l *ledger.Ledger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.l = l.Clone()
	return nil
}

func (m *Memory) Update(_ context.Context, fn func(l *ledger.Ledger) (bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.l.Clone()
	changed, err := fn(work)
	if err != nil {
		return err
	}
	if changed {
		m.l = work
	}
	return nil
}
