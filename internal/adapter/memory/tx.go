// Package memory holds in-process stores used by the memory storage driver and by tests.
package memory

import (
	"context"
	"sync"
)

type txKey struct{}

// TxManager serializes units of work. There is no rollback: a failed unit
// keeps whatever it already wrote, so callers check preconditions before writing.
type TxManager struct {
	mu sync.Mutex
}

func NewTxManager() *TxManager {
	return &TxManager{}
}

// Do runs fn while holding the global lock. Nested calls join the outer unit.
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, true))
}
