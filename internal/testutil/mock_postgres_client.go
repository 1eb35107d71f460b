package testutil

import (
	"context"
	"sync"

	"github.com/kontorapp/kontor/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

type mockTxKey struct{}

// MockPostgresClient emulates transactions over in-memory stores. Top-level
// transactions run one at a time, which stands in for the tenant row lock.
// Every registered store is snapshotted when a transaction or savepoint
// begins and restored when fn fails.
type MockPostgresClient struct {
	txMu   sync.Mutex
	stores []Snapshotter

	mu      sync.Mutex
	commits int
	aborts  int
}

func NewMockPostgresClient(stores ...Snapshotter) *MockPostgresClient {
	return &MockPostgresClient{stores: stores}
}

// Register adds stores to the set restored on rollback
func (c *MockPostgresClient) Register(stores ...Snapshotter) {
	c.stores = append(c.stores, stores...)
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if ctx.Value(mockTxKey{}) == nil {
		c.txMu.Lock()
		defer c.txMu.Unlock()
		ctx = context.WithValue(ctx, mockTxKey{}, true)
	}

	restores := make([]func(), 0, len(c.stores))
	for _, s := range c.stores {
		restores = append(restores, s.Snapshot())
	}

	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		c.mu.Lock()
		c.aborts++
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.commits++
	c.mu.Unlock()
	return nil
}

// Counts returns how many transactions or savepoints committed and rolled back
func (c *MockPostgresClient) Counts() (commits, aborts int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commits, c.aborts
}
