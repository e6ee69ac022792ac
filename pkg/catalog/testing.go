package catalog

import (
	"context"
	"sync"
)

// MemGateway is an in-memory Gateway for tests. It counts writes and
// notifications and can be told to fail either step.
type MemGateway struct {
	mu   sync.Mutex
	docs map[string][]byte

	Writes   int
	Notifies int

	ReadErr   error
	WriteErr  error
	NotifyErr error
}

// NewMemGateway creates an empty in-memory gateway.
func NewMemGateway() *MemGateway {
	return &MemGateway{docs: make(map[string][]byte)}
}

// ReadDocument implements Gateway.
func (g *MemGateway) ReadDocument(_ context.Context, storeID string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ReadErr != nil {
		return nil, g.ReadErr
	}
	data, ok := g.docs[storeID]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// WriteDocument implements Gateway.
func (g *MemGateway) WriteDocument(_ context.Context, storeID string, data []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.WriteErr != nil {
		return g.WriteErr
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	g.docs[storeID] = stored
	g.Writes++
	return nil
}

// NotifyRefresh implements Gateway.
func (g *MemGateway) NotifyRefresh(_ context.Context, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.NotifyErr != nil {
		return g.NotifyErr
	}
	g.Notifies++
	return nil
}

// Bytes returns the stored document bytes for a store, or nil.
func (g *MemGateway) Bytes(storeID string) []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.docs[storeID]
}
