package playbill

import (
	"sync"

	"github.com/agentstation/utc"
)

// ChangeEvent announces that a catalog was mutated and persisted. No diff
// is carried; subscribers re-query through View.
type ChangeEvent struct {
	StoreID string   `json:"store_id"`
	At      utc.Time `json:"at"`
}

// ChangeHook is a callback registered through OnChange.
type ChangeHook func(ChangeEvent)

// hooks holds registered change callbacks.
type hooks struct {
	mu      sync.RWMutex
	changed []ChangeHook
}

func newHooks() *hooks {
	return &hooks{}
}

// add registers a change hook.
func (h *hooks) add(hook ChangeHook) {
	if hook == nil {
		return
	}
	h.mu.Lock()
	h.changed = append(h.changed, hook)
	h.mu.Unlock()
}

// emitChanged invokes every registered hook synchronously.
func (h *hooks) emitChanged(storeID string) {
	h.mu.RLock()
	hooks := make([]ChangeHook, len(h.changed))
	copy(hooks, h.changed)
	h.mu.RUnlock()

	event := ChangeEvent{StoreID: storeID, At: utc.Now()}
	for _, hook := range hooks {
		hook(event)
	}
}

// OnChange implements Client.
func (c *client) OnChange(hook ChangeHook) {
	c.hooks.add(hook)
}
