package playbill

import (
	"context"
)

// EnsureTag implements Client. Ensuring an already-declared tag persists
// nothing and fires no change event.
func (c *client) EnsureTag(ctx context.Context, name string) error {
	return c.mutate(ctx, func(storeID string) (bool, error) {
		return c.tags.Ensure(ctx, storeID, name)
	})
}

// DeleteTag implements Client.
func (c *client) DeleteTag(ctx context.Context, name string) error {
	return c.mutate(ctx, func(storeID string) (bool, error) {
		return c.tags.Delete(ctx, storeID, name)
	})
}

// RenameTag implements Client.
func (c *client) RenameTag(ctx context.Context, oldName, newName string) error {
	return c.mutate(ctx, func(storeID string) (bool, error) {
		if err := c.tags.Rename(ctx, storeID, oldName, newName); err != nil {
			return false, err
		}
		return true, nil
	})
}

// ReorderTags implements Client.
func (c *client) ReorderTags(ctx context.Context, order []string) error {
	return c.mutate(ctx, func(storeID string) (bool, error) {
		if err := c.tags.Reorder(ctx, storeID, order); err != nil {
			return false, err
		}
		return true, nil
	})
}
