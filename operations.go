package playbill

import (
	"context"
	"fmt"

	"github.com/playbill/playbill/pkg/catalog"
	"github.com/playbill/playbill/pkg/logging"
	"github.com/playbill/playbill/pkg/schema"
)

// Result is the uniform envelope returned by Do. Errors never escape the
// dispatcher; they are folded into Success and Message so embedding hosts
// get a single, stable shape.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

func fail(err error) Result {
	return Result{Success: false, Message: err.Error()}
}

// Do implements Client. It dispatches a named operation with a loosely
// typed parameter bag, for hosts that drive playbill through a single
// string-keyed entry point rather than the typed API.
func (c *client) Do(ctx context.Context, op string, params map[string]any) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			logging.Ctx(ctx).Error().Str("op", op).Any("panic", r).Msg("operation panicked")
			result = Result{Success: false, Message: fmt.Sprintf("operation %s panicked: %v", op, r)}
		}
	}()

	ctx = logging.WithOperation(ctx, op)

	switch op {
	case "media.add":
		return c.doAddMedia(ctx, params)
	case "media.delete":
		return c.doDeleteMedia(ctx, params)
	case "media.update":
		return c.doUpdateMedia(ctx, params)
	case "media.removeFromTag":
		return c.doRemoveFromTag(ctx, params)
	case "media.move":
		return c.doMoveMedia(ctx, params)
	case "media.toggle":
		return c.doToggleMedia(ctx, params)
	case "media.reorder":
		return c.doReorderMedia(ctx, params)
	case "folder.add":
		return c.doAddFolder(ctx, params)
	case "tag.add":
		return c.doEnsureTag(ctx, params)
	case "tag.delete":
		return c.doDeleteTag(ctx, params)
	case "tag.rename":
		return c.doRenameTag(ctx, params)
	case "tag.reorder":
		return c.doReorderTags(ctx, params)
	case "view.get":
		return c.doView(ctx, params)
	case "view.set":
		return c.doSetActiveTag(ctx, params)
	default:
		return Result{Success: false, Message: fmt.Sprintf("unknown operation: %s", op)}
	}
}

func (c *client) doAddMedia(ctx context.Context, params map[string]any) Result {
	url, err := stringParam(params, "url", true)
	if err != nil {
		return fail(err)
	}
	tag, _ := stringParam(params, "tag", false)
	result, err := c.AddMedia(ctx, url, AddOptions{
		Tag:            tag,
		AllowDuplicate: boolParam(params, "allow_duplicate"),
		AutoPlay:       boolParam(params, "autoplay"),
	})
	if err != nil {
		return fail(err)
	}
	switch {
	case result.Seek != nil:
		return ok("already playing, seeking", result)
	case result.IsDuplicate:
		return ok("already in catalog", result)
	default:
		return ok("added", result)
	}
}

func (c *client) doDeleteMedia(ctx context.Context, params map[string]any) Result {
	if tag, _ := stringParam(params, "tag", false); tag != "" {
		removed, err := c.ClearTag(ctx, tag)
		if err != nil {
			return fail(err)
		}
		return ok(fmt.Sprintf("removed %d items", removed), map[string]any{"removed": removed})
	}
	title, err := stringParam(params, "title", true)
	if err != nil {
		return fail(err)
	}
	if err := c.DeleteMedia(ctx, title); err != nil {
		return fail(err)
	}
	return ok("deleted", nil)
}

func (c *client) doUpdateMedia(ctx context.Context, params map[string]any) Result {
	title, err := stringParam(params, "title", true)
	if err != nil {
		return fail(err)
	}
	update := catalog.Update{}
	if set, ok := params["set"].(map[string]any); ok {
		update.Set = set
	}
	result, err := c.UpdateMedia(ctx, title, update)
	if err != nil {
		return fail(err)
	}
	return ok("updated", result)
}

func (c *client) doRemoveFromTag(ctx context.Context, params map[string]any) Result {
	title, err := stringParam(params, "title", true)
	if err != nil {
		return fail(err)
	}
	tag, err := stringParam(params, "tag", true)
	if err != nil {
		return fail(err)
	}
	result, err := c.RemoveFromTag(ctx, title, tag)
	if err != nil {
		return fail(err)
	}
	if result.Deleted {
		return ok("removed last tag, record deleted", result)
	}
	return ok("removed from tag", result)
}

func (c *client) doMoveMedia(ctx context.Context, params map[string]any) Result {
	title, err := stringParam(params, "title", true)
	if err != nil {
		return fail(err)
	}
	from, err := stringParam(params, "from", true)
	if err != nil {
		return fail(err)
	}
	to, err := stringParam(params, "to", true)
	if err != nil {
		return fail(err)
	}
	if err := c.MoveMedia(ctx, title, from, to); err != nil {
		return fail(err)
	}
	return ok("moved", nil)
}

func (c *client) doToggleMedia(ctx context.Context, params map[string]any) Result {
	title, err := stringParam(params, "title", true)
	if err != nil {
		return fail(err)
	}
	field, _ := stringParam(params, "field", false)
	if field == "" {
		field = schema.FieldPinned
	}
	value, err := c.ToggleMedia(ctx, title, field)
	if err != nil {
		return fail(err)
	}
	return ok("toggled", map[string]any{"field": field, "value": value})
}

func (c *client) doReorderMedia(ctx context.Context, params map[string]any) Result {
	ids, err := stringSliceParam(params, "order")
	if err != nil {
		return fail(err)
	}
	order := make([]catalog.RowID, len(ids))
	for i, id := range ids {
		order[i] = catalog.RowID(id)
	}
	if err := c.ReorderMedia(ctx, order); err != nil {
		return fail(err)
	}
	return ok("reordered", nil)
}

func (c *client) doAddFolder(ctx context.Context, params map[string]any) Result {
	dir, err := stringParam(params, "dir", true)
	if err != nil {
		return fail(err)
	}
	tag, _ := stringParam(params, "tag", false)
	patterns, _ := stringSliceParam(params, "patterns")
	result, err := c.AddFolder(ctx, dir, tag, patterns...)
	if err != nil {
		return fail(err)
	}
	return ok(result.Summary, result)
}

func (c *client) doEnsureTag(ctx context.Context, params map[string]any) Result {
	name, err := stringParam(params, "name", true)
	if err != nil {
		return fail(err)
	}
	if err := c.EnsureTag(ctx, name); err != nil {
		return fail(err)
	}
	return ok("tag ensured", nil)
}

func (c *client) doDeleteTag(ctx context.Context, params map[string]any) Result {
	name, err := stringParam(params, "name", true)
	if err != nil {
		return fail(err)
	}
	if err := c.DeleteTag(ctx, name); err != nil {
		return fail(err)
	}
	return ok("tag deleted", nil)
}

func (c *client) doRenameTag(ctx context.Context, params map[string]any) Result {
	oldName, err := stringParam(params, "old", true)
	if err != nil {
		return fail(err)
	}
	newName, err := stringParam(params, "new", true)
	if err != nil {
		return fail(err)
	}
	if err := c.RenameTag(ctx, oldName, newName); err != nil {
		return fail(err)
	}
	return ok("tag renamed", nil)
}

func (c *client) doReorderTags(ctx context.Context, params map[string]any) Result {
	order, err := stringSliceParam(params, "order")
	if err != nil {
		return fail(err)
	}
	if err := c.ReorderTags(ctx, order); err != nil {
		return fail(err)
	}
	return ok("tags reordered", nil)
}

func (c *client) doView(ctx context.Context, params map[string]any) Result {
	tag, _ := stringParam(params, "tag", false)
	view, err := c.View(ctx, tag)
	if err != nil {
		return fail(err)
	}
	return ok(fmt.Sprintf("%d items", view.Stats.Total), view)
}

func (c *client) doSetActiveTag(ctx context.Context, params map[string]any) Result {
	tag, err := stringParam(params, "tag", true)
	if err != nil {
		return fail(err)
	}
	if err := c.SetActiveTag(ctx, tag); err != nil {
		return fail(err)
	}
	return ok("active tag set", nil)
}

// stringParam extracts a string parameter from the bag.
func stringParam(params map[string]any, key string, required bool) (string, error) {
	v, exists := params[key]
	if !exists {
		if required {
			return "", fmt.Errorf("missing required parameter: %s", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string", key)
	}
	if required && s == "" {
		return "", fmt.Errorf("parameter %s must not be empty", key)
	}
	return s, nil
}

// boolParam extracts a boolean parameter, treating absence as false.
func boolParam(params map[string]any, key string) bool {
	b, _ := params[key].(bool)
	return b
}

// stringSliceParam extracts a string slice parameter. JSON-decoded bags
// carry []any, so both shapes are accepted.
func stringSliceParam(params map[string]any, key string) ([]string, error) {
	v, exists := params[key]
	if !exists {
		return nil, nil
	}
	switch items := v.(type) {
	case []string:
		return items, nil
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("parameter %s must be a list of strings", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("parameter %s must be a list of strings", key)
	}
}
