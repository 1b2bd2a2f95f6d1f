package dispatcher

import (
	"context"
	"errors"

	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/resolve"
)

func (d *Dispatcher) handleDelete(ctx context.Context, userID string, data model.ActionData) (*Result, error) {
	switch data.Operation {
	case "delete_item":
		name := data.Metadata.ListName
		if name == "" {
			name = data.Target
		}
		return d.deleteEntry(ctx, userID, model.KindList, name, data.Metadata.ItemID, "list_item_deleted")
	case "delete_event":
		name := data.Metadata.ScheduleName
		if name == "" {
			name = data.Target
		}
		return d.deleteEntry(ctx, userID, model.KindSchedule, name, data.Metadata.EventID, "event_deleted")
	case "delete_memory_item":
		name := data.Metadata.CategoryName
		if name == "" {
			name = data.Target
		}
		return d.deleteEntry(ctx, userID, model.KindMemory, name, data.Metadata.ItemID, "memory_item_deleted")
	case "delete_list":
		return d.deleteCollection(ctx, userID, model.KindList, data.Target, "list_deleted")
	case "delete_schedule":
		return d.deleteCollection(ctx, userID, model.KindSchedule, data.Target, "schedule_deleted")
	case "delete_memory":
		return d.deleteCollection(ctx, userID, model.KindMemory, data.Target, "memory_deleted")
	case "":
		return d.deleteByResolution(ctx, userID, data.Target)
	default:
		return fail("unknown delete operation: %s", data.Operation), nil
	}
}

func (d *Dispatcher) deleteEntry(ctx context.Context, userID string, kind model.Kind, name, entryID, resultType string) (*Result, error) {
	col, soft, err := d.lookup(ctx, userID, kind, name)
	if col == nil {
		return soft, err
	}
	switch kind {
	case model.KindList:
		err = d.store.ListItems().Delete(ctx, col.CollectionID, entryID)
	case model.KindSchedule:
		err = d.store.Events().Delete(ctx, col.CollectionID, entryID)
	case model.KindMemory:
		err = d.store.MemoryItems().Delete(ctx, col.CollectionID, entryID)
	}
	if err != nil {
		return nil, err
	}
	return &Result{
		Success: true,
		Type:    resultType,
		Details: map[string]any{"collection": col.Name, "entryId": entryID},
	}, nil
}

func (d *Dispatcher) deleteCollection(ctx context.Context, userID string, kind model.Kind, name, resultType string) (*Result, error) {
	err := d.store.Collections().Delete(ctx, userID, kind, name)
	if errors.Is(err, model.ErrNotFound) {
		return fail("could not find %s %q", kind, name), nil
	}
	if err != nil {
		return nil, err
	}
	return &Result{
		Success: true,
		Type:    resultType,
		Details: map[string]any{"name": name},
	}, nil
}

// deleteByResolution handles deletes with no operation: try to resolve the
// target against lists, then schedules, then memory, and delete the first
// collection that matches.
func (d *Dispatcher) deleteByResolution(ctx context.Context, userID, target string) (*Result, error) {
	kinds := []struct {
		kind       model.Kind
		resultType string
	}{
		{model.KindList, "list_deleted"},
		{model.KindSchedule, "schedule_deleted"},
		{model.KindMemory, "memory_deleted"},
	}
	for _, k := range kinds {
		cols, err := d.store.Collections().List(ctx, userID, k.kind, false)
		if err != nil {
			return nil, err
		}
		col := resolve.Resolve(target, cols)
		if col == nil {
			continue
		}
		if err := d.store.Collections().Delete(ctx, userID, k.kind, col.Name); err != nil {
			return nil, err
		}
		return &Result{
			Success: true,
			Type:    k.resultType,
			Details: map[string]any{"name": col.Name},
		}, nil
	}
	return fail("could not find target %q for deletion", target), nil
}
