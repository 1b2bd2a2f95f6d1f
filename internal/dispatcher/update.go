package dispatcher

import (
	"context"
	"errors"

	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/resolve"
)

func (d *Dispatcher) handleUpdate(ctx context.Context, userID string, data model.ActionData) (*Result, error) {
	switch data.Operation {
	case "prepare_edit":
		// Acknowledgement only; the follow-up message carries the real change.
		return &Result{
			Success: true,
			Type:    "edit_prepared",
			Details: map[string]any{
				"target":  data.Target,
				"message": "Ready to edit. What changes would you like to make?",
			},
		}, nil
	case "update_item":
		return d.updateListItem(ctx, userID, data)
	case "update_event":
		return d.updateEvent(ctx, userID, data)
	case "update_memory":
		return d.updateMemoryItem(ctx, userID, data)
	case "edit_list", "update_list":
		return d.editList(ctx, userID, data)
	default:
		return fail("unknown update operation: %s", data.Operation), nil
	}
}

// lookup fetches a collection by exact name, reporting a missing collection
// as a soft failure and anything else as a hard error.
func (d *Dispatcher) lookup(ctx context.Context, userID string, kind model.Kind, name string) (*model.Collection, *Result, error) {
	col, err := d.store.Collections().GetByName(ctx, userID, kind, name)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fail("could not find %s %q", kind, name), nil
	}
	if err != nil {
		return nil, nil, err
	}
	return col, nil, nil
}

func (d *Dispatcher) updateListItem(ctx context.Context, userID string, data model.ActionData) (*Result, error) {
	listName := data.Metadata.ListName
	if listName == "" {
		listName = data.Target
	}
	col, soft, err := d.lookup(ctx, userID, model.KindList, listName)
	if col == nil {
		return soft, err
	}
	u := data.Metadata.Updates
	if u == nil || (u.Text == nil && u.Completed == nil) {
		return fail("no valid updates provided for list item"), nil
	}
	item, err := d.store.ListItems().Update(ctx, col.CollectionID, data.Metadata.ItemID, u)
	if err != nil {
		return nil, err
	}
	op := "text_update"
	if u.Completed != nil {
		op = "completion_toggle"
	}
	return &Result{
		Success: true,
		Type:    "list_item_updated",
		Details: map[string]any{
			"listName":  col.Name,
			"itemId":    item.ItemID,
			"operation": op,
		},
	}, nil
}

func (d *Dispatcher) updateEvent(ctx context.Context, userID string, data model.ActionData) (*Result, error) {
	scheduleName := data.Metadata.ScheduleName
	if scheduleName == "" {
		scheduleName = data.Target
	}
	col, soft, err := d.lookup(ctx, userID, model.KindSchedule, scheduleName)
	if col == nil {
		return soft, err
	}
	if data.Metadata.Updates.Empty() {
		return fail("no valid updates provided for event"), nil
	}
	ev, err := d.store.Events().Update(ctx, col.CollectionID, data.Metadata.EventID, data.Metadata.Updates)
	if err != nil {
		return nil, err
	}
	return &Result{
		Success: true,
		Type:    "event_updated",
		Details: map[string]any{
			"scheduleName": col.Name,
			"eventId":      ev.EventID,
		},
	}, nil
}

func (d *Dispatcher) updateMemoryItem(ctx context.Context, userID string, data model.ActionData) (*Result, error) {
	categoryName := data.Metadata.CategoryName
	if categoryName == "" {
		categoryName = data.Target
	}
	col, soft, err := d.lookup(ctx, userID, model.KindMemory, categoryName)
	if col == nil {
		return soft, err
	}
	if data.Metadata.Updates.Empty() {
		return fail("no valid updates provided for memory item"), nil
	}
	mi, err := d.store.MemoryItems().Update(ctx, col.CollectionID, data.Metadata.ItemID, data.Metadata.Updates)
	if err != nil {
		return nil, err
	}
	return &Result{
		Success: true,
		Type:    "memory_updated",
		Details: map[string]any{
			"categoryName": col.Name,
			"itemId":       mi.MemoryItemID,
		},
	}, nil
}

// editList is the legacy edit path: fuzzy-resolve the list, then treat
// values as items to append.
func (d *Dispatcher) editList(ctx context.Context, userID string, data model.ActionData) (*Result, error) {
	cols, err := d.store.Collections().List(ctx, userID, model.KindList, false)
	if err != nil {
		return nil, err
	}
	col := resolve.Resolve(data.Target, cols)
	if col == nil && d.advisor != nil && len(cols) > 1 {
		choice, rankErr := d.advisor.Rank(ctx, data.Target, cols, data.Values)
		if rankErr == nil {
			col = resolve.Pick(choice, cols)
		}
	}
	if col == nil {
		return fail("could not find list matching %q", data.Target), nil
	}
	for _, item := range data.Values {
		if _, err := d.store.ListItems().Add(ctx, col.CollectionID, &model.ListItem{Text: item}); err != nil {
			return nil, err
		}
	}
	return &Result{
		Success: true,
		Type:    "list_updated",
		Details: map[string]any{
			"targetList":      col.Name,
			"originalRequest": data.Target,
			"itemsAdded":      len(data.Values),
		},
	}, nil
}
