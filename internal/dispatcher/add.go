package dispatcher

import (
	"context"
	"strings"

	"github.com/sakjin112/personal-ai-assistant/server/internal/dates"
	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/parse"
)

func (d *Dispatcher) handleAdd(ctx context.Context, userID string, data model.ActionData) (*Result, error) {
	switch data.Operation {
	case "add_to_list":
		return d.addToList(ctx, userID, data)
	case "add_event":
		return d.addEvent(ctx, userID, data)
	case "store_memory":
		return d.storeMemory(ctx, userID, data)
	default:
		return fail("unknown add operation: %s", data.Operation), nil
	}
}

// ensureTarget resolves the collection for an add, creating it with the
// requested name when every resolution tier comes up empty. With exactly one
// existing collection the entry lands there regardless of phrasing.
func (d *Dispatcher) ensureTarget(ctx context.Context, userID string, kind model.Kind, data model.ActionData, colType string) (*model.Collection, bool, error) {
	col, err := d.resolveForAdd(ctx, userID, kind, data.Target, data.Values)
	if err != nil {
		return nil, false, err
	}
	if col != nil {
		return col, false, nil
	}

	name := strings.TrimSpace(data.Target)
	if name == "" {
		name = d.suggestName(ctx, "", nil)
	}
	if kind == model.KindList && colType == "" {
		colType = parse.ListType(name, data.Values)
	}
	col, err = d.store.Collections().Upsert(ctx, &model.Collection{
		UserID: userID,
		Kind:   kind,
		Name:   name,
		Type:   colType,
	})
	if err != nil {
		return nil, false, err
	}
	return col, true, nil
}

func (d *Dispatcher) addToList(ctx context.Context, userID string, data model.ActionData) (*Result, error) {
	col, created, err := d.ensureTarget(ctx, userID, model.KindList, data, "")
	if err != nil {
		return nil, err
	}
	for _, item := range data.Values {
		if _, err := d.store.ListItems().Add(ctx, col.CollectionID, &model.ListItem{Text: item}); err != nil {
			return nil, err
		}
	}
	return &Result{
		Success: true,
		Type:    "items_added",
		Details: map[string]any{
			"targetList":      col.Name,
			"originalRequest": data.Target,
			"itemsAdded":      len(data.Values),
			"items":           data.Values,
			"created":         created,
		},
	}, nil
}

func (d *Dispatcher) addEvent(ctx context.Context, userID string, data model.ActionData) (*Result, error) {
	col, created, err := d.ensureTarget(ctx, userID, model.KindSchedule, data, "personal")
	if err != nil {
		return nil, err
	}
	for _, title := range data.Values {
		ev := &model.ScheduleEvent{Title: title}
		if data.Metadata.SmartDate != "" {
			ev.StartTime = dates.ToTime(d.dates.Parse(data.Metadata.SmartDate))
		}
		if _, err := d.store.Events().Add(ctx, col.CollectionID, ev); err != nil {
			return nil, err
		}
	}
	return &Result{
		Success: true,
		Type:    "events_added",
		Details: map[string]any{
			"targetSchedule":  col.Name,
			"originalRequest": data.Target,
			"eventsAdded":     len(data.Values),
			"created":         created,
		},
	}, nil
}

func (d *Dispatcher) storeMemory(ctx context.Context, userID string, data model.ActionData) (*Result, error) {
	col, created, err := d.ensureTarget(ctx, userID, model.KindMemory, data, "general")
	if err != nil {
		return nil, err
	}
	for _, raw := range data.Values {
		kv := parse.ExtractKeyValue(raw)
		if _, err := d.store.MemoryItems().Put(ctx, col.CollectionID, &model.MemoryItem{Key: kv.Key, Value: kv.Value}); err != nil {
			return nil, err
		}
	}
	return &Result{
		Success: true,
		Type:    "memory_stored",
		Details: map[string]any{
			"targetCategory":  col.Name,
			"originalRequest": data.Target,
			"itemsStored":     len(data.Values),
			"created":         created,
		},
	}, nil
}
