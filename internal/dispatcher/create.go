package dispatcher

import (
	"context"

	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/parse"
)

func (d *Dispatcher) handleCreate(ctx context.Context, userID string, data model.ActionData) (*Result, error) {
	switch data.Operation {
	case "create_list":
		return d.createList(ctx, userID, data)
	case "create_schedule":
		return d.createCollection(ctx, userID, model.KindSchedule, data.Target, "personal", "schedule_created")
	case "create_memory":
		return d.createCollection(ctx, userID, model.KindMemory, data.Target, "general", "memory_created")
	default:
		return fail("unknown create operation: %s", data.Operation), nil
	}
}

func (d *Dispatcher) createList(ctx context.Context, userID string, data model.ActionData) (*Result, error) {
	existing, err := d.store.Collections().List(ctx, userID, model.KindList, false)
	if err != nil {
		return nil, err
	}
	name := d.suggestName(ctx, data.Target, names(existing))
	listType := parse.ListType(name, data.Values)

	col, err := d.store.Collections().Upsert(ctx, &model.Collection{
		UserID: userID,
		Kind:   model.KindList,
		Name:   name,
		Type:   listType,
	})
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
		Type:    "list_created",
		Details: map[string]any{
			"name":            name,
			"originalRequest": data.Target,
			"type":            listType,
			"initialItems":    len(data.Values),
		},
	}, nil
}

func (d *Dispatcher) createCollection(ctx context.Context, userID string, kind model.Kind, target, colType, resultType string) (*Result, error) {
	existing, err := d.store.Collections().List(ctx, userID, kind, false)
	if err != nil {
		return nil, err
	}
	name := d.suggestName(ctx, target, names(existing))

	if _, err := d.store.Collections().Upsert(ctx, &model.Collection{
		UserID: userID,
		Kind:   kind,
		Name:   name,
		Type:   colType,
	}); err != nil {
		return nil, err
	}
	return &Result{
		Success: true,
		Type:    resultType,
		Details: map[string]any{"name": name, "originalRequest": target},
	}, nil
}
