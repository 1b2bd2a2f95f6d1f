package dispatcher

import (
	"context"

	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
)

// handleLegacy remaps the older flat action shape (listName/name/items)
// onto target/operation/values and dispatches the handler directly, once.
func (d *Dispatcher) handleLegacy(ctx context.Context, userID string, action model.Action) (*Result, error) {
	switch action.Type {
	case "create_list":
		target := action.Data.ListName
		if target == "" {
			target = action.Data.Name
		}
		return d.handleCreate(ctx, userID, model.ActionData{
			Target:    target,
			Operation: "create_list",
			Values:    action.Data.Items,
		})
	case "add_to_list":
		return d.handleAdd(ctx, userID, model.ActionData{
			Target:    action.Data.ListName,
			Operation: "add_to_list",
			Values:    action.Data.Items,
		})
	case "create_schedule":
		target := action.Data.Name
		if target == "" {
			target = action.Data.ScheduleName
		}
		return d.handleCreate(ctx, userID, model.ActionData{
			Target:    target,
			Operation: "create_schedule",
		})
	case "add_event":
		title := action.Data.Title
		if title == "" {
			title = action.Data.Event
		}
		return d.handleAdd(ctx, userID, model.ActionData{
			Target:    action.Data.ScheduleName,
			Operation: "add_event",
			Values:    []string{title},
			Metadata:  action.Data.Metadata,
		})
	default:
		return fail("unknown action type: %s", action.Type), nil
	}
}
