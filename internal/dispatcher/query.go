package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
)

func (d *Dispatcher) handleQuery(ctx context.Context, userID string, action model.Action) (*Result, error) {
	op := action.Type
	if op == "query_data" {
		op = action.Data.Operation
	}
	switch op {
	case "count_events":
		return d.countEvents(ctx, userID)
	case "list_items":
		return d.countListItems(ctx, userID)
	case "memory_search":
		return d.countMemoryItems(ctx, userID)
	default:
		return &Result{
			Success: true,
			Type:    "query_processed",
			Details: map[string]any{"target": action.Data.Target, "operation": op},
		}, nil
	}
}

// countEvents aggregates event totals across all schedules, split into
// today's and upcoming events by local midnight.
func (d *Dispatcher) countEvents(ctx context.Context, userID string) (*Result, error) {
	schedules, err := d.store.Collections().List(ctx, userID, model.KindSchedule, false)
	if err != nil {
		return nil, err
	}

	now := d.dates.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var total, today, upcoming int
	breakdown := map[string]any{}
	for _, sched := range schedules {
		var schedToday, schedUpcoming int
		for _, ev := range sched.Events {
			if ev.StartTime == nil {
				continue
			}
			t := ev.StartTime.In(now.Location())
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
			if day.Equal(midnight) {
				schedToday++
				today++
			} else if day.After(midnight) {
				schedUpcoming++
				upcoming++
			}
		}
		total += len(sched.Events)
		breakdown[sched.Name] = map[string]int{
			"total":    len(sched.Events),
			"today":    schedToday,
			"upcoming": schedUpcoming,
		}
	}

	summary := fmt.Sprintf("You have %d total events scheduled across %d schedules.", total, len(schedules))
	if today > 0 {
		summary += fmt.Sprintf(" %d events today.", today)
	}
	if upcoming > 0 {
		summary += fmt.Sprintf(" %d upcoming events.", upcoming)
	}

	return &Result{
		Success: true,
		Type:    "event_count",
		Summary: summary,
		Data: map[string]any{
			"total":     total,
			"today":     today,
			"upcoming":  upcoming,
			"schedules": len(schedules),
			"breakdown": breakdown,
		},
	}, nil
}

// countListItems aggregates item totals across all lists. An item counts as
// completed on either the boolean flag or the legacy status column.
func (d *Dispatcher) countListItems(ctx context.Context, userID string) (*Result, error) {
	lists, err := d.store.Collections().List(ctx, userID, model.KindList, false)
	if err != nil {
		return nil, err
	}

	var total, completed, pending int
	breakdown := map[string]any{}
	for _, list := range lists {
		var listCompleted, listPending int
		for _, item := range list.Items {
			if item.Done() {
				listCompleted++
				completed++
			} else {
				listPending++
				pending++
			}
		}
		total += len(list.Items)
		breakdown[list.Name] = map[string]int{
			"total":     len(list.Items),
			"completed": listCompleted,
			"pending":   listPending,
		}
	}

	summary := fmt.Sprintf("You have %d total items across %d lists.", total, len(lists))
	if completed > 0 {
		summary += fmt.Sprintf(" %d completed.", completed)
	}
	if pending > 0 {
		summary += fmt.Sprintf(" %d pending.", pending)
	}

	return &Result{
		Success: true,
		Type:    "list_count",
		Summary: summary,
		Data: map[string]any{
			"total":     total,
			"completed": completed,
			"pending":   pending,
			"lists":     len(lists),
			"breakdown": breakdown,
		},
	}, nil
}

func (d *Dispatcher) countMemoryItems(ctx context.Context, userID string) (*Result, error) {
	categories, err := d.store.Collections().List(ctx, userID, model.KindMemory, false)
	if err != nil {
		return nil, err
	}

	var total int
	breakdown := map[string]any{}
	for _, cat := range categories {
		labels := make([]string, 0, len(cat.MemoryItems))
		for _, mi := range cat.MemoryItems {
			labels = append(labels, mi.Label())
		}
		total += len(cat.MemoryItems)
		breakdown[cat.Name] = map[string]any{
			"total": len(cat.MemoryItems),
			"items": labels,
		}
	}

	return &Result{
		Success: true,
		Type:    "memory_count",
		Summary: fmt.Sprintf("You have %d total memory items across %d categories.", total, len(categories)),
		Data: map[string]any{
			"total":      total,
			"categories": len(categories),
			"breakdown":  breakdown,
		},
	}, nil
}
