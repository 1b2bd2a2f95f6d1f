// Package dispatcher routes planner actions to the store. Routing is a
// switch over (type, operation): creates, adds, updates, deletes, read-only
// queries, and a legacy shape remap for older action payloads.
//
// Failure semantics: a target that cannot be resolved yields a soft
// Result{Success:false}; store failures are returned as errors from Process.
// ProcessAll isolates them per action so one bad action never aborts a batch.
package dispatcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sakjin112/personal-ai-assistant/server/internal/dates"
	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/planner"
	"github.com/sakjin112/personal-ai-assistant/server/internal/resolve"
	"github.com/sakjin112/personal-ai-assistant/server/internal/store"
)

// Advisor is the optional model-backed helper for picking among candidate
// collections and naming new ones. A nil Advisor disables both; the
// deterministic resolver and local naming take over.
type Advisor interface {
	Rank(ctx context.Context, request string, candidates []*model.Collection, items []string) (string, error)
	SuggestName(ctx context.Context, request string, existing []string) string
}

// Result is the outcome of one action.
type Result struct {
	Success bool           `json:"success"`
	Type    string         `json:"type,omitempty"`
	Error   string         `json:"error,omitempty"`
	Summary string         `json:"summary,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Dispatcher executes planner actions against a user's collections.
type Dispatcher struct {
	store   store.Store
	advisor Advisor
	dates   *dates.Parser
	logger  zerolog.Logger
}

// New builds a Dispatcher. advisor may be nil.
func New(s store.Store, advisor Advisor, parser *dates.Parser, logger zerolog.Logger) *Dispatcher {
	if parser == nil {
		parser = dates.NewParser()
	}
	return &Dispatcher{store: s, advisor: advisor, dates: parser, logger: logger}
}

// Process executes a single action. Unresolvable targets come back as soft
// failures; store errors are returned for the caller to handle.
func (d *Dispatcher) Process(ctx context.Context, userID string, action model.Action) (*Result, error) {
	d.logger.Debug().
		Str("user_id", userID).
		Str("type", action.Type).
		Str("operation", action.Data.Operation).
		Msg("processing action")

	switch action.Type {
	case "smart_create":
		return d.handleCreate(ctx, userID, action.Data)
	case "smart_add":
		return d.handleAdd(ctx, userID, action.Data)
	case "smart_update":
		return d.handleUpdate(ctx, userID, action.Data)
	case "smart_delete":
		return d.handleDelete(ctx, userID, action.Data)
	case "smart_schedule":
		data := action.Data
		data.Operation = "add_event"
		return d.handleAdd(ctx, userID, data)
	case "smart_remember":
		data := action.Data
		data.Operation = "store_memory"
		return d.handleAdd(ctx, userID, data)
	case "query_data", "count_events", "list_items", "memory_search":
		return d.handleQuery(ctx, userID, action)
	default:
		return d.handleLegacy(ctx, userID, action)
	}
}

// ProcessAll runs a batch, converting per-action errors into failed results
// so the remaining actions still run.
func (d *Dispatcher) ProcessAll(ctx context.Context, userID string, actions []model.Action) []*Result {
	results := make([]*Result, 0, len(actions))
	for _, action := range actions {
		res, err := d.Process(ctx, userID, action)
		if err != nil {
			d.logger.Error().Err(err).Str("type", action.Type).Msg("action failed")
			results = append(results, &Result{Success: false, Type: action.Type, Error: err.Error()})
			continue
		}
		results = append(results, res)
	}
	return results
}

func fail(format string, args ...any) *Result {
	return &Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// resolveForAdd maps target onto one of the user's collections for add
// flows. The deterministic resolver runs first; with two or more candidates
// an advisor may break the tie, but its answer only counts when it names a
// real candidate. nil means the caller should create the collection.
func (d *Dispatcher) resolveForAdd(ctx context.Context, userID string, kind model.Kind, target string, items []string) (*model.Collection, error) {
	cols, err := d.store.Collections().List(ctx, userID, kind, false)
	if err != nil {
		return nil, err
	}
	if c := resolve.Resolve(target, cols); c != nil {
		return c, nil
	}
	if d.advisor != nil && len(cols) > 1 {
		choice, err := d.advisor.Rank(ctx, target, cols, items)
		if err != nil {
			d.logger.Warn().Err(err).Str("target", target).Msg("ranker unavailable, continuing without it")
		} else if c := resolve.Pick(choice, cols); c != nil {
			return c, nil
		}
	}
	return nil, nil
}

// suggestName asks the advisor for a collection name, with deterministic
// local naming when no advisor is wired.
func (d *Dispatcher) suggestName(ctx context.Context, request string, existing []string) string {
	if d.advisor != nil {
		return d.advisor.SuggestName(ctx, request, existing)
	}
	return planner.FallbackName(request, d.dates.Now())
}

func names(cols []*model.Collection) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Name)
	}
	return out
}
