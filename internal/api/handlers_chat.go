package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sakjin112/personal-ai-assistant/server/internal/api/respond"
	"github.com/sakjin112/personal-ai-assistant/server/internal/dispatcher"
	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/planner"
	"github.com/sakjin112/personal-ai-assistant/server/internal/store"
)

// ChatPlanner is the planner surface the chat handler needs; tests substitute
// a canned implementation.
type ChatPlanner interface {
	Plan(ctx context.Context, message string, snap *planner.Snapshot) (*planner.Plan, error)
}

type ChatHandler struct {
	store   store.Store
	planner ChatPlanner
	disp    *dispatcher.Dispatcher
	logger  zerolog.Logger
}

func NewChatHandler(st store.Store, pl ChatPlanner, disp *dispatcher.Dispatcher, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{store: st, planner: pl, disp: disp, logger: logger}
}

type chatRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type chatResponse struct {
	Response      string               `json:"response"`
	Actions       []model.Action       `json:"actions"`
	Queries       []model.Action       `json:"queries"`
	ActionResults []*dispatcher.Result `json:"actionResults"`
	Metadata      map[string]any       `json:"metadata"`
}

// HandleChat implements POST /api/chat: plan the message, execute every
// action and query, and fold query summaries back into the reply.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var in chatRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if in.Message == "" {
		respond.WriteBadRequest(w, "message required")
		return
	}
	if in.UserID == "" {
		in.UserID = "default"
	}
	ctx := r.Context()

	if _, err := h.store.Users().Upsert(ctx, &model.User{UserID: in.UserID}); err != nil {
		h.logger.Error().Err(err).Str("user_id", in.UserID).Msg("user upsert failed")
		respond.WriteInternalError(w, "failed to prepare user")
		return
	}

	snap, err := h.snapshot(ctx, in.UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("loading collections failed")
		respond.WriteInternalError(w, "failed to load user data")
		return
	}

	plan, err := h.planner.Plan(ctx, in.Message, snap)
	if err != nil {
		h.logger.Error().Err(err).Msg("planner unavailable")
		respond.WriteJSON(w, http.StatusOK, chatResponse{
			Response:      "Sorry, I encountered an error. Please try again.",
			Actions:       []model.Action{},
			Queries:       []model.Action{},
			ActionResults: []*dispatcher.Result{},
			Metadata:      map[string]any{"plannerError": true},
		})
		return
	}

	all := append(append([]model.Action{}, plan.Actions...), plan.Queries...)
	results := h.disp.ProcessAll(ctx, in.UserID, all)

	response := plan.Response
	for _, res := range results {
		if res.Success && res.Summary != "" {
			response += "\n\n" + res.Summary
		}
	}

	respond.WriteJSON(w, http.StatusOK, chatResponse{
		Response:      response,
		Actions:       plan.Actions,
		Queries:       plan.Queries,
		ActionResults: results,
		Metadata: map[string]any{
			"actionsProcessed":  len(results),
			"fallbackGenerated": plan.FallbackGenerated,
		},
	})
}

func (h *ChatHandler) snapshot(ctx context.Context, userID string) (*planner.Snapshot, error) {
	lists, err := h.store.Collections().List(ctx, userID, model.KindList, false)
	if err != nil {
		return nil, err
	}
	schedules, err := h.store.Collections().List(ctx, userID, model.KindSchedule, false)
	if err != nil {
		return nil, err
	}
	memory, err := h.store.Collections().List(ctx, userID, model.KindMemory, false)
	if err != nil {
		return nil, err
	}
	return &planner.Snapshot{Lists: lists, Schedules: schedules, Memory: memory}, nil
}
