package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sakjin112/personal-ai-assistant/server/internal/api/respond"
	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/store"
)

type UserHandler struct {
	store store.Store
}

func NewUserHandler(st store.Store) *UserHandler { return &UserHandler{store: st} }

// UpsertUser handles POST /api/users/{userId}. First interaction bootstraps
// the user; repeat calls update the display name.
func (h *UserHandler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		respond.WriteBadRequest(w, "userId required")
		return
	}
	var in struct {
		DisplayName string `json:"displayName"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&in)
	}
	u, err := h.store.Users().Upsert(r.Context(), &model.User{UserID: userID, DisplayName: in.DisplayName})
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	u, err := h.store.Users().Get(r.Context(), userID)
	if errors.Is(err, model.ErrNotFound) {
		respond.WriteNotFound(w, "user not found")
		return
	}
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}
