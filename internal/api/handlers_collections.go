package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sakjin112/personal-ai-assistant/server/internal/api/respond"
	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/store"
)

type CollectionHandler struct {
	store store.Store
}

func NewCollectionHandler(st store.Store) *CollectionHandler { return &CollectionHandler{store: st} }

// kindFromPath maps the plural URL segment onto a collection kind.
func kindFromPath(segment string) (model.Kind, bool) {
	switch segment {
	case "lists":
		return model.KindList, true
	case "schedules":
		return model.KindSchedule, true
	case "memory":
		return model.KindMemory, true
	}
	return "", false
}

// ListCollections handles GET /api/users/{userId}/{kind}; entries are
// included, most recently used collection first.
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, ok := kindFromPath(vars["kind"])
	if !ok {
		respond.WriteBadRequest(w, "unknown collection kind")
		return
	}
	includeArchived := r.URL.Query().Get("includeArchived") == "true"
	cols, err := h.store.Collections().List(r.Context(), vars["userId"], kind, includeArchived)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if cols == nil {
		cols = []*model.Collection{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"collections": cols,
		"count":       len(cols),
	})
}

// DeleteCollection handles DELETE /api/users/{userId}/{kind}/{name} and
// cascades to the collection's entries.
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, ok := kindFromPath(vars["kind"])
	if !ok {
		respond.WriteBadRequest(w, "unknown collection kind")
		return
	}
	err := h.store.Collections().Delete(r.Context(), vars["userId"], kind, vars["name"])
	if errors.Is(err, model.ErrNotFound) {
		respond.WriteNotFound(w, "collection not found")
		return
	}
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
