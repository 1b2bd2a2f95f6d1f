package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/sakjin112/personal-ai-assistant/server/internal/api/recovery"
	"github.com/sakjin112/personal-ai-assistant/server/internal/dispatcher"
	"github.com/sakjin112/personal-ai-assistant/server/internal/store"
)

// NewRouter wires all HTTP routes. Authentication stays external; userId in
// the path is trusted input.
func NewRouter(st store.Store, pl ChatPlanner, disp *dispatcher.Dispatcher, logger zerolog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	chat := NewChatHandler(st, pl, disp, logger)
	users := NewUserHandler(st)
	collections := NewCollectionHandler(st)

	router.HandleFunc("/api/chat", chat.HandleChat).Methods("POST")

	router.HandleFunc("/api/users/{userId}", users.UpsertUser).Methods("POST")
	router.HandleFunc("/api/users/{userId}", users.GetUser).Methods("GET")

	router.HandleFunc("/api/users/{userId}/{kind:lists|schedules|memory}", collections.ListCollections).Methods("GET")
	router.HandleFunc("/api/users/{userId}/{kind:lists|schedules|memory}/{name}", collections.DeleteCollection).Methods("DELETE")

	if pinger, ok := st.(store.HealthPinger); ok {
		router.HandleFunc("/api/health", NewHealthHandler(pinger).CheckHealth).Methods("GET")
	}

	return router
}
