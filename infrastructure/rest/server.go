// Package rest exposes the request/response API: club browsing,
// membership mutation, gated chat history, and the organizer-only
// message delete.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"club-hub/auth"
	"club-hub/runtime/workers"
	"club-hub/services"
)

// NewRouter wires every route, the actor middleware, and the recovery
// handler into one http.Handler.
func NewRouter(log *slog.Logger, service services.IClubService,
	middleware auth.Middleware, health *workers.HealthWorker,
	realtime http.Handler) http.Handler {

	router := mux.NewRouter()
	server := &ClubServer{log: log, service: service}

	api := router.PathPrefix("/api/clubs").Subrouter()
	api.HandleFunc("", server.ListClubs).Methods(http.MethodGet)
	api.HandleFunc("/join", server.Join).Methods(http.MethodPost)
	api.HandleFunc("/exit", server.Exit).Methods(http.MethodPost)
	api.HandleFunc("/{clubId}", server.GetClub).Methods(http.MethodGet)
	api.HandleFunc("/{clubId}/chat", server.ChatHistory).Methods(http.MethodGet)
	api.HandleFunc("/{clubId}/members", server.Members).Methods(http.MethodGet)
	api.Handle("/{clubId}/chat/{messageId}",
		middleware.RequireOrganizer(http.HandlerFunc(server.DeleteMessage))).
		Methods(http.MethodDelete)

	router.Handle("/ws", realtime)
	router.HandleFunc("/healthz", healthHandler(health)).Methods(http.MethodGet)

	h := middleware.WithActor(router)
	h = newLoggingMiddleware(h, log)
	h = handlers.RecoveryHandler()(h)
	return h
}

func healthHandler(health *workers.HealthWorker) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"stats":  health.Latest(),
		})
	}
}

// newLoggingMiddleware logs one line per request with duration.
func newLoggingMiddleware(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
