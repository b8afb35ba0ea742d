package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"club-hub/domain"
	"club-hub/repositories"
)

type contextKey struct{}

var actorKey contextKey

// ActorFromContext returns the authenticated actor, or nil for an
// anonymous request. Handlers treat nil as "not logged in", never as an
// error by itself.
func ActorFromContext(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorKey).(domain.Actor)
	return actor
}

// Middleware resolves bearer tokens into actor context. Most routes are
// browsable anonymously, so an absent or invalid token lets the request
// through without an actor rather than rejecting it.
type Middleware struct {
	tokens TokenManager
	actors repositories.IActorRepository
	log    *slog.Logger
}

func NewMiddleware(tokens TokenManager, actors repositories.IActorRepository, log *slog.Logger) Middleware {
	return Middleware{tokens: tokens, actors: actors, log: log}
}

// WithActor attaches the actor to the request context when a valid
// token names one. User and organizer tokens both resolve through the
// same path; the kind travels in the claims.
func (m Middleware) WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			m.log.Debug("Rejected bearer token", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		actor, err := m.actors.GetActor(claims.Kind, claims.ActorID)
		if err != nil {
			m.log.Debug("Token names unknown actor", "actor_id", claims.ActorID, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// RequireOrganizer guards organizer-only routes. It runs after
// WithActor and rejects anyone else with 403, anonymous callers with
// 401.
func (m Middleware) RequireOrganizer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFromContext(r.Context())
		if actor == nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if actor.Kind() != domain.KindOrganizer {
			http.Error(w, "organizer access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
