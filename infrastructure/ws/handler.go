package ws

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"club-hub/domain"
	"club-hub/domain/event"
	"club-hub/runtime"
)

// Handler upgrades HTTP requests to websocket connections and routes
// their events into the broadcaster. Joining a room carries no
// authorization on purpose; only the history-read path is gated.
type Handler struct {
	log         *slog.Logger
	broadcaster *runtime.Broadcaster
	sendBuffer  int
	upgrader    websocket.Upgrader
}

func NewHandler(log *slog.Logger, broadcaster *runtime.Broadcaster,
	sendBuffer int, allowedOrigins []string) *Handler {
	return &Handler{
		log:         log,
		broadcaster: broadcaster,
		sendBuffer:  sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Non-browser clients send no Origin header.
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	connID := uuid.NewString()
	client := NewClient(conn, connID, h.sendBuffer, h.log)
	sink := NewSink(client, h.log)

	h.broadcaster.Connect(connID, sink)
	h.log.Debug("Connection established", "conn_id", connID, "remote", r.RemoteAddr)

	go client.WritePump()
	client.ReadPump(h.route)

	h.broadcaster.Disconnect(connID)
	h.log.Debug("Connection closed", "conn_id", connID)
}

// route maps one inbound envelope to a broadcaster call. Payload
// problems are answered on the sending connection only.
func (h *Handler) route(c *Client, env Envelope) {
	switch env.Event {
	case "joinRoom":
		payload, err := decodePayload[JoinRoomPayload](env.Data)
		if err != nil {
			h.reject(c, "game", "", err)
			return
		}
		h.broadcaster.JoinRoom(c.ConnID(), domain.GameRoom(payload.GameID))

	case "joinClubRoom":
		payload, err := decodePayload[JoinClubRoomPayload](env.Data)
		if err != nil {
			h.reject(c, "club", "", err)
			return
		}
		h.broadcaster.JoinRoom(c.ConnID(), domain.ClubRoom(payload.ClubID))

	case "chatMessage":
		payload, err := decodePayload[ChatMessagePayload](env.Data)
		if err != nil {
			h.reject(c, "game", payload.GameID, err)
			return
		}
		h.broadcaster.Dispatch(domain.PostGameMessageCommand{
			GameID:   payload.GameID,
			AuthorID: payload.UserID,
			Text:     payload.Message,
			ConnID:   c.ConnID(),
		})

	case "clubChatMessage":
		payload, err := decodePayload[ClubChatMessagePayload](env.Data)
		if err != nil {
			h.reject(c, "club", payload.ClubID, err)
			return
		}
		h.broadcaster.Dispatch(domain.PostClubMessageCommand{
			ClubID:   payload.ClubID,
			AuthorID: payload.UserID,
			Text:     payload.Text,
			ConnID:   c.ConnID(),
		})

	default:
		h.log.Debug("Unknown inbound event", "conn_id", c.ConnID(), "event", env.Event)
	}
}

func (h *Handler) reject(c *Client, scope, targetID string, cause error) {
	data, err := EncodeEvent(event.PostResult{
		Scope:    scope,
		TargetID: targetID,
		OK:       false,
		Reason:   cause.Error(),
	})
	if err != nil {
		return
	}
	c.enqueue(data)
}
