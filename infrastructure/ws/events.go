// Package ws is the real-time transport: JSON event envelopes over
// gorilla websockets, bridged to the broadcaster through per-connection
// sinks.
package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"club-hub/domain/event"
)

var validate = validator.New()

// Envelope is the wire shape of every event, inbound and outbound:
// {"event": "...", "data": {...}}.
type Envelope struct {
	Event string          `json:"event" validate:"required"`
	Data  json.RawMessage `json:"data"`
}

// Inbound payloads. The game and club shapes are deliberately parallel
// rather than unified; clients send them as two distinct event kinds.
type JoinRoomPayload struct {
	GameID string `json:"gameId" validate:"required"`
}

type JoinClubRoomPayload struct {
	ClubID string `json:"clubId" validate:"required"`
}

type ChatMessagePayload struct {
	GameID  string `json:"gameId" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type ClubChatMessagePayload struct {
	ClubID string `json:"clubId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

func decodePayload[T any](data json.RawMessage) (T, error) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("malformed payload: %w", err)
	}
	if err := validate.Struct(payload); err != nil {
		return payload, fmt.Errorf("invalid payload: %w", err)
	}
	return payload, nil
}

// Outbound DTOs.
type authorDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type clubMessageDTO struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"clubId"`
	Author    authorDTO `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type gameMessageDTO struct {
	ID        string    `json:"id"`
	GameID    string    `json:"gameId"`
	Author    authorDTO `json:"author"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type postResultDTO struct {
	Scope     string `json:"scope"`
	TargetID  string `json:"targetId"`
	MessageID string `json:"messageId,omitempty"`
	OK        bool   `json:"ok"`
	Reason    string `json:"reason,omitempty"`
}

// EncodeEvent turns a domain event into its wire envelope. Unknown
// event types are a programming error surfaced to the caller.
func EncodeEvent(evt event.DomainEvent) ([]byte, error) {
	var data any
	switch e := evt.(type) {
	case event.ClubMessagePosted:
		data = clubMessageDTO{
			ID:     e.MessageID.String(),
			ClubID: e.ClubID,
			Author: authorDTO{
				ID:     e.Author.ID,
				Name:   e.Author.Name,
				Avatar: e.Author.Avatar,
			},
			Text:      e.Text,
			Timestamp: e.At,
		}
	case event.GameMessagePosted:
		data = gameMessageDTO{
			ID:     e.MessageID.String(),
			GameID: e.GameID,
			Author: authorDTO{
				ID:     e.Author.ID,
				Name:   e.Author.Name,
				Avatar: e.Author.Avatar,
			},
			Message:   e.Text,
			Timestamp: e.At,
		}
	case event.PostResult:
		dto := postResultDTO{
			Scope:    e.Scope,
			TargetID: e.TargetID,
			OK:       e.OK,
			Reason:   e.Reason,
		}
		if e.OK {
			dto.MessageID = e.MessageID.String()
		}
		data = dto
	default:
		return nil, fmt.Errorf("no wire encoding for event %q", evt.EventName())
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: evt.EventName(), Data: raw})
}
