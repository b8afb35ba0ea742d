// Package event defines the domain events fanned out to connected
// clients. Event names match the wire-level event field verbatim.
package event

import (
	"time"

	"github.com/google/uuid"

	"club-hub/domain"
)

type DomainEvent interface {
	EventName() string
}

// ClubMessagePosted is broadcast to the club's room and, additionally,
// globally so clients not viewing the club can surface a notification.
type ClubMessagePosted struct {
	MessageID uuid.UUID
	ClubID    string
	Author    domain.Profile
	Text      string
	At        time.Time
}

func (ClubMessagePosted) EventName() string { return "newClubMessage" }

// GameMessagePosted is broadcast to the game's room only.
type GameMessagePosted struct {
	MessageID uuid.UUID
	GameID    string
	Author    domain.Profile
	Text      string
	At        time.Time
}

func (GameMessagePosted) EventName() string { return "newMessage" }

// PostResult is delivered to the sending connection only. It replaces
// the silent drop of the old fire-and-forget path: the sender learns
// whether its post was persisted, everyone else keeps the usual
// at-most-once delivery.
type PostResult struct {
	Scope     string // "club" or "game"
	TargetID  string
	MessageID uuid.UUID
	OK        bool
	Reason    string
}

func (PostResult) EventName() string { return "postResult" }
