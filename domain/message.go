// This file defines chat message entities. Messages are immutable once
// appended; the author reference is a non-owning lookup key.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a club's chat log. The identifier is unique
// within the club's log; the timestamp is assigned by the broadcaster
// at append time and drives read ordering.
type Message struct {
	ID       uuid.UUID
	ClubID   string
	AuthorID string
	Text     string
	At       time.Time
}

// GameMessage is the parallel message kind for game chat. The two paths
// share a shape but are deliberately not unified.
type GameMessage struct {
	ID       uuid.UUID
	GameID   string
	AuthorID string
	Text     string
	At       time.Time
}
