package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"club-hub/domain"
	"club-hub/domain/event"
)

func Test_Encode_Club_Message_Envelope(t *testing.T) {
	req := require.New(t)
	id := uuid.New()
	at := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	raw, err := EncodeEvent(event.ClubMessagePosted{
		MessageID: id,
		ClubID:    "c1",
		Author:    domain.Profile{ID: "u1", Name: "Alice", Avatar: "a.png"},
		Text:      "hello",
		At:        at,
	})
	req.NoError(err)

	var envelope Envelope
	req.NoError(json.Unmarshal(raw, &envelope))
	req.Equal("newClubMessage", envelope.Event)

	var dto clubMessageDTO
	req.NoError(json.Unmarshal(envelope.Data, &dto))
	req.Equal(id.String(), dto.ID)
	req.Equal("c1", dto.ClubID)
	req.Equal("Alice", dto.Author.Name)
	req.Equal("hello", dto.Text)
	req.True(dto.Timestamp.Equal(at))
}

func Test_Encode_Game_Message_Uses_Its_Own_Field_Name(t *testing.T) {
	req := require.New(t)

	raw, err := EncodeEvent(event.GameMessagePosted{
		MessageID: uuid.New(),
		GameID:    "g1",
		Author:    domain.Profile{ID: "u1", Name: "Alice"},
		Text:      "nice shot",
		At:        time.Now().UTC(),
	})
	req.NoError(err)

	var envelope Envelope
	req.NoError(json.Unmarshal(raw, &envelope))
	req.Equal("newMessage", envelope.Event)

	// The game shape carries "message", not "text"
	var fields map[string]json.RawMessage
	req.NoError(json.Unmarshal(envelope.Data, &fields))
	req.Contains(fields, "message")
	req.NotContains(fields, "text")
}

func Test_Encode_Failed_Post_Result_Omits_Message_Id(t *testing.T) {
	req := require.New(t)

	raw, err := EncodeEvent(event.PostResult{
		Scope:    "club",
		TargetID: "missing",
		OK:       false,
		Reason:   "club not found",
	})
	req.NoError(err)

	var envelope Envelope
	req.NoError(json.Unmarshal(raw, &envelope))
	req.Equal("postResult", envelope.Event)

	var fields map[string]json.RawMessage
	req.NoError(json.Unmarshal(envelope.Data, &fields))
	req.NotContains(fields, "messageId")

	var dto postResultDTO
	req.NoError(json.Unmarshal(envelope.Data, &dto))
	req.False(dto.OK)
	req.Equal("club not found", dto.Reason)
}

func Test_Decode_Club_Chat_Payload(t *testing.T) {
	req := require.New(t)

	payload, err := decodePayload[ClubChatMessagePayload](
		json.RawMessage(`{"clubId":"c1","userId":"u1","text":"hello"}`))
	req.NoError(err)
	req.Equal("c1", payload.ClubID)
	req.Equal("u1", payload.UserID)
	req.Equal("hello", payload.Text)
}

func Test_Decode_Rejects_Missing_Fields(t *testing.T) {
	req := require.New(t)

	// Missing text
	_, err := decodePayload[ClubChatMessagePayload](
		json.RawMessage(`{"clubId":"c1","userId":"u1"}`))
	req.Error(err)

	// Malformed JSON
	_, err = decodePayload[JoinRoomPayload](json.RawMessage(`{"gameId":`))
	req.Error(err)
}
