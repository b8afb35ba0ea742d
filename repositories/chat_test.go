package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"club-hub/domain"
	"club-hub/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Append_And_List_Club_Messages_Sorted(t *testing.T) {
	req := require.New(t)
	repository := NewChatLogRepository(openTestDB(t), slog.Default())
	at := time.Now().UTC()

	// Given three messages appended out of timestamp order
	messages := []domain.Message{
		{ID: uuid.New(), ClubID: "c1", AuthorID: "u2", Text: "second", At: at.Add(1 * time.Minute)},
		{ID: uuid.New(), ClubID: "c1", AuthorID: "u1", Text: "first", At: at},
		{ID: uuid.New(), ClubID: "c1", AuthorID: "u3", Text: "third", At: at.Add(2 * time.Minute)},
	}
	for _, m := range messages {
		req.NoError(repository.AppendClubMessage(m))
	}

	// When the log is read
	fetched, err := repository.ListClubMessages("c1")
	req.NoError(err)

	// Then messages come back ascending by timestamp
	req.Len(fetched, 3)
	req.Equal("first", fetched[0].Text)
	req.Equal("second", fetched[1].Text)
	req.Equal("third", fetched[2].Text)
	for i := 1; i < len(fetched); i++ {
		req.False(fetched[i].At.Before(fetched[i-1].At))
	}
}

func Test_List_Is_Scoped_To_One_Club(t *testing.T) {
	req := require.New(t)
	repository := NewChatLogRepository(openTestDB(t), slog.Default())
	at := time.Now().UTC()

	req.NoError(repository.AppendClubMessage(domain.Message{
		ID: uuid.New(), ClubID: "c1", AuthorID: "u1", Text: "for c1", At: at}))
	req.NoError(repository.AppendClubMessage(domain.Message{
		ID: uuid.New(), ClubID: "c2", AuthorID: "u1", Text: "for c2", At: at}))

	fetched, err := repository.ListClubMessages("c1")
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("for c1", fetched[0].Text)
}

func Test_Delete_Club_Message(t *testing.T) {
	req := require.New(t)
	repository := NewChatLogRepository(openTestDB(t), slog.Default())
	id := uuid.New()

	// Given one stored message
	req.NoError(repository.AppendClubMessage(domain.Message{
		ID: id, ClubID: "c1", AuthorID: "u1", Text: "hello", At: time.Now().UTC()}))

	// When it is deleted by identifier
	req.NoError(repository.DeleteClubMessage("c1", id))

	// Then the log is empty
	// And a retry reports the message as missing
	fetched, err := repository.ListClubMessages("c1")
	req.NoError(err)
	req.Empty(fetched)
	req.ErrorIs(repository.DeleteClubMessage("c1", id), errors.ErrMessageNotFound)
}

func Test_Delete_Unknown_Message_Leaves_Log_Unchanged(t *testing.T) {
	req := require.New(t)
	repository := NewChatLogRepository(openTestDB(t), slog.Default())

	// Given a log with one message
	req.NoError(repository.AppendClubMessage(domain.Message{
		ID: uuid.New(), ClubID: "c1", AuthorID: "u1", Text: "hello", At: time.Now().UTC()}))

	// When deleting an identifier that never existed
	err := repository.DeleteClubMessage("c1", uuid.New())

	// Then NotFound is reported and the length invariant holds
	req.ErrorIs(err, errors.ErrMessageNotFound)
	fetched, err := repository.ListClubMessages("c1")
	req.NoError(err)
	req.Len(fetched, 1)
}

func Test_Append_Game_Message_Is_Separate_Key_Space(t *testing.T) {
	req := require.New(t)
	repository := NewChatLogRepository(openTestDB(t), slog.Default())

	// Given a game message for an id shared with a club
	req.NoError(repository.AppendGameMessage(domain.GameMessage{
		ID: uuid.New(), GameID: "c1", AuthorID: "u1", Text: "game talk", At: time.Now().UTC()}))

	// Then the club log with the same identifier stays empty
	fetched, err := repository.ListClubMessages("c1")
	req.NoError(err)
	req.Empty(fetched)
}
