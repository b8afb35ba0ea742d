//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"club-hub/domain"
	"club-hub/errors"
)

type IChatLogRepository interface {
	AppendClubMessage(m domain.Message) error
	ListClubMessages(clubID string) ([]domain.Message, error)
	DeleteClubMessage(clubID string, messageID uuid.UUID) error
	AppendGameMessage(m domain.GameMessage) error
}

type ChatLogRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewChatLogRepository(db *badger.DB, log *slog.Logger) ChatLogRepository {
	return ChatLogRepository{db: db, log: log}
}

type diskMessage struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
	At     int64  `json:"at"` // unix nanoseconds
}

// Message keys are "clubmsg:{club_id}:{timestamp_padded}:{uuid}":
//  1. The 19-digit zero padding makes a prefix scan return messages in
//     chronological order (lexicographic = numeric).
//  2. The UUID disambiguates two messages landing on the same nanosecond.
func clubMessageKey(clubID string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("clubmsg:%s:%019d:%s", clubID, at.UnixNano(), id))
}

func gameMessageKey(gameID string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("gamemsg:%s:%019d:%s", gameID, at.UnixNano(), id))
}

func (r ChatLogRepository) AppendClubMessage(m domain.Message) error {
	data, err := json.Marshal(diskMessage{
		ID:     m.ID.String(),
		Author: m.AuthorID,
		Text:   m.Text,
		At:     m.At.UnixNano(),
	})
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(clubMessageKey(m.ClubID, m.At, m.ID), data)
	})
}

// ListClubMessages returns the club's full log ascending by timestamp.
// The key layout already yields that order, but the result is re-sorted
// rather than trusted: storage order is an implementation detail.
func (r ChatLogRepository) ListClubMessages(clubID string) ([]domain.Message, error) {
	var records []diskMessage
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("clubmsg:" + clubID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec diskMessage
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := lo.Map(records, func(rec diskMessage, _ int) domain.Message {
		id, err := uuid.Parse(rec.ID)
		if err != nil {
			r.log.Warn("Unparseable message id in store", "club_id", clubID, "id", rec.ID)
		}
		return domain.Message{
			ID:       id,
			ClubID:   clubID,
			AuthorID: rec.Author,
			Text:     rec.Text,
			At:       time.Unix(0, rec.At).UTC(),
		}
	})
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].At.Before(messages[j].At)
	})
	return messages, nil
}

// DeleteClubMessage removes the first stored message whose identifier
// matches. Retrying after a successful delete reports the message as
// missing; the caller decides whether that matters.
func (r ChatLogRepository) DeleteClubMessage(clubID string, messageID uuid.UUID) error {
	suffix := ":" + messageID.String()
	return r.db.Update(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte("clubmsg:" + clubID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if strings.HasSuffix(string(key), suffix) {
				return txn.Delete(key)
			}
		}
		return errors.ErrMessageNotFound
	})
}

func (r ChatLogRepository) AppendGameMessage(m domain.GameMessage) error {
	data, err := json.Marshal(diskMessage{
		ID:     m.ID.String(),
		Author: m.AuthorID,
		Text:   m.Text,
		At:     m.At.UnixNano(),
	})
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameMessageKey(m.GameID, m.At, m.ID), data)
	})
}
