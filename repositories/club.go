//go:generate go run go.uber.org/mock/mockgen -source=club.go -destination=../mocks/mock_club_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"club-hub/domain"
	"club-hub/errors"
)

type IClubRepository interface {
	GetClub(id string) (domain.Club, error)
	ListClubs(search string) ([]domain.Club, error)
	SaveClub(club domain.Club) error
}

type ClubRepository struct {
	db *badger.DB
}

func NewClubRepository(db *badger.DB) ClubRepository {
	return ClubRepository{db: db}
}

// diskClub is the stored representation of a club. Chat messages are not
// embedded here; they live under their own per-club key prefix so the
// log can grow without rewriting the club record on every post.
type diskClub struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Icon    string   `json:"icon"`
	Members []string `json:"members"`
}

func clubKey(id string) []byte {
	return []byte("club:" + id)
}

func (r ClubRepository) GetClub(id string) (domain.Club, error) {
	var rec diskClub
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(clubKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Club{}, errors.ErrClubNotFound
	}
	if err != nil {
		return domain.Club{}, err
	}
	return toClub(rec), nil
}

// ListClubs scans the club prefix and applies an optional
// case-insensitive substring filter on the name, mirroring the
// permissive search the platform has always offered.
func (r ClubRepository) ListClubs(search string) ([]domain.Club, error) {
	var clubs []domain.Club
	needle := strings.ToLower(search)
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("club:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec diskClub
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				if needle != "" && !strings.Contains(strings.ToLower(rec.Name), needle) {
					return nil
				}
				clubs = append(clubs, toClub(rec))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return clubs, err
}

func (r ClubRepository) SaveClub(club domain.Club) error {
	data, err := json.Marshal(fromClub(club))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(clubKey(club.ID), data)
	})
}

func toClub(rec diskClub) domain.Club {
	return domain.Club{ID: rec.ID, Name: rec.Name, Icon: rec.Icon, Members: rec.Members}
}

func fromClub(club domain.Club) diskClub {
	return diskClub{ID: club.ID, Name: club.Name, Icon: club.Icon, Members: club.Members}
}
