//go:generate go run go.uber.org/mock/mockgen -source=actor.go -destination=../mocks/mock_actor_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"club-hub/domain"
	"club-hub/errors"
)

type IActorRepository interface {
	GetActor(kind domain.ActorKind, id string) (domain.Actor, error)
	ResolveProfile(actorID string) (domain.Profile, error)
	SaveUser(user domain.User) error
	SaveOrganizer(org domain.Organizer) error
}

type ActorRepository struct {
	db *badger.DB
}

func NewActorRepository(db *badger.DB) ActorRepository {
	return ActorRepository{db: db}
}

// diskActor is shared by both variants; the key prefix carries the kind.
type diskActor struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	StudentID string   `json:"studentId,omitempty"`
	Avatar    string   `json:"avatar,omitempty"`
	Clubs     []string `json:"clubs"`
}

func actorKey(kind domain.ActorKind, id string) []byte {
	return []byte(fmt.Sprintf("actor:%s:%s", kind, id))
}

func (r ActorRepository) GetActor(kind domain.ActorKind, id string) (domain.Actor, error) {
	rec, err := r.getRecord(kind, id)
	if err != nil {
		return nil, err
	}
	return toActor(kind, rec), nil
}

// ResolveProfile looks an actor up by identifier alone, the way the
// real-time path receives authors. Users are tried first, organizers
// second; the two key spaces never collide on identifiers in practice.
func (r ActorRepository) ResolveProfile(actorID string) (domain.Profile, error) {
	for _, kind := range []domain.ActorKind{domain.KindUser, domain.KindOrganizer} {
		rec, err := r.getRecord(kind, actorID)
		if err == nil {
			return toProfile(rec), nil
		}
		if !stderrors.Is(err, errors.ErrActorNotFound) {
			return domain.Profile{}, err
		}
	}
	return domain.Profile{}, errors.ErrActorNotFound
}

func (r ActorRepository) SaveUser(user domain.User) error {
	rec := diskActor{ID: user.ID, Name: user.Name, Email: user.Email,
		StudentID: user.StudentID, Avatar: user.Avatar, Clubs: user.Clubs}
	return r.saveRecord(domain.KindUser, rec)
}

func (r ActorRepository) SaveOrganizer(org domain.Organizer) error {
	rec := diskActor{ID: org.ID, Name: org.Name, Email: org.Email,
		Avatar: org.Avatar, Clubs: org.Clubs}
	return r.saveRecord(domain.KindOrganizer, rec)
}

func (r ActorRepository) getRecord(kind domain.ActorKind, id string) (diskActor, error) {
	var rec diskActor
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(actorKey(kind, id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return diskActor{}, errors.ErrActorNotFound
	}
	return rec, err
}

func (r ActorRepository) saveRecord(kind domain.ActorKind, rec diskActor) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(actorKey(kind, rec.ID), data)
	})
}

func toActor(kind domain.ActorKind, rec diskActor) domain.Actor {
	if kind == domain.KindOrganizer {
		return domain.Organizer{ID: rec.ID, Name: rec.Name, Email: rec.Email,
			Avatar: rec.Avatar, Clubs: rec.Clubs}
	}
	return domain.User{ID: rec.ID, Name: rec.Name, Email: rec.Email,
		StudentID: rec.StudentID, Avatar: rec.Avatar, Clubs: rec.Clubs}
}

func toProfile(rec diskActor) domain.Profile {
	return domain.Profile{ID: rec.ID, Name: rec.Name, Email: rec.Email,
		StudentID: rec.StudentID, Avatar: rec.Avatar}
}
