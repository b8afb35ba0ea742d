//go:generate go run go.uber.org/mock/mockgen -source=membership.go -destination=../mocks/mock_membership_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"club-hub/domain"
	"club-hub/errors"
)

type IMembershipRepository interface {
	Join(kind domain.ActorKind, actorID, clubID string) error
	Exit(kind domain.ActorKind, actorID, clubID string) error
}

// MembershipRepository mutates the two sides of a membership —
// club.members and actor.clubs — inside a single Badger transaction, so
// the bidirectional invariant cannot be broken by a crash between the
// two writes.
type MembershipRepository struct {
	db *badger.DB
}

func NewMembershipRepository(db *badger.DB) MembershipRepository {
	return MembershipRepository{db: db}
}

// Join adds the actor to the club's member list and the club to the
// actor's club list. Both additions are no-ops when already present, so
// repeated joins stay idempotent.
func (r MembershipRepository) Join(kind domain.ActorKind, actorID, clubID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		club, err := readClub(txn, clubID)
		if err != nil {
			return err
		}
		actor, err := readActor(txn, kind, actorID)
		if err != nil {
			return err
		}

		if !slices.Contains(club.Members, actorID) {
			club.Members = append(club.Members, actorID)
		}
		if !slices.Contains(actor.Clubs, clubID) {
			actor.Clubs = append(actor.Clubs, clubID)
		}

		if err = writeClub(txn, club); err != nil {
			return err
		}
		return writeActor(txn, kind, actor)
	})
}

// Exit removes the actor from both collections. Removing a non-member is
// a no-op, matching the filter-based removal the platform relies on.
func (r MembershipRepository) Exit(kind domain.ActorKind, actorID, clubID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		club, err := readClub(txn, clubID)
		if err != nil {
			return err
		}
		actor, err := readActor(txn, kind, actorID)
		if err != nil {
			return err
		}

		club.Members = lo.Reject(club.Members, func(id string, _ int) bool {
			return id == actorID
		})
		actor.Clubs = lo.Reject(actor.Clubs, func(id string, _ int) bool {
			return id == clubID
		})

		if err = writeClub(txn, club); err != nil {
			return err
		}
		return writeActor(txn, kind, actor)
	})
}

func readClub(txn *badger.Txn, clubID string) (diskClub, error) {
	var rec diskClub
	item, err := txn.Get(clubKey(clubID))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return diskClub{}, errors.ErrClubNotFound
	}
	if err != nil {
		return diskClub{}, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err
}

func writeClub(txn *badger.Txn, rec diskClub) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set(clubKey(rec.ID), data)
}

func readActor(txn *badger.Txn, kind domain.ActorKind, actorID string) (diskActor, error) {
	var rec diskActor
	item, err := txn.Get(actorKey(kind, actorID))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return diskActor{}, errors.ErrActorNotFound
	}
	if err != nil {
		return diskActor{}, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err
}

func writeActor(txn *badger.Txn, kind domain.ActorKind, rec diskActor) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set(actorKey(kind, rec.ID), data)
}
