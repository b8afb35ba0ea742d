//go:generate go run go.uber.org/mock/mockgen -source=club_service.go -destination=../mocks/mock_club_service.go -package=mocks
package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"club-hub/domain"
	"club-hub/errors"
	"club-hub/repositories"
)

type IClubService interface {
	ListClubs(search string, actor domain.Actor) ([]ClubSummary, error)
	GetClub(clubID string) (domain.Club, error)
	Join(actor domain.Actor, clubID string) error
	Exit(actor domain.Actor, clubID string) error
	ChatHistory(actor domain.Actor, clubID string) ([]MessageView, error)
	DeleteMessage(clubID string, messageID uuid.UUID) error
	Members(clubID string) ([]domain.Profile, error)
}

// ClubSummary is the club listing shape: metadata plus the caller's
// joined flag and the member count.
type ClubSummary struct {
	ID           string
	Name         string
	Icon         string
	MembersCount int
	Joined       bool
}

type ClubService struct {
	clubs      repositories.IClubRepository
	actors     repositories.IActorRepository
	membership repositories.IMembershipRepository
	chat       repositories.IChatLogRepository
}

func NewClubService(clubs repositories.IClubRepository,
	actors repositories.IActorRepository,
	membership repositories.IMembershipRepository,
	chat repositories.IChatLogRepository) *ClubService {
	return &ClubService{clubs: clubs, actors: actors, membership: membership, chat: chat}
}

// ListClubs returns club summaries, optionally filtered by name. The
// joined flag reflects the calling actor's memberships; anonymous
// callers see every flag false. Browsing is not gated.
func (s *ClubService) ListClubs(search string, actor domain.Actor) ([]ClubSummary, error) {
	clubs, err := s.clubs.ListClubs(search)
	if err != nil {
		return nil, err
	}

	joined := map[string]struct{}{}
	if actor != nil {
		for _, id := range actor.ClubIDs() {
			joined[id] = struct{}{}
		}
	}

	return lo.Map(clubs, func(club domain.Club, _ int) ClubSummary {
		_, isMember := joined[club.ID]
		return ClubSummary{
			ID:           club.ID,
			Name:         club.Name,
			Icon:         club.Icon,
			MembersCount: len(club.Members),
			Joined:       isMember,
		}
	}), nil
}

func (s *ClubService) GetClub(clubID string) (domain.Club, error) {
	return s.clubs.GetClub(clubID)
}

// Join adds the actor to the club and the club to the actor, both sides
// in one storage transaction. Joining twice is idempotent.
func (s *ClubService) Join(actor domain.Actor, clubID string) error {
	if actor == nil {
		return errors.ErrUnauthorized
	}
	return s.membership.Join(actor.Kind(), actor.ActorID(), clubID)
}

// Exit is the symmetric removal. Exiting a club the actor never joined
// is a no-op, not an error.
func (s *ClubService) Exit(actor domain.Actor, clubID string) error {
	if actor == nil {
		return errors.ErrUnauthorized
	}
	return s.membership.Exit(actor.Kind(), actor.ActorID(), clubID)
}

// MessageView is a chat log entry with its author reference resolved to
// a display profile.
type MessageView struct {
	ID     uuid.UUID
	ClubID string
	Author domain.Profile
	Text   string
	At     time.Time
}

// ChatHistory returns the club's messages ascending by timestamp, after
// the access gate has allowed the read. Author references are resolved
// to display profiles; a dangling reference degrades to a bare id.
func (s *ClubService) ChatHistory(actor domain.Actor, clubID string) ([]MessageView, error) {
	club, err := s.clubs.GetClub(clubID)
	if err != nil {
		return nil, err
	}
	if err = domain.CanReadChat(actor, club); err != nil {
		return nil, err
	}

	messages, err := s.chat.ListClubMessages(clubID)
	if err != nil {
		return nil, err
	}

	profiles := map[string]domain.Profile{}
	return lo.Map(messages, func(m domain.Message, _ int) MessageView {
		profile, ok := profiles[m.AuthorID]
		if !ok {
			var err error
			profile, err = s.actors.ResolveProfile(m.AuthorID)
			if err != nil {
				profile = domain.Profile{ID: m.AuthorID}
			}
			profiles[m.AuthorID] = profile
		}
		return MessageView{ID: m.ID, ClubID: m.ClubID, Author: profile, Text: m.Text, At: m.At}
	}), nil
}

// DeleteMessage removes one message by identifier. The organizer-only
// restriction is enforced at the route, not here.
func (s *ClubService) DeleteMessage(clubID string, messageID uuid.UUID) error {
	if _, err := s.clubs.GetClub(clubID); err != nil {
		return err
	}
	return s.chat.DeleteClubMessage(clubID, messageID)
}

// Members returns the full member roster with contact identifiers.
// Roster visibility is intentionally unrestricted.
func (s *ClubService) Members(clubID string) ([]domain.Profile, error) {
	club, err := s.clubs.GetClub(clubID)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(club.Members))
	for _, actorID := range club.Members {
		profile, err := s.actors.ResolveProfile(actorID)
		if err != nil {
			// A dangling member reference should not hide the rest of
			// the roster.
			profile = domain.Profile{ID: actorID}
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}
