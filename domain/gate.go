package domain

import "club-hub/errors"

// CanReadChat decides whether an actor may read a club's chat log.
// Organizers are always permitted. Users must appear in the club's
// member list. Anonymous callers cannot pass the membership check.
//
// Club metadata and member rosters are intentionally not gated here;
// only the chat log is membership-protected.
func CanReadChat(actor Actor, club Club) error {
	if actor == nil {
		return errors.ErrForbidden
	}
	if actor.Kind() == KindOrganizer {
		return nil
	}
	if club.HasMember(actor.ActorID()) {
		return nil
	}
	return errors.ErrForbidden
}
