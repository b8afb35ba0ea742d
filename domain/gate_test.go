package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"club-hub/errors"
)

func TestCanReadChat_Member_User_Allowed(t *testing.T) {
	req := require.New(t)
	club := Club{ID: "c1", Members: []string{"u1"}}
	user := User{ID: "u1"}

	// When a member user reads the chat
	err := CanReadChat(user, club)

	// Then the gate allows it
	req.NoError(err)
}

func TestCanReadChat_NonMember_User_Forbidden(t *testing.T) {
	req := require.New(t)
	club := Club{ID: "c1", Members: []string{"u1"}}
	outsider := User{ID: "u2"}

	// When a non-member user reads the chat
	err := CanReadChat(outsider, club)

	// Then the gate refuses with Forbidden, not NotFound
	req.ErrorIs(err, errors.ErrForbidden)
}

func TestCanReadChat_Organizer_Bypasses_Membership(t *testing.T) {
	req := require.New(t)

	// Given an organizer who never joined the club
	club := Club{ID: "c1", Members: []string{"u1"}}
	organizer := Organizer{ID: "o1"}

	// Then the organizer may read regardless of membership
	req.NoError(CanReadChat(organizer, club))
}

func TestCanReadChat_Anonymous_Forbidden(t *testing.T) {
	req := require.New(t)
	club := Club{ID: "c1", Members: []string{"u1"}}

	// When nobody is authenticated
	err := CanReadChat(nil, club)

	// Then the chat stays closed
	req.ErrorIs(err, errors.ErrForbidden)
}
