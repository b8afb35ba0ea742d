package domain

import "slices"

// Club groups actors around a shared activity. Members holds actor
// identifiers of either kind; uniqueness is the membership mutator's
// job, not a storage constraint.
type Club struct {
	ID      string
	Name    string
	Icon    string
	Members []string
}

func (c Club) HasMember(actorID string) bool {
	return slices.Contains(c.Members, actorID)
}
