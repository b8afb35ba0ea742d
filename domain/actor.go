// Package domain contains core concepts of the club platform.
// This file defines the two actor variants and their shared capability.
// No storage, network, or UI logic should be added here.
package domain

type ActorKind string

const (
	KindUser      ActorKind = "user"
	KindOrganizer ActorKind = "organizer"
)

// Actor is the capability shared by both variants: an identity that can
// hold club memberships. Code switches on Kind only where the behavior
// genuinely differs (the organizer bypass in the access gate).
type Actor interface {
	ActorID() string
	Kind() ActorKind
	ClubIDs() []string
}

type User struct {
	ID        string
	Name      string
	Email     string
	StudentID string
	Avatar    string
	Clubs     []string
}

func (u User) ActorID() string   { return u.ID }
func (u User) Kind() ActorKind   { return KindUser }
func (u User) ClubIDs() []string { return u.Clubs }

type Organizer struct {
	ID     string
	Name   string
	Email  string
	Avatar string
	Clubs  []string
}

func (o Organizer) ActorID() string   { return o.ID }
func (o Organizer) Kind() ActorKind   { return KindOrganizer }
func (o Organizer) ClubIDs() []string { return o.Clubs }

// Profile is the resolved display identity attached to broadcast
// messages and member rosters.
type Profile struct {
	ID        string
	Name      string
	Email     string
	StudentID string
	Avatar    string
}
