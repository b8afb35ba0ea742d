// Package runtime owns event fan-out: the connection registry, the
// broadcast dispatcher, and the supervised workers around them. It
// orchestrates without containing domain rules.
package runtime

import (
	"sync"

	"club-hub/contract"
	"club-hub/domain"
)

type Set map[string]struct{}

// Registry tracks live connections and their room subscriptions. It is
// created by the server process at startup and passed to whoever needs
// it; handler code never reaches for a package-level instance.
type Registry struct {
	mu          sync.RWMutex
	Sessions    map[string]contract.EventSink // connection id -> sink
	RoomMembers map[domain.RoomKey]Set        // room -> connection ids
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions:    make(map[string]contract.EventSink),
		RoomMembers: make(map[domain.RoomKey]Set),
	}
}

// Register records a connection's sink as soon as the socket is
// established, before any room join. Global broadcasts reach every
// registered connection, subscribed to a room or not.
func (r *Registry) Register(connID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sessions[connID] = sink
}

// Subscribe adds a connection to a room. There is no membership or
// authentication check here: any connection may join any room. That
// asymmetry with the gated history read is deliberate and preserved.
func (r *Registry) Subscribe(connID string, room domain.RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.Sessions[connID]; !ok {
		return
	}
	if _, ok := r.RoomMembers[room]; !ok {
		r.RoomMembers[room] = make(Set)
	}
	r.RoomMembers[room][connID] = struct{}{}
}

// Drop removes a connection entirely: its session and every room it
// joined. Emptied rooms are deleted so the map doesn't leak over time.
func (r *Registry) Drop(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.Sessions, connID)

	for room, members := range r.RoomMembers {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.RoomMembers, room)
		}
	}
}

// GetSinksForRoom resolves a room's connection ids into live sinks.
// Returns nil for an unknown or empty room.
func (r *Registry) GetSinksForRoom(room domain.RoomKey) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.RoomMembers[room]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for connID := range members {
		if sink, exists := r.Sessions[connID]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// GetAllSinks returns every registered connection, for unscoped
// notification broadcasts.
func (r *Registry) GetAllSinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for _, sink := range r.Sessions {
		sinks = append(sinks, sink)
	}
	return sinks
}

func (r *Registry) GetSink(connID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.Sessions[connID]
	return sink, ok
}
