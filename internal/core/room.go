package core

import "sync"

// Room groups the sessions subscribed to one named broadcast channel.
// Rooms are created lazily on first join and never destroyed; an empty
// room simply waits for its next member.
type Room struct {
	name string

	mu      sync.Mutex
	members map[*Session]struct{}
}

func newRoom(name string) *Room {
	return &Room{
		name:    name,
		members: make(map[*Session]struct{}),
	}
}

// Name returns the immutable room name.
func (r *Room) Name() string { return r.name }

// add inserts s. Returns false if s was already a member.
func (r *Room) add(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.members[s]; exists {
		return false
	}
	r.members[s] = struct{}{}
	return true
}

// remove deletes s. Returns false if s was not a member.
func (r *Room) remove(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.members[s]; !exists {
		return false
	}
	delete(r.members, s)
	return true
}

// snapshot copies the member set under the room lock so delivery can
// proceed without holding it. A member leaving mid-broadcast may still
// receive an in-flight write; that write failing is tolerated.
func (r *Room) snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := make([]*Session, 0, len(r.members))
	for s := range r.members {
		members = append(members, s)
	}
	return members
}

// Len returns the current member count.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}
