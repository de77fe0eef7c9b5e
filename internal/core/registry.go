package core

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/LinkTsang/PicoChat/internal/metrics"
	"github.com/LinkTsang/PicoChat/internal/proto"
)

// JoinResult reports which case a join request hit, so the caller can
// pick the exact acknowledgment.
type JoinResult int

const (
	// RoomCreated means the room did not exist and was created with
	// the session as its first member.
	RoomCreated JoinResult = iota
	// Joined means the session was added to an existing room.
	Joined
	// AlreadyMember means the session was a member already; the join
	// is an idempotent no-op.
	AlreadyMember
)

// Registry maps room names to member sets and keeps the bidirectional
// invariant: a session is in a room's member set iff the room name is in
// the session's joined list. Both sides are updated under the registry
// lock.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	log   *zerolog.Logger
}

// NewRegistry constructs an empty room registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		log:   logger,
	}
}

// Join adds s to the named room, creating the room if absent.
func (g *Registry) Join(name string, s *Session) JoinResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[name]
	created := false
	if !ok {
		room = newRoom(name)
		g.rooms[name] = room
		created = true
		g.log.Info().Str("room", name).Msg("room created")
	}
	if !room.add(s) {
		return AlreadyMember
	}
	s.addRoom(name)
	if created {
		return RoomCreated
	}
	return Joined
}

// Leave removes s from the named room. Returns false if the room does
// not exist or s was not a member.
func (g *Registry) Leave(name string, s *Session) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[name]
	if !ok || !room.remove(s) {
		return false
	}
	s.removeRoom(name)
	return true
}

// Lookup returns the room with the given name, if it exists.
func (g *Registry) Lookup(name string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[name]
	return room, ok
}

// Broadcast delivers msg to every current member of msg.Room except the
// session whose identity equals the author. Delivery walks a snapshot of
// the member set; each recipient's write happens in turn, and a failed
// write is logged for that recipient without failing the rest. Returns
// the number of successful deliveries.
func (g *Registry) Broadcast(msg proto.Message) int {
	g.mu.Lock()
	room := g.rooms[msg.Room]
	g.mu.Unlock()
	if room == nil {
		return 0
	}

	data, err := proto.Marshal(msg)
	if err != nil {
		g.log.Error().Err(err).Str("room", msg.Room).Msg("encode broadcast")
		return 0
	}

	members := room.snapshot()
	delivered := 0
	for _, member := range members {
		if member.Name() == msg.Author {
			continue
		}
		if err := member.Send(proto.ClientMessage, data); err != nil {
			g.log.Warn().Err(err).
				Str("room", msg.Room).
				Str("recipient", member.ID()).
				Msg("broadcast delivery failed")
			continue
		}
		delivered++
	}
	metrics.BroadcastFanout.Observe(float64(delivered))
	return delivered
}

// RemoveEverywhere drops s from every room in rooms and clears the
// session's joined list. Callers pass the session's own snapshot
// (Session.Rooms) so the walk cannot race the structure it iterates.
func (g *Registry) RemoveEverywhere(s *Session, rooms []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, name := range rooms {
		if room, ok := g.rooms[name]; ok {
			room.remove(s)
		}
	}
	s.clearRooms()
}
