package core

import (
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LinkTsang/PicoChat/internal/metrics"
	"github.com/LinkTsang/PicoChat/internal/proto"
)

// Handler receives the domain events a session's read loop produces.
// The server implements it by wiring events to the connection directory
// and room registry.
type Handler interface {
	OnLogin(s *Session, name string)
	OnLogout(s *Session)
	OnJoinRoom(s *Session, room string)
	OnLeaveRoom(s *Session, room string)
	OnListRooms(s *Session)
	OnMessage(s *Session, msg proto.Message)
	OnUnknown(s *Session, f proto.Frame)
	OnClosed(s *Session)
}

// Session owns one accepted connection: it decodes inbound frames into
// handler events and writes outbound frames. Identity is empty until a
// login succeeds and unique server-wide while set.
type Session struct {
	id   string
	conn net.Conn
	log  zerolog.Logger

	mu    sync.RWMutex
	name  string
	rooms []string

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// NewSession wraps an accepted connection.
func NewSession(conn net.Conn, logger *zerolog.Logger) *Session {
	id := uuid.NewString()
	sessionLog := logger.With().
		Str("session_id", id).
		Str("remote_addr", conn.RemoteAddr().String()).
		Logger()
	return &Session{
		id:   id,
		conn: conn,
		log:  sessionLog,
	}
}

// ID returns the server-assigned session identifier used in logs.
func (s *Session) ID() string { return s.id }

// RemoteAddr returns the peer address.
func (s *Session) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// Name returns the logged-in display name, or "" while anonymous.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *Session) setName(name string) {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
}

// Rooms returns a snapshot of the rooms this session has joined, in
// join order.
func (s *Session) Rooms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.rooms))
	copy(out, s.rooms)
	return out
}

// HasRoom reports whether the session currently belongs to room.
func (s *Session) HasRoom(room string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rooms {
		if r == room {
			return true
		}
	}
	return false
}

func (s *Session) addRoom(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r == room {
			return
		}
	}
	s.rooms = append(s.rooms, room)
}

func (s *Session) removeRoom(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rooms {
		if r == room {
			s.rooms = append(s.rooms[:i], s.rooms[i+1:]...)
			return
		}
	}
}

func (s *Session) clearRooms() {
	s.mu.Lock()
	s.rooms = nil
	s.mu.Unlock()
}

// Handle runs the blocking read loop until the peer disconnects, a framing
// error occurs, or the client announces CLIENT_DISCONNECT. The handler's
// OnClosed fires exactly once when the loop exits, whatever the reason.
func (s *Session) Handle(h Handler) {
	defer func() {
		_ = s.Close()
		h.OnClosed(s)
	}()

	for {
		f, err := proto.ReadFrame(s.conn)
		if err != nil {
			// Transport and framing faults are both the normal
			// disconnect path for this session only.
			s.log.Debug().Err(err).Msg("read loop ended")
			return
		}
		label := f.Type.String()
		if !f.Type.Known() {
			// One label for all unknown types keeps cardinality bounded.
			label = "UNKNOWN"
		}
		metrics.FramesTotal.WithLabelValues(label).Inc()

		switch f.Type {
		case proto.ClientLogin:
			h.OnLogin(s, string(f.Data))
		case proto.ClientLogout:
			h.OnLogout(s)
		case proto.ClientJoinRoom:
			h.OnJoinRoom(s, string(f.Data))
		case proto.ClientLeaveRoom:
			h.OnLeaveRoom(s, string(f.Data))
		case proto.ClientListJoinedRooms:
			h.OnListRooms(s)
		case proto.ClientMessage:
			var msg proto.Message
			if err := proto.Unmarshal(f.Data, &msg); err != nil {
				s.log.Warn().Err(err).Msg("malformed message payload")
				if err := s.Send(proto.SystemError, []byte("malformed message payload")); err != nil {
					return
				}
				continue
			}
			h.OnMessage(s, msg)
		case proto.ClientDisconnect:
			return
		default:
			h.OnUnknown(s, f)
		}
	}
}

// Send writes one frame. Writes are serialized so concurrent broadcasts
// cannot interleave frames on the stream. A broken connection is returned
// as an error for the caller to log; it never panics.
func (s *Session) Send(t proto.MessageType, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return proto.WriteFrame(s.conn, t, data)
}

// Close releases the transport. Safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}
