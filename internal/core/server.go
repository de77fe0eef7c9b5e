// Package core implements the chat relay engine: per-connection sessions,
// the name directory, the room registry, and the TCP accept loop that
// wires them together.
package core

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/LinkTsang/PicoChat/internal/metrics"
	"github.com/LinkTsang/PicoChat/internal/proto"
)

// Server owns the listening endpoint and the set of live sessions. It
// implements Handler, translating session events into directory and
// registry operations plus the matching acknowledgment frames.
type Server struct {
	addr string
	log  *zerolog.Logger

	directory *Directory
	rooms     *Registry

	listener  net.Listener
	connCount atomic.Int64
	closeOnce sync.Once
}

// NewServer builds a server that will bind addr on Listen.
func NewServer(addr string, logger *zerolog.Logger) *Server {
	return &Server{
		addr:      addr,
		log:       logger,
		directory: NewDirectory(),
		rooms:     NewRegistry(logger),
	}
}

// Directory exposes the connection directory.
func (s *Server) Directory() *Directory { return s.directory }

// Rooms exposes the room registry.
func (s *Server) Rooms() *Registry { return s.rooms }

// ConnCount returns the number of live connections.
func (s *Server) ConnCount() int64 { return s.connCount.Load() }

// Addr returns the bound address. Valid after Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listen binds the TCP endpoint. A bind failure is fatal to startup and
// is returned to the caller; Serve is never entered.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.addr, err)
	}
	s.listener = ln
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	return nil
}

// Serve accepts connections until Close, spawning one goroutine per
// session. Already-accepted sessions are not torn down on Close; they
// drain when their peers disconnect.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		sess := NewSession(conn, s.log)
		count := s.connCount.Add(1)
		metrics.ConnectedSessions.Inc()
		s.log.Info().
			Str("session_id", sess.ID()).
			Str("remote_addr", conn.RemoteAddr().String()).
			Int64("connections", count).
			Msg("client connected")

		go sess.Handle(s)
	}
}

// Close stops the accept loop by closing the listening socket.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.listener != nil {
			err = s.listener.Close()
		}
	})
	return err
}

// OnLogin handles a CLIENT_LOGIN carrying the requested name.
func (s *Server) OnLogin(sess *Session, name string) {
	if current := sess.Name(); current != "" {
		s.replyRecord(sess, proto.SystemLoginFailed, proto.LoginInfo{
			Name:    name,
			Message: fmt.Sprintf("already logged in as %q", current),
		})
		return
	}
	if name == "" {
		s.replyRecord(sess, proto.SystemLoginFailed, proto.LoginInfo{
			Message: "name must not be empty",
		})
		return
	}
	if !s.directory.TryRegister(name, sess) {
		s.replyRecord(sess, proto.SystemLoginFailed, proto.LoginInfo{
			Name:    name,
			Message: fmt.Sprintf("the name %q is already taken", name),
		})
		return
	}
	s.log.Info().Str("session_id", sess.ID()).Str("name", name).Msg("logged in")
	s.replyRecord(sess, proto.SystemLoginOK, proto.LoginInfo{Name: name})
}

// OnLogout returns the session to the anonymous state without closing
// the connection.
func (s *Server) OnLogout(sess *Session) {
	name := sess.Name()
	if name == "" {
		s.replyText(sess, proto.NoLogged, "not logged in")
		return
	}
	s.rooms.RemoveEverywhere(sess, sess.Rooms())
	s.directory.Unregister(name)
	s.log.Info().Str("session_id", sess.ID()).Str("name", name).Msg("logged out")
	s.replyText(sess, proto.SystemOK, "logged out")
}

// OnJoinRoom adds the session to a room, creating it if needed.
func (s *Server) OnJoinRoom(sess *Session, room string) {
	name := sess.Name()
	if name == "" {
		s.replyText(sess, proto.NoLogged, "not logged in")
		return
	}
	if room == "" {
		s.replyText(sess, proto.SystemError, "room name must not be empty")
		return
	}
	switch s.rooms.Join(room, sess) {
	case AlreadyMember:
		s.replyRecord(sess, proto.AlreadyJoined, proto.RoomInfo{
			Room:    room,
			Message: fmt.Sprintf("already joined the room %q", room),
		})
	case RoomCreated:
		s.log.Info().Str("name", name).Str("room", room).Msg("joined new room")
		s.replyRecord(sess, proto.SystemJoinRoomOK, proto.RoomInfo{
			Room:    room,
			Message: fmt.Sprintf("created and joined the room %q", room),
		})
	case Joined:
		s.log.Info().Str("name", name).Str("room", room).Msg("joined room")
		s.replyRecord(sess, proto.SystemJoinRoomOK, proto.RoomInfo{
			Room:    room,
			Message: fmt.Sprintf("joined the room %q", room),
		})
	}
}

// OnLeaveRoom removes the session from a room.
func (s *Server) OnLeaveRoom(sess *Session, room string) {
	name := sess.Name()
	if name == "" {
		s.replyText(sess, proto.NoLogged, "not logged in")
		return
	}
	if !s.rooms.Leave(room, sess) {
		s.replyText(sess, proto.SystemError, fmt.Sprintf("not joined the room %q", room))
		return
	}
	s.log.Info().Str("name", name).Str("room", room).Msg("left room")
	s.replyRecord(sess, proto.SystemLeaveRoomOK, proto.RoomInfo{
		Room:    room,
		Message: fmt.Sprintf("left the room %q", room),
	})
}

// OnListRooms answers with the session's joined rooms in join order.
func (s *Server) OnListRooms(sess *Session) {
	if sess.Name() == "" {
		s.replyText(sess, proto.NoLogged, "not logged in")
		return
	}
	rooms := sess.Rooms()
	if rooms == nil {
		rooms = []string{}
	}
	data, err := proto.Marshal(rooms)
	if err != nil {
		s.log.Error().Err(err).Msg("encode room list")
		return
	}
	s.reply(sess, proto.ClientListJoinedRooms, data)
}

// OnMessage validates authorship and membership, fans the message out to
// the room, and returns a receipt to the sender only.
func (s *Server) OnMessage(sess *Session, msg proto.Message) {
	name := sess.Name()
	if name == "" || msg.Author != name {
		s.replyText(sess, proto.NoLogged, "not logged in")
		return
	}
	if msg.Room == "" || !sess.HasRoom(msg.Room) {
		s.replyText(sess, proto.SystemUnjoinRoom, fmt.Sprintf("not joined the room %q", msg.Room))
		return
	}
	s.rooms.Broadcast(msg)
	s.replyRecord(sess, proto.SystemMessageOK, proto.Receipt{
		ID:     msg.ID,
		Status: proto.ReceiptStatusOK,
	})
}

// OnUnknown answers an unrecognized frame type without dropping the
// session, so forward-compatible clients keep working.
func (s *Server) OnUnknown(sess *Session, f proto.Frame) {
	s.log.Debug().
		Str("session_id", sess.ID()).
		Str("type", f.Type.String()).
		Int("payload_bytes", len(f.Data)).
		Msg("unsupported frame type")
	s.replyText(sess, proto.SystemError, fmt.Sprintf("unsupported message type %s", f.Type))
}

// OnClosed runs once per session when its read loop exits: the session
// leaves every room, gives its name back, and the connection counter
// drops.
func (s *Server) OnClosed(sess *Session) {
	s.rooms.RemoveEverywhere(sess, sess.Rooms())
	if name := sess.Name(); name != "" {
		s.directory.Unregister(name)
	}
	count := s.connCount.Add(-1)
	metrics.ConnectedSessions.Dec()
	s.log.Info().
		Str("session_id", sess.ID()).
		Int64("connections", count).
		Msg("client disconnected")
}

func (s *Server) reply(sess *Session, t proto.MessageType, data []byte) {
	if err := sess.Send(t, data); err != nil {
		s.log.Warn().Err(err).
			Str("session_id", sess.ID()).
			Str("type", t.String()).
			Msg("reply failed")
	}
}

func (s *Server) replyText(sess *Session, t proto.MessageType, text string) {
	s.reply(sess, t, []byte(text))
}

func (s *Server) replyRecord(sess *Session, t proto.MessageType, v any) {
	data, err := proto.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Str("type", t.String()).Msg("encode reply")
		return
	}
	s.reply(sess, t, data)
}
