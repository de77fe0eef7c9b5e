package proto

import "fmt"

// MessageType tags a frame with the kind of payload it carries.
type MessageType uint32

const (
	ClientLogin MessageType = iota
	ClientLogout
	ClientJoinRoom
	ClientLeaveRoom
	ClientListJoinedRooms
	ClientMessage
	ClientDisconnect
	SystemLoginOK
	SystemLoginFailed
	SystemJoinRoomOK
	SystemLeaveRoomOK
	SystemMessageOK
	SystemOK
	SystemError
	SystemUnjoinRoom
	NoLogged
	AlreadyJoined
)

var typeNames = map[MessageType]string{
	ClientLogin:           "CLIENT_LOGIN",
	ClientLogout:          "CLIENT_LOGOUT",
	ClientJoinRoom:        "CLIENT_JOIN_ROOM",
	ClientLeaveRoom:       "CLIENT_LEAVE_ROOM",
	ClientListJoinedRooms: "CLIENT_LIST_JOINED_ROOMS",
	ClientMessage:         "CLIENT_MESSAGE",
	ClientDisconnect:      "CLIENT_DISCONNECT",
	SystemLoginOK:         "SYSTEM_LOGIN_OK",
	SystemLoginFailed:     "SYSTEM_LOGIN_FAILED",
	SystemJoinRoomOK:      "SYSTEM_JOIN_ROOM_OK",
	SystemLeaveRoomOK:     "SYSTEM_LEAVE_ROOM_OK",
	SystemMessageOK:       "SYSTEM_MESSAGE_OK",
	SystemOK:              "SYSTEM_OK",
	SystemError:           "SYSTEM_ERROR",
	SystemUnjoinRoom:      "SYSTEM_UNJOIN_ROOM",
	NoLogged:              "NO_LOGGED",
	AlreadyJoined:         "ALREADY_JOINNED",
}

// Known reports whether t belongs to the closed protocol set. Frames with
// unknown types still decode; consumers surface them as opaque system
// messages instead of rejecting the peer.
func (t MessageType) Known() bool {
	_, ok := typeNames[t]
	return ok
}

func (t MessageType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%08x)", uint32(t))
}
