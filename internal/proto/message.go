package proto

import "encoding/json"

// Message is a chat message relayed through a room. Color, font and
// attachment are presentation hints the server carries opaquely.
type Message struct {
	ID         string      `json:"id,omitempty"`
	Author     string      `json:"author"`
	Room       string      `json:"room"`
	Content    string      `json:"content"`
	Color      string      `json:"color,omitempty"`
	Font       string      `json:"font,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Attachment describes a file carried inline in a message. The whole
// payload travels in one frame; there is no resend protocol.
type Attachment struct {
	FileID string `json:"file_id"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
}

// LoginInfo acknowledges or rejects a login attempt.
type LoginInfo struct {
	Name    string `json:"name"`
	Message string `json:"message,omitempty"`
}

// RoomInfo acknowledges a join or leave.
type RoomInfo struct {
	Room    string `json:"room"`
	Message string `json:"message,omitempty"`
}

// Receipt confirms delivery of a message back to its sender only,
// correlated by the client-generated message id.
type Receipt struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ReceiptStatusOK is the status carried by a successful receipt.
const ReceiptStatusOK = "ok"

// Marshal encodes a payload record as JSON bytes for a frame.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes a frame payload into a record.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
