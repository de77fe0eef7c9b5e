// Package proto implements the binary wire protocol: a fixed-width type tag
// followed by a length-prefixed payload, plus the JSON records carried inside
// those payloads.
package proto

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPayloadSize caps a single frame's payload. A length beyond it is a
// framing error, not an allocation request.
const MaxPayloadSize = 16 << 20

const headerSize = 8

// ErrFrameTooLarge is returned when a decoded length prefix exceeds
// MaxPayloadSize.
var ErrFrameTooLarge = fmt.Errorf("frame payload exceeds %d bytes", MaxPayloadSize)

// Frame is one complete unit on the wire.
type Frame struct {
	Type MessageType
	Data []byte
}

// WriteFrame encodes one frame onto w: type and length as big-endian
// uint32, then the payload bytes. A nil payload writes a zero length.
func WriteFrame(w io.Writer, t MessageType, data []byte) error {
	if len(data) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	buf := make([]byte, headerSize+len(data))
	binary.BigEndian.PutUint32(buf[0:4], uint32(t))
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(data)))
	copy(buf[headerSize:], data)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame blocks until a complete frame is available on r. A stream that
// ends cleanly between frames returns io.EOF; one that ends mid-frame
// returns io.ErrUnexpectedEOF. Both mean the peer is gone.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		// io.ReadFull yields io.EOF between frames and
		// io.ErrUnexpectedEOF for a torn header.
		return Frame{}, err
	}

	t := MessageType(binary.BigEndian.Uint32(header[0:4]))
	length := binary.BigEndian.Uint32(header[4:8])
	if length > MaxPayloadSize {
		return Frame{}, ErrFrameTooLarge
	}
	if length == 0 {
		return Frame{Type: t}, nil
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			// Stream ended after the header: still a torn frame.
			err = io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}
	return Frame{Type: t, Data: data}, nil
}
