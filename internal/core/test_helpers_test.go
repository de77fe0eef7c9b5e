package core

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/LinkTsang/PicoChat/internal/proto"
)

// newTestSession returns a session backed by an in-memory pipe and a
// channel carrying every frame the session writes.
func newTestSession(t *testing.T) (*Session, <-chan proto.Frame) {
	t.Helper()

	server, client := net.Pipe()
	logger := zerolog.Nop()
	sess := NewSession(server, &logger)

	frames := make(chan proto.Frame, 64)
	go func() {
		defer close(frames)
		for {
			f, err := proto.ReadFrame(client)
			if err != nil {
				return
			}
			frames <- f
		}
	}()

	t.Cleanup(func() {
		_ = sess.Close()
		_ = client.Close()
	})
	return sess, frames
}

func mustFrame(t *testing.T, frames <-chan proto.Frame, want proto.MessageType) proto.Frame {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				t.Fatalf("frame channel closed while waiting for %v", want)
			}
			if f.Type == want {
				return f
			}
		case <-deadline:
			t.Fatalf("expected frame type %v not received", want)
		}
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}
