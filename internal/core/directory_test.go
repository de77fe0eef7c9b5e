package core

import (
	"fmt"
	"sync"
	"testing"
)

func TestDirectoryConcurrentDistinctNames(t *testing.T) {
	d := NewDirectory()

	const n = 32
	sessions := make([]*Session, n)
	for i := range sessions {
		sessions[i], _ = newTestSession(t)
	}

	var wg sync.WaitGroup
	for i, s := range sessions {
		wg.Add(1)
		go func(i int, s *Session) {
			defer wg.Done()
			if !d.TryRegister(fmt.Sprintf("user-%d", i), s) {
				t.Errorf("register user-%d failed", i)
			}
		}(i, s)
	}
	wg.Wait()

	if got := d.Count(); got != n {
		t.Fatalf("directory count = %d, want %d", got, n)
	}
	for i, s := range sessions {
		name := fmt.Sprintf("user-%d", i)
		found, ok := d.Lookup(name)
		if !ok || found != s {
			t.Fatalf("lookup %s returned wrong session", name)
		}
		if s.Name() != name {
			t.Fatalf("session identity = %q, want %q", s.Name(), name)
		}
	}
}

func TestDirectoryConcurrentSameNameOneWinner(t *testing.T) {
	d := NewDirectory()

	const racers = 16
	sessions := make([]*Session, racers)
	for i := range sessions {
		sessions[i], _ = newTestSession(t)
	}

	wins := make(chan *Session, racers)
	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			if d.TryRegister("alice", s) {
				wins <- s
			}
		}(s)
	}
	wg.Wait()
	close(wins)

	var winners []*Session
	for s := range wins {
		winners = append(winners, s)
	}
	if len(winners) != 1 {
		t.Fatalf("got %d winners, want exactly 1", len(winners))
	}
	winner := winners[0]
	if winner.Name() != "alice" {
		t.Fatalf("winner identity = %q, want alice", winner.Name())
	}
	for _, s := range sessions {
		if s != winner && s.Name() != "" {
			t.Fatalf("loser acquired identity %q, should stay anonymous", s.Name())
		}
	}
}

func TestDirectoryUnregisterFreesName(t *testing.T) {
	d := NewDirectory()
	first, _ := newTestSession(t)
	second, _ := newTestSession(t)

	if !d.TryRegister("bob", first) {
		t.Fatal("first register failed")
	}
	if d.TryRegister("bob", second) {
		t.Fatal("duplicate register succeeded")
	}

	d.Unregister("bob")
	if first.Name() != "" {
		t.Fatalf("identity not cleared, got %q", first.Name())
	}
	if !d.TryRegister("bob", second) {
		t.Fatal("register after unregister failed")
	}
}
