package core

import "sync"

// Directory maps logged-in display names to their sessions, enforcing
// name uniqueness across the whole server.
type Directory struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewDirectory constructs an empty directory.
func NewDirectory() *Directory {
	return &Directory{sessions: make(map[string]*Session)}
}

// TryRegister claims name for s. The claim and the session's identity
// assignment happen under one lock, so two sessions racing for the same
// name get exactly one winner. Returns false if the name is taken.
func (d *Directory) TryRegister(name string, s *Session) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, taken := d.sessions[name]; taken {
		return false
	}
	d.sessions[name] = s
	s.setName(name)
	return true
}

// Unregister releases name and clears the session's identity. A name
// that is not registered is a no-op.
func (d *Directory) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.sessions[name]; ok {
		delete(d.sessions, name)
		s.setName("")
	}
}

// Lookup returns the session logged in under name, if any.
func (d *Directory) Lookup(name string) (*Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.sessions[name]
	return s, ok
}

// Count returns the number of logged-in sessions.
func (d *Directory) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}
