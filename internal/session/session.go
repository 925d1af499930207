// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import "sync"

// Session is the single serialized owner of State. Three independent flows
// write it (foreground commits, the background enrichment pass, and the
// synthesis workflows); each write runs under the lock as a functional
// whole-state replacement, so readers only ever observe fully-committed
// states and no torn update is visible.
type Session struct {
	mu    sync.Mutex
	state State
}

// New creates a session with the given default query. The initial commit is
// the caller's responsibility.
func New(defaultQuery string) *Session {
	return &Session{state: State{Query: defaultQuery}}
}

// Update applies fn to a copy of the current state and installs the result
// as the new authoritative state. fn must be pure: it receives and returns a
// value and must not retain references past its return.
func (s *Session) Update(fn func(State) State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state.clone())
}

// Snapshot returns a copy of the current state. Mutating the copy has no
// effect on the session.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}
