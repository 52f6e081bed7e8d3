// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package session holds the per-connection state a Query Instance
// borrows: the current graph space and the registry of in-flight queries
// a session must account for exactly once on every terminal transition
// (spec section 4.5/P9). Authenticating a session is an explicit
// Non-goal (spec section 1); Session still carries a User field, matching
// the shape the original's rctx->session() exposes, so logging and
// metrics context can reference who issued a query without this module
// implementing login.
package session

import "sync"

// Query is the subset of service.Instance a Session needs to track: just
// enough to key the registry and remove an entry when it finishes.
type Query interface {
	ID() int64
}

// Session is a single client connection's handle: current space, user
// identity, and the set of queries it owns.
type Session struct {
	mu    sync.Mutex
	id    int64
	User  string
	space string

	queries map[int64]Query
}

// New creates a Session identified by id (typically minted with
// util/random.SecureInt64) for user.
func New(id int64, user string) *Session {
	return &Session{
		id:      id,
		User:    user,
		queries: make(map[int64]Query),
	}
}

// ID returns the session's identifier.
func (s *Session) ID() int64 {
	return s.id
}

// Space returns the session's current graph space name, or "" if none has
// been selected (spec section 6: "spaceName: the session's current graph
// space name").
func (s *Session) Space() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.space
}

// SetSpace updates the session's current graph space.
func (s *Session) SetSpace(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.space = name
}

// AddQuery registers q as in-flight on this session. Called once, when a
// Query Instance starts executing (service.Instance.Execute).
func (s *Session) AddQuery(q Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries[q.ID()] = q
}

// RemoveQuery deregisters the query identified by id. Both of
// service.Instance's terminal transitions (onFinish, onError) call this
// exactly once (P9); a second call for the same id is a no-op, so a
// caller racing its own cleanup can never double-remove.
func (s *Session) RemoveQuery(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queries, id)
}

// NumQueries reports how many queries this session currently owns. Used
// by tests to assert P9's "removed exactly once" without reaching into
// the private map.
func (s *Session) NumQueries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}
