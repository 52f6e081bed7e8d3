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

package service

import "sync"

// Registry tracks every Instance currently between INIT and DONE, process
// wide, so an operator can look one up by ID from the debug HTTP handler
// (SPEC_FULL's [AMBIENT] Metrics: "/debug/plan/:id ... looked up in the
// service.Registry"). This is separate from session.Session's per-session
// query map: a Session only knows about its own queries, while Registry
// spans every session on the process.
type Registry struct {
	mu   sync.Mutex
	byID map[int64]*Instance
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[int64]*Instance)}
}

// Register records in under its ID. cmd/queryexecd calls this right after
// New, before Execute.
func (r *Registry) Register(in *Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[in.id] = in
}

// Unregister removes the instance with the given ID.
func (r *Registry) Unregister(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// Get returns the live instance for id, or nil if none is registered.
func (r *Registry) Get(id int64) *Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id]
}
