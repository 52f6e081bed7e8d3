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

package plan

import (
	"sync"

	"github.com/google/btree"
)

// Handle identifies a plan node within its owning Arena. Handles are only
// meaningful relative to the Arena that issued them; two nodes from
// different arenas may share a Handle value by coincidence.
type Handle int64

// Arena owns every plan node created for one query context (spec section
// 3/9: "all plan nodes are owned by a single arena whose lifetime equals
// the Query Context's; inter-node references are arena-relative borrows").
// Implementations may realize this with indexed slab + integer handles or a
// typed arena with reference handles; this one does the former, keyed in a
// google/btree.BTree so Nodes() below can walk the arena in handle
// (creation) order for deterministic EXPLAIN output without keeping a
// separate slice in sync.
type Arena struct {
	mu      sync.Mutex
	tree    *btree.BTree
	nextID  int64
}

// NewArena creates an empty Arena. A *plan.Plan owns exactly one Arena for
// its entire lifetime; it is discarded (and, with it, every Node it holds)
// when the owning query context is torn down.
func NewArena() *Arena {
	return &Arena{tree: btree.New(32)}
}

// entry is the btree.Item stored in Arena.tree.
type entry struct {
	handle Handle
	node   Node
}

func (e entry) Less(than btree.Item) bool {
	return e.handle < than.(entry).handle
}

// add registers node in the arena under a freshly allocated handle and
// returns it.
func (a *Arena) add(node Node) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	h := Handle(a.nextID)
	a.tree.ReplaceOrInsert(entry{handle: h, node: node})
	return h
}

// Get resolves a handle to its node, or returns (nil, false) if the handle
// is unknown to this arena (e.g. it belonged to a different arena, or the
// node was never registered here).
func (a *Arena) Get(h Handle) (Node, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	item := a.tree.Get(entry{handle: h})
	if item == nil {
		return nil, false
	}
	return item.(entry).node, true
}

// Len returns the number of nodes currently owned by the arena.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree.Len()
}

// Nodes returns every node owned by the arena, in handle (creation) order.
func (a *Arena) Nodes() []Node {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Node, 0, a.tree.Len())
	a.tree.Ascend(func(item btree.Item) bool {
		out = append(out, item.(entry).node)
		return true
	})
	return out
}
