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

// shallowCloner is implemented by every concrete Node kind: it creates a
// fresh node in the destination arena carrying the same kind-specific
// payload (condition expression, alias, columns, ...) as the receiver, but
// wired to the already-cloned newInputs rather than the receiver's own
// inputs. Branch references (Select's then/otherwise, Loop's body) are not
// part of this contract - cloneInto attaches those itself once the memo
// entry for the node being cloned exists, so a branch that loops back to a
// node already in flight resolves to the in-progress clone instead of
// recursing forever.
type shallowCloner interface {
	shallowClone(into *Arena, newInputs []Node) Node
}

// cloneInto deep-clones the subgraph rooted at n into the destination
// arena, reusing memo to preserve identity: a subplan reachable from more
// than one place in the source (e.g. a Select's then and otherwise
// branches that reconverge on a shared PassThrough, or a Loop body
// referenced both as a data dependency and as the `body` branch) is cloned
// exactly once, and every reference to it in the clone points at that same
// new node (spec section 4.1's clone() identity-preserving requirement).
func cloneInto(n Node, into *Arena, memo map[Handle]Node) Node {
	if existing, ok := memo[n.ID()]; ok {
		return existing
	}

	srcInputs := n.Inputs()
	newInputs := make([]Node, len(srcInputs))
	for i, in := range srcInputs {
		newInputs[i] = cloneInto(in, into, memo)
	}

	c := n.(shallowCloner).shallowClone(into, newInputs)
	memo[n.ID()] = c

	switch src := n.(type) {
	case *Select:
		dst := c.(*Select)
		if src.then != nil {
			dst.then = cloneInto(src.then, into, memo)
		}
		if src.otherwise != nil {
			dst.otherwise = cloneInto(src.otherwise, into, memo)
		}
	case *Loop:
		dst := c.(*Loop)
		if src.body != nil {
			dst.body = cloneInto(src.body, into, memo)
		}
	}

	return c
}
