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
	"strings"

	utilbytes "github.com/jyz0309/nebula/util/bytes"
)

// Explain renders a plan's arena as an EXPLAIN listing: one row per node,
// in creation (handle) order, the way the teacher's planDesc table does it
// (spec section 6). Rows carry handle, kind-specific detail and, for
// branches, the handles of the then/otherwise/body targets - enough for a
// caller to reconstruct the tree without re-walking Node pointers.
func Explain(p *Plan) []*Description {
	nodes := p.arena.Nodes()
	rows := make([]*Description, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, n.Describe())
	}
	return rows
}

// writeExplain renders rows into any StringWriter-compatible destination.
// strings.Builder is the only caller today, but the same helper works
// unchanged against a bufio.Writer if EXPLAIN output ever needs to stream
// straight to a socket instead of being buffered into one string.
func writeExplain(w utilbytes.StringWriter, rows []*Description) {
	for _, row := range rows {
		w.WriteString(row.String())
		w.WriteByte('\n')
	}
}

// ExplainString renders Explain's rows as the flat, human-readable table
// format EXPLAIN prints to a client - one line per row, in handle order.
func ExplainString(p *Plan) string {
	var b strings.Builder
	writeExplain(&b, Explain(p))
	return b.String()
}

// AttachProfile decorates the Description for handle h with runtime stats
// gathered while executing under EXPLAIN PROFILE (SPEC_FULL supplement 3).
// It is a no-op if h is unknown, since a profiler racing a plan that was
// already torn down should never be the reason a response fails.
func AttachProfile(rows []*Description, h Handle, stats ProfileStats) {
	for _, row := range rows {
		if row.ID == h {
			s := stats
			row.Profile = &s
			return
		}
	}
}
