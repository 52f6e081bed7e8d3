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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Arena_AddAndGet(t *testing.T) {
	a := NewArena()
	start := NewStart(a, "$$start", Columns{"x"})

	got, ok := a.Get(start.ID())
	require.True(t, ok)
	assert.Same(t, start, got)

	_, ok = a.Get(Handle(999))
	assert.False(t, ok)
}

func Test_Arena_NodesInCreationOrder(t *testing.T) {
	a := NewArena()
	n1 := NewStart(a, "$$a", nil)
	n2 := NewPassThrough(a, n1, "$$b")
	n3 := NewPassThrough(a, n2, "$$c")

	nodes := a.Nodes()
	require.Len(t, nodes, 3)
	assert.Same(t, n1, nodes[0])
	assert.Same(t, n2, nodes[1])
	assert.Same(t, n3, nodes[2])
	assert.Equal(t, 3, a.Len())
}
