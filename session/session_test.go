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

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeQuery int64

func (q fakeQuery) ID() int64 { return int64(q) }

func Test_Session_SpaceDefaultsEmpty(t *testing.T) {
	s := New(1, "alice")
	assert.Equal(t, "", s.Space())
	s.SetSpace("mygraph")
	assert.Equal(t, "mygraph", s.Space())
}

func Test_Session_AddRemoveQuery(t *testing.T) {
	s := New(1, "alice")
	assert.Equal(t, 0, s.NumQueries())
	s.AddQuery(fakeQuery(42))
	assert.Equal(t, 1, s.NumQueries())
	s.RemoveQuery(42)
	assert.Equal(t, 0, s.NumQueries())
}

func Test_Session_RemoveQuery_SecondCallIsNoOp(t *testing.T) {
	s := New(1, "alice")
	s.AddQuery(fakeQuery(42))
	s.RemoveQuery(42)
	s.RemoveQuery(42)
	assert.Equal(t, 0, s.NumQueries())
}
