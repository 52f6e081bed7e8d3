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

package storageclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Dial_NonBlockingReturnsUsableClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := Dial(ctx, "127.0.0.1:0")
	require.NotNil(t, c)
	assert.NoError(t, c.Close())
}

func Test_DescTagRequest_StringIsNotEmpty(t *testing.T) {
	req := &DescTagRequest{Space: "demo", Tag: "person"}
	assert.Contains(t, req.String(), "person")
}

func Test_LookupResponse_ZeroValueResets(t *testing.T) {
	resp := &LookupResponse{Rows: [][]byte{[]byte("x")}}
	resp.Reset()
	assert.Nil(t, resp.Rows)
}
