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

import "github.com/gogo/protobuf/proto"

// The request/response pairs below stand in for protoc-gen-gogo output: no
// .proto source ships with this core (the storage service itself is out of
// scope), so they are hand-declared the way rpc's generated types would
// look, implementing proto.Message directly rather than through generated
// Marshal/Unmarshal.

// DescTagRequest names the tag to describe.
type DescTagRequest struct {
	Space string
	Tag   string
}

func (m *DescTagRequest) Reset()         { *m = DescTagRequest{} }
func (m *DescTagRequest) String() string { return proto.CompactTextString(m) }
func (m *DescTagRequest) ProtoMessage()  {}

// DescTagResponse carries the tag's schema: ordered property names and
// their storage type tags.
type DescTagResponse struct {
	PropertyNames []string
	PropertyTypes []string
}

func (m *DescTagResponse) Reset()         { *m = DescTagResponse{} }
func (m *DescTagResponse) String() string { return proto.CompactTextString(m) }
func (m *DescTagResponse) ProtoMessage()  {}

// LookupRequest is a batch of vertex IDs to resolve within space.
type LookupRequest struct {
	Space string
	IDs   []int64
}

func (m *LookupRequest) Reset()         { *m = LookupRequest{} }
func (m *LookupRequest) String() string { return proto.CompactTextString(m) }
func (m *LookupRequest) ProtoMessage()  {}

// LookupResponse carries one opaque encoded row per requested ID, aligned
// by index; a nil entry means that ID was not found.
type LookupResponse struct {
	Rows [][]byte
}

func (m *LookupResponse) Reset()         { *m = LookupResponse{} }
func (m *LookupResponse) String() string { return proto.CompactTextString(m) }
func (m *LookupResponse) ProtoMessage()  {}
