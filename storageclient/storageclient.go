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

// Package storageclient is a thin gRPC client for the out-of-scope storage
// layer that leaf executors (DescTag, and eventually the edge/vertex lookup
// family) talk to (spec section 1's "durable storage" Non-goal: this module
// reaches the storage service, it does not implement it). It is wired the
// way the teacher's viewclient.Client wires a view server connection:
// util/grpc/client.InsecureDialContext for the dial, with Prometheus and
// OpenTracing interceptors already attached, and a manual grpc.ClientConn.Invoke
// call per RPC since no protoc-generated stub exists for this core.
package storageclient

import (
	"context"

	"google.golang.org/grpc"

	utilbytes "github.com/jyz0309/nebula/util/bytes"
	grpcclientutil "github.com/jyz0309/nebula/util/grpc/client"
)

// Client is a connection to one storage node. The zero value is not usable;
// construct with Dial.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to the storage node at address. Connection happens in the
// background; cancel connectCtx to abandon it. Close the returned Client
// when done with it.
func Dial(connectCtx context.Context, address string) *Client {
	return &Client{conn: grpcclientutil.InsecureDialContext(connectCtx, address)}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// DescTag asks the storage node to describe tag in space, the RPC body the
// DescTag executor stub (which returns status.NotSupported) would call once the
// storage service exists. The method path mirrors the naming the teacher's
// generated rpc package uses for its services (PackageName.ServiceName/RPC).
func (c *Client) DescTag(ctx context.Context, req *DescTagRequest) (*DescTagResponse, error) {
	resp := new(DescTagResponse)
	if err := c.conn.Invoke(ctx, "/nebula.storage.Storage/DescTag", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Lookup asks the storage node to resolve req's out-of-scope edge/vertex
// lookup, the RPC body a future storage-backed leaf executor would call.
// Each row is copied out of the codec's buffer before it is returned, since
// the gRPC codec may reuse its backing array on the next Invoke.
func (c *Client) Lookup(ctx context.Context, req *LookupRequest) (*LookupResponse, error) {
	resp := new(LookupResponse)
	if err := c.conn.Invoke(ctx, "/nebula.storage.Storage/Lookup", req, resp); err != nil {
		return nil, err
	}
	for i, row := range resp.Rows {
		resp.Rows[i] = utilbytes.Copy(row)
	}
	return resp, nil
}
