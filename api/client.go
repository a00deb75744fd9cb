package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/frankonly/finite/finite"
)

// Client calls a finite.Ledger service
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Schema returns the schema hash served by the ledger
func (c *Client) Schema(ctx context.Context, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, schemaMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return "", err
	}

	return out.GetValue(), nil
}

// Commit sends the command, inputs and outputs of request and returns the
// committed record with its CID. When the ledger digested the transaction
// but failed to publish it, the digested record is returned with the error.
func (c *Client) Commit(ctx context.Context, request *finite.Record, opts ...grpc.CallOption) (*finite.Record, string, error) {
	in, err := request.Struct()
	if err != nil {
		return nil, "", err
	}

	record, id, err := c.record(ctx, commitMethod, in, opts...)
	if err != nil {
		if digested, ok := RecordFromError(err); ok {
			return digested, "", err
		}
	}

	return record, id, err
}

// RecordFromError extracts the digested record attached to a Commit error
func RecordFromError(err error) (*finite.Record, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return nil, false
	}

	for _, detail := range st.Details() {
		s, ok := detail.(*structpb.Struct)
		if !ok {
			continue
		}
		record, err := finite.RecordFromStruct(s)
		if err != nil {
			return nil, false
		}
		return record, true
	}

	return nil, false
}

// Get fetches a published record by CID
func (c *Client) Get(ctx context.Context, id string, opts ...grpc.CallOption) (*finite.Record, string, error) {
	return c.record(ctx, getMethod, wrapperspb.String(id), opts...)
}

func (c *Client) record(ctx context.Context, method string, in interface{}, opts ...grpc.CallOption) (*finite.Record, string, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, "", err
	}

	record, err := finite.RecordFromStruct(out)
	if err != nil {
		return nil, "", err
	}

	return record, out.GetFields()[cidField].GetStringValue(), nil
}
