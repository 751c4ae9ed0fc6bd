// Package transports provides pluggable transport implementations for the CLI.
package transports

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	snowgenv1 "github.com/DJ45X/snowgen/api/snowgen/v1"
)

// GrpcTransport implements IDsTransport over gRPC.
type GrpcTransport struct {
	dial func(ctx context.Context) (*grpc.ClientConn, error)
}

// NewGrpcTransport constructs a new GrpcTransport using the provided dialer.
func NewGrpcTransport(dial func(ctx context.Context) (*grpc.ClientConn, error)) *GrpcTransport {
	return &GrpcTransport{dial: dial}
}

func (t *GrpcTransport) withClient(ctx context.Context, fn func(cli snowgenv1.IDServiceClient) error) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(snowgenv1.NewIDServiceClient(conn))
}

// Mint asks the server for n ids.
func (t *GrpcTransport) Mint(ctx context.Context, n int) ([]int64, error) {
	var ids []int64
	err := t.withClient(ctx, func(cli snowgenv1.IDServiceClient) error {
		if n < 0 {
			n = 0
		}
		res, err := cli.Mint(ctx, wrapperspb.UInt32(uint32(n)))
		if err != nil {
			return err
		}
		ids = make([]int64, 0, len(res.GetValues()))
		for _, v := range res.GetValues() {
			id, err := strconv.ParseInt(v.GetStringValue(), 10, 64)
			if err != nil {
				return fmt.Errorf("server returned malformed id %q: %w", v.GetStringValue(), err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

// Decode asks the server to split id into its fields.
func (t *GrpcTransport) Decode(ctx context.Context, id int64) (DecodedID, error) {
	var out DecodedID
	err := t.withClient(ctx, func(cli snowgenv1.IDServiceClient) error {
		res, err := cli.Decode(ctx, wrapperspb.Int64(id))
		if err != nil {
			return err
		}
		f := res.GetFields()
		out = DecodedID{
			ID:           id,
			Timestamp:    int64(f["timestamp"].GetNumberValue()),
			NodeGroup:    int64(f["node_group"].GetNumberValue()),
			NodeInstance: int64(f["node_instance"].GetNumberValue()),
			Sequence:     int64(f["sequence"].GetNumberValue()),
			Time:         parseTime(f["time"]),
			Encodings:    map[string]string{},
		}
		for k, v := range f["encodings"].GetStructValue().GetFields() {
			out.Encodings[k] = v.GetStringValue()
		}
		return nil
	})
	return out, err
}

// Lookup asks the server for the ledger entry of id.
func (t *GrpcTransport) Lookup(ctx context.Context, id int64) (LedgerRecord, error) {
	var out LedgerRecord
	err := t.withClient(ctx, func(cli snowgenv1.IDServiceClient) error {
		res, err := cli.Lookup(ctx, wrapperspb.Int64(id))
		if err != nil {
			return err
		}
		f := res.GetFields()
		out = LedgerRecord{
			ID:        id,
			RunID:     f["run_id"].GetStringValue(),
			Line:      int(f["line"].GetNumberValue()),
			Row:       int(f["row"].GetNumberValue()),
			Input:     f["input"].GetStringValue(),
			Output:    f["output"].GetStringValue(),
			StartedAt: parseTime(f["started_at"]),
		}
		return nil
	})
	return out, err
}

func parseTime(v *structpb.Value) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v.GetStringValue())
	if err != nil {
		return time.Time{}
	}
	return t
}
