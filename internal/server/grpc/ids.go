package grpcserver

import (
	"context"
	"errors"
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	snowgenv1 "github.com/DJ45X/snowgen/api/snowgen/v1"
	"github.com/DJ45X/snowgen/internal/ledger"
	idsvc "github.com/DJ45X/snowgen/internal/services/ids"
	"github.com/DJ45X/snowgen/pkg/snowflake"
)

type idsServer struct {
	snowgenv1.UnimplementedIDServiceServer
	svc *idsvc.Service
}

// Mint returns ids as decimal strings; a JSON number cannot carry 63 bits.
func (s *idsServer) Mint(ctx context.Context, req *wrapperspb.UInt32Value) (*structpb.ListValue, error) {
	ids, err := s.svc.Mint(ctx, int(req.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}
	vals := make([]*structpb.Value, len(ids))
	for i, id := range ids {
		vals[i] = structpb.NewStringValue(strconv.FormatInt(id, 10))
	}
	return &structpb.ListValue{Values: vals}, nil
}

func (s *idsServer) Decode(_ context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	d, err := s.svc.Decode(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	enc := make(map[string]interface{}, len(d.Encodings))
	for k, v := range d.Encodings {
		enc[k] = v
	}
	out, err := structpb.NewStruct(map[string]interface{}{
		"id":            strconv.FormatInt(d.ID, 10),
		"timestamp":     d.Parts.Timestamp,
		"node_group":    d.Parts.NodeGroup,
		"node_instance": d.Parts.NodeInstance,
		"sequence":      d.Parts.Sequence,
		"time":          d.Time.Format(time.RFC3339Nano),
		"encodings":     enc,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *idsServer) Lookup(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	rec, err := s.svc.Lookup(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	m := map[string]interface{}{
		"id":     strconv.FormatInt(rec.Entry.ID, 10),
		"run_id": rec.Entry.RunID,
		"line":   rec.Entry.Line,
		"row":    rec.Entry.Row,
	}
	if rec.Run.ID != "" {
		m["input"] = rec.Run.Meta.Input
		m["output"] = rec.Run.Meta.Output
		m["started_at"] = rec.Run.StartedAt.Format(time.RFC3339Nano)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, idsvc.ErrInvalidCount), errors.Is(err, idsvc.ErrInvalidID),
		errors.Is(err, snowflake.ErrUnknownFormat):
		code = codes.InvalidArgument
	case errors.Is(err, idsvc.ErrNoLedger):
		code = codes.FailedPrecondition
	case errors.Is(err, ledger.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, snowflake.ErrClockRegression):
		code = codes.Unavailable
	case errors.Is(err, snowflake.ErrEpochOverflow):
		code = codes.OutOfRange
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, snowflake.ErrCancelled), errors.Is(err, context.Canceled):
		code = codes.Canceled
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}
