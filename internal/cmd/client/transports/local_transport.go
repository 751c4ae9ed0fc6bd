package transports

import (
	"context"

	idsvc "github.com/DJ45X/snowgen/internal/services/ids"
)

// LocalTransport implements IDsTransport against an in-process id service.
type LocalTransport struct {
	svc *idsvc.Service
}

// NewLocalTransport wraps svc.
func NewLocalTransport(svc *idsvc.Service) *LocalTransport {
	return &LocalTransport{svc: svc}
}

func (t *LocalTransport) Mint(ctx context.Context, n int) ([]int64, error) {
	return t.svc.Mint(ctx, n)
}

func (t *LocalTransport) Decode(_ context.Context, id int64) (DecodedID, error) {
	d, err := t.svc.Decode(id)
	if err != nil {
		return DecodedID{}, err
	}
	return DecodedID{
		ID:           d.ID,
		Timestamp:    d.Parts.Timestamp,
		NodeGroup:    d.Parts.NodeGroup,
		NodeInstance: d.Parts.NodeInstance,
		Sequence:     d.Parts.Sequence,
		Time:         d.Time,
		Encodings:    d.Encodings,
	}, nil
}

func (t *LocalTransport) Lookup(ctx context.Context, id int64) (LedgerRecord, error) {
	rec, err := t.svc.Lookup(ctx, id)
	if err != nil {
		return LedgerRecord{}, err
	}
	return LedgerRecord{
		ID:        rec.Entry.ID,
		RunID:     rec.Entry.RunID,
		Line:      rec.Entry.Line,
		Row:       rec.Entry.Row,
		Input:     rec.Run.Meta.Input,
		Output:    rec.Run.Meta.Output,
		StartedAt: rec.Run.StartedAt,
	}, nil
}
