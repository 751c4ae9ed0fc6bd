package transports

import (
	"context"
	"time"
)

// DecodedID is an id split into its fields.
type DecodedID struct {
	ID           int64
	Timestamp    int64
	NodeGroup    int64
	NodeInstance int64
	Sequence     int64
	Time         time.Time
	Encodings    map[string]string
}

// LedgerRecord is where an id was written, with its run when known.
type LedgerRecord struct {
	ID        int64
	RunID     string
	Line      int
	Row       int
	Input     string
	Output    string
	StartedAt time.Time
}

// IDsTransport abstracts where the CLI mints, decodes and looks up ids:
// the in-process runtime or a remote snowgen server.
type IDsTransport interface {
	Mint(ctx context.Context, n int) ([]int64, error)
	Decode(ctx context.Context, id int64) (DecodedID, error)
	Lookup(ctx context.Context, id int64) (LedgerRecord, error)
}
