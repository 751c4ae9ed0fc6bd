package idsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DJ45X/snowgen/internal/ledger"
	"github.com/DJ45X/snowgen/internal/runtime"
	logpkg "github.com/DJ45X/snowgen/pkg/log"
	"github.com/DJ45X/snowgen/pkg/snowflake"
)

// MaxMint caps the number of ids a single Mint call returns.
const MaxMint = 1000

var (
	ErrInvalidCount = fmt.Errorf("count must be between 1 and %d", MaxMint)
	ErrInvalidID    = errors.New("invalid id")
	ErrNoLedger     = errors.New("no ledger configured")
)

// Decoded is an id broken into its fields plus its alternative encodings.
type Decoded struct {
	ID        int64             `json:"id"`
	Parts     snowflake.Parts   `json:"parts"`
	Time      time.Time         `json:"time"`
	Encodings map[string]string `json:"encodings"`
}

// Record is a ledger entry together with the run it belongs to.
type Record struct {
	Entry ledger.Entry     `json:"entry"`
	Run   ledger.RunRecord `json:"run"`
}

// Service exposes id operations to the transports and the CLI.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// New returns a Service logging through the runtime logger.
func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, rt.Logger().With(logpkg.Component("ids")))
}

// NewWithLogger returns a Service using the provided logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("ids"))
	}
	return &Service{rt: rt, logger: logger}
}

// Mint generates n ids in order.
func (s *Service) Mint(ctx context.Context, n int) ([]int64, error) {
	if n < 1 || n > MaxMint {
		return nil, ErrInvalidCount
	}
	start := time.Now()
	gen := s.rt.Generator()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		id, err := gen.Generate(ctx)
		if err != nil {
			s.logger.Warn("mint failed", logpkg.Err(err), logpkg.Int("minted", len(ids)))
			return nil, err
		}
		ids = append(ids, id)
	}
	s.logger.Debug("minted", logpkg.Int("count", n), logpkg.Dur("dur", time.Since(start)))
	return ids, nil
}

// Decode splits id into its fields.
func (s *Service) Decode(id int64) (Decoded, error) {
	if id < 0 {
		return Decoded{}, ErrInvalidID
	}
	p := snowflake.Decode(id)
	enc := make(map[string]string, 6)
	for _, f := range snowflake.Formats() {
		enc[string(f)] = f.Encode(id)
	}
	return Decoded{ID: id, Parts: p, Time: p.Time(), Encodings: enc}, nil
}

// Parse reads an id written in the named format; empty means decimal.
func (s *Service) Parse(text, format string) (int64, error) {
	f, err := snowflake.ParseFormat(format)
	if err != nil {
		return 0, err
	}
	id, err := f.Parse(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return id, nil
}

// Lookup returns the ledger entry for id and its run.
func (s *Service) Lookup(ctx context.Context, id int64) (Record, error) {
	l := s.rt.Ledger()
	if l == nil {
		return Record{}, ErrNoLedger
	}
	e, err := l.Lookup(ctx, id)
	if err != nil {
		return Record{}, err
	}
	run, err := l.GetRun(ctx, e.RunID)
	if err != nil && !errors.Is(err, ledger.ErrNotFound) {
		return Record{}, err
	}
	return Record{Entry: e, Run: run}, nil
}

// Health reports runtime health.
func (s *Service) Health(ctx context.Context) error { return s.rt.CheckHealth(ctx) }
