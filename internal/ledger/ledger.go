package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	pebblestore "github.com/DJ45X/snowgen/internal/storage/pebble"
	logpkg "github.com/DJ45X/snowgen/pkg/log"
)

// ErrNotFound is returned when an id or run is not in the ledger.
var ErrNotFound = errors.New("ledger: not found")

// DefaultBatchSize is used when Options.BatchSize is zero.
const DefaultBatchSize = 256

// Entry records which data row received an id.
type Entry struct {
	ID    int64  `json:"id"`
	RunID string `json:"run"`
	Line  int    `json:"line"`
	Row   int    `json:"row"`
}

// RunMeta describes an injection run at start.
type RunMeta struct {
	Input        string `json:"input"`
	Output       string `json:"output"`
	NodeGroup    int64  `json:"node_group"`
	NodeInstance int64  `json:"node_instance"`
	Where        string `json:"where,omitempty"`
	Format       string `json:"format,omitempty"`
}

// RunStats are the final counters of a run.
type RunStats struct {
	Rows     int   `json:"rows"`
	Blank    int   `json:"blank"`
	Filtered int   `json:"filtered"`
	FirstID  int64 `json:"first_id,omitempty"`
	LastID   int64 `json:"last_id,omitempty"`
}

// RunRecord is the stored form of a run.
type RunRecord struct {
	ID         string     `json:"id"`
	Meta       RunMeta    `json:"meta"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Stats      RunStats   `json:"stats"`
	Error      string     `json:"error,omitempty"`
}

// Options configures Open.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	BatchSize     int
	ReadOnly      bool
	Logger        logpkg.Logger
	Metrics       pebblestore.MetricsHook
}

// Ledger is an append-mostly audit trail of minted ids.
type Ledger struct {
	db        *pebblestore.DB
	batchSize int
	logger    logpkg.Logger
	now       func() time.Time
}

// Open opens or creates the ledger at opts.DataDir.
func Open(opts Options) (*Ledger, error) {
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		ReadOnly:      opts.ReadOnly,
		Metrics:       opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	bs := opts.BatchSize
	if bs <= 0 {
		bs = DefaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return &Ledger{
		db:        db,
		batchSize: bs,
		logger:    logger.With(logpkg.Component("ledger")),
		now:       time.Now,
	}, nil
}

// Close closes the underlying store.
func (l *Ledger) Close() error { return l.db.Close() }

// Ping reports whether the store is readable.
func (l *Ledger) Ping() error { return l.db.Ping() }

// BeginRun stores the run header and returns a handle for recording entries.
func (l *Ledger) BeginRun(ctx context.Context, meta RunMeta) (*Run, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("ledger: run id: %w", err)
	}
	rec := RunRecord{ID: id.String(), Meta: meta, StartedAt: l.now().UTC()}
	if err := l.putRun(ctx, rec); err != nil {
		return nil, err
	}
	l.logger.Debug("run started", logpkg.Str(logpkg.RunIDKey, rec.ID), logpkg.Str("input", meta.Input))
	return &Run{l: l, rec: rec}, nil
}

func (l *Ledger) putRun(ctx context.Context, rec RunRecord) error {
	val, err := encodeRecord(kindRun, rec)
	if err != nil {
		return err
	}
	b := l.db.NewBatch()
	defer b.Close()
	if err := b.Set(keyRun(rec.ID), val, nil); err != nil {
		return err
	}
	return l.db.CommitBatch(ctx, b)
}

// Lookup returns the entry for id.
func (l *Ledger) Lookup(ctx context.Context, id int64) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	val, err := l.db.Get(keyID(id))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := decodeRecord(val, kindEntry, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// GetRun returns the stored run.
func (l *Ledger) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return RunRecord{}, err
	}
	val, err := l.db.Get(keyRun(runID))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return RunRecord{}, ErrNotFound
	}
	if err != nil {
		return RunRecord{}, err
	}
	var rec RunRecord
	if err := decodeRecord(val, kindRun, &rec); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

// Runs lists runs newest first. limit <= 0 returns all of them.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	iter, err := l.db.NewIter(pebblestore.PrefixIterOptions(runPrefix))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []RunRecord
	for iter.Last(); iter.Valid(); iter.Prev() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rec RunRecord
		if err := decodeRecord(iter.Value(), kindRun, &rec); err != nil {
			return nil, fmt.Errorf("run %q: %w", iter.Key()[len(runPrefix):], err)
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, iter.Error()
}

// IDs returns the ids recorded in [from, to], ascending.
func (l *Ledger) IDs(ctx context.Context, from, to int64) ([]int64, error) {
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: keyID(from), UpperBound: append(keyID(to), 0x00)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var ids []int64
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := idFromKey(iter.Key())
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, iter.Error()
}

// Run buffers entries of a single injection run and commits them in batches.
type Run struct {
	l   *Ledger
	rec RunRecord

	mu      sync.Mutex
	batch   *pebble.Batch
	pending int
	done    bool
}

// ID returns the run id.
func (r *Run) ID() string { return r.rec.ID }

// Record buffers e and commits the batch once it reaches the batch size.
func (r *Run) Record(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return errors.New("ledger: run already finished")
	}
	e.RunID = r.rec.ID
	val, err := encodeRecord(kindEntry, e)
	if err != nil {
		return err
	}
	if r.batch == nil {
		r.batch = r.l.db.NewBatch()
	}
	if err := r.batch.Set(keyID(e.ID), val, nil); err != nil {
		return err
	}
	r.pending++
	if r.pending >= r.l.batchSize {
		return r.flushLocked(ctx)
	}
	return nil
}

func (r *Run) flushLocked(ctx context.Context) error {
	if r.batch == nil {
		return nil
	}
	b := r.batch
	r.batch, r.pending = nil, 0
	defer b.Close()
	if err := r.l.db.CommitBatch(ctx, b); err != nil {
		return fmt.Errorf("ledger: commit: %w", err)
	}
	return nil
}

// Finish flushes buffered entries and stores the final stats together with
// runErr, if any. Entries buffered when runErr is non-nil are still written:
// those ids were emitted.
func (r *Run) Finish(ctx context.Context, stats RunStats, runErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return nil
	}
	r.done = true

	if r.batch == nil {
		r.batch = r.l.db.NewBatch()
	}
	now := r.l.now().UTC()
	r.rec.FinishedAt = &now
	r.rec.Stats = stats
	if runErr != nil {
		r.rec.Error = runErr.Error()
	}
	val, err := encodeRecord(kindRun, r.rec)
	if err != nil {
		r.batch.Close()
		r.batch = nil
		return err
	}
	if err := r.batch.Set(keyRun(r.rec.ID), val, nil); err != nil {
		r.batch.Close()
		r.batch = nil
		return err
	}
	if err := r.flushLocked(ctx); err != nil {
		return err
	}
	r.l.logger.Debug("run finished", logpkg.Str(logpkg.RunIDKey, r.rec.ID), logpkg.Int("rows", stats.Rows))
	return nil
}
