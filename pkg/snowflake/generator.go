package snowflake

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// NodeIdentity supplies the fixed node fields embedded in every ID.
type NodeIdentity interface {
	NodeGroup() int64
	NodeInstance() int64
}

// DefaultWaitUnit is the sleep granted to the first caller waiting for a
// spent millisecond. The n-th concurrent waiter sleeps n units.
const DefaultWaitUnit = time.Millisecond

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the wall clock used for timestamps and waits.
func WithClock(c clock.Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// WithWaitUnit sets the base sleep used while the sequence is exhausted.
// Non-positive values keep the default.
func WithWaitUnit(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.waitUnit = d
		}
	}
}

// Generator mints IDs for one node identity. It is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	clock    clock.Clock
	waitUnit time.Duration
	group    int64
	instance int64

	// lastMs is the Unix millisecond of the last minted ID, -1 before the first.
	lastMs   int64
	sequence int64
	// waiters counts callers sleeping on an exhausted millisecond.
	waiters map[int64]int
}

// New creates a Generator. It fails with a ConfigError if either node field
// does not fit its 5 bits.
func New(nodeGroup, nodeInstance int64, opts ...Option) (*Generator, error) {
	if err := checkNode(nodeGroup, nodeInstance); err != nil {
		return nil, err
	}
	g := &Generator{
		clock:    clock.RealClock{},
		waitUnit: DefaultWaitUnit,
		group:    nodeGroup,
		instance: nodeInstance,
		lastMs:   -1,
		waiters:  make(map[int64]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// NewFromIdentity creates a Generator from a NodeIdentity.
func NewFromIdentity(n NodeIdentity, opts ...Option) (*Generator, error) {
	return New(n.NodeGroup(), n.NodeInstance(), opts...)
}

func (g *Generator) NodeGroup() int64    { return g.group }
func (g *Generator) NodeInstance() int64 { return g.instance }

// Generate returns the next ID.
//
// It fails with a ClockRegressionError if the clock reads earlier than the
// previous ID, and with a CancelledError if ctx ends while waiting for the
// next millisecond. A failed call does not change the generator's state.
func (g *Generator) Generate(ctx context.Context) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		now := g.clock.Now().UnixMilli()
		switch {
		case now < g.lastMs:
			return 0, &ClockRegressionError{Last: g.lastMs, Now: now}
		case now > g.lastMs:
			id, err := g.compose(now, 0)
			if err != nil {
				return 0, err
			}
			g.lastMs, g.sequence = now, 0
			return id, nil
		case g.sequence < MaxSequence:
			id, err := g.compose(now, g.sequence+1)
			if err != nil {
				return 0, err
			}
			g.sequence++
			return id, nil
		}

		// All sequence values of now are spent.
		if err := g.awaitNextMilli(ctx, now); err != nil {
			return 0, err
		}
	}
}

func (g *Generator) compose(nowMs, seq int64) (int64, error) {
	delta := nowMs - Epoch
	if delta < 0 || delta > MaxTimestamp {
		return 0, ErrEpochOverflow
	}
	return delta<<TimestampShift |
		g.group<<NodeGroupShift |
		g.instance<<NodeInstanceShift |
		seq, nil
}

// awaitNextMilli must be called with g.mu held and returns with it held. The
// lock is released while sleeping so other callers can make progress.
func (g *Generator) awaitNextMilli(ctx context.Context, ms int64) error {
	g.waiters[ms]++
	position := g.waiters[ms]
	g.mu.Unlock()

	var err error
	timer := g.clock.NewTimer(time.Duration(position) * g.waitUnit)
	select {
	case <-ctx.Done():
		timer.Stop()
		err = &CancelledError{Timestamp: ms, Err: ctx.Err()}
	case <-timer.C():
	}

	g.mu.Lock()
	if g.waiters[ms] <= 1 {
		delete(g.waiters, ms)
	} else {
		g.waiters[ms]--
	}
	return err
}
