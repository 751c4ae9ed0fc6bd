package snowflake

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	clocktesting "k8s.io/utils/clock/testing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// baseTime is an arbitrary instant well after Epoch.
var baseTime = time.UnixMilli(Epoch + 86_400_000).UTC()

func newFakeGenerator(t *testing.T, group, instance int64) (*Generator, *clocktesting.FakeClock) {
	t.Helper()
	clk := clocktesting.NewFakeClock(baseTime)
	g, err := New(group, instance, WithClock(clk))
	require.NoError(t, err)
	return g, clk
}

func (g *Generator) waiting(ms int64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.waiters[ms]
}

func (g *Generator) state() (int64, int64, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastMs, g.sequence, len(g.waiters)
}

func TestNewNodeBounds(t *testing.T) {
	tests := []struct {
		name     string
		group    int64
		instance int64
		wantErr  bool
	}{
		{"zero", 0, 0, false},
		{"max", MaxNodeGroup, MaxNodeInstance, false},
		{"original deployment", 24, 30, false},
		{"group one past max", 32, 0, true},
		{"instance one past max", 0, 32, true},
		{"negative group", -1, 0, true},
		{"negative instance", 0, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.group, tt.instance)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.group, g.NodeGroup())
				assert.Equal(t, tt.instance, g.NodeInstance())
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, int64(31), cerr.Max)
			assert.Nil(t, g)
		})
	}
}

type staticIdentity struct{ group, instance int64 }

func (s staticIdentity) NodeGroup() int64    { return s.group }
func (s staticIdentity) NodeInstance() int64 { return s.instance }

func TestNewFromIdentity(t *testing.T) {
	g, err := NewFromIdentity(staticIdentity{group: 3, instance: 7})
	require.NoError(t, err)
	id, err := g.Generate(context.Background())
	require.NoError(t, err)
	p := Decode(id)
	assert.Equal(t, int64(3), p.NodeGroup)
	assert.Equal(t, int64(7), p.NodeInstance)

	_, err = NewFromIdentity(staticIdentity{group: 32})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGenerateLayout(t *testing.T) {
	g, clk := newFakeGenerator(t, 24, 30)
	ctx := context.Background()

	first, err := g.Generate(ctx)
	require.NoError(t, err)
	second, err := g.Generate(ctx)
	require.NoError(t, err)

	p1, p2 := Decode(first), Decode(second)
	assert.Equal(t, baseTime.UnixMilli()-Epoch, p1.Timestamp)
	assert.Equal(t, Parts{Timestamp: p1.Timestamp, NodeGroup: 24, NodeInstance: 30, Sequence: 0}, p1)
	assert.Equal(t, int64(1), p2.Sequence)
	assert.True(t, p1.Time().Equal(clk.Now()))
	assert.Greater(t, first, int64(0))

	clk.Step(3 * time.Millisecond)
	third, err := g.Generate(ctx)
	require.NoError(t, err)
	p3 := Decode(third)
	assert.Equal(t, p1.Timestamp+3, p3.Timestamp)
	assert.Equal(t, int64(0), p3.Sequence, "sequence resets on a new millisecond")
}

func TestGenerateConcurrentUnique(t *testing.T) {
	g, err := New(1, 2)
	require.NoError(t, err)

	const workers, perWorker = 8, 5000
	results := make([][]int64, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				id, err := g.Generate(context.Background())
				if err != nil {
					t.Errorf("generate: %v", err)
					return
				}
				ids = append(ids, id)
			}
			results[w] = ids
		}(w)
	}
	wg.Wait()

	seen := make(map[int64]struct{}, workers*perWorker)
	for _, ids := range results {
		var prev int64 = -1
		for _, id := range ids {
			_, dup := seen[id]
			require.False(t, dup, "duplicate id %d", id)
			seen[id] = struct{}{}
			// Each goroutine observes its own calls in real-time order.
			require.Greater(t, id, prev)
			if prev >= 0 {
				require.GreaterOrEqual(t, Decode(id).Timestamp, Decode(prev).Timestamp)
			}
			prev = id
		}
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestGenerateMonotonic(t *testing.T) {
	g, err := New(0, 0)
	require.NoError(t, err)

	prev, err := g.Generate(context.Background())
	require.NoError(t, err)
	for i := 0; i < 10000; i++ {
		cur, err := g.Generate(context.Background())
		require.NoError(t, err)
		if cur <= prev {
			t.Fatalf("ids not increasing: prev=%d cur=%d at %d", prev, cur, i)
		}
		if Decode(cur).Timestamp < Decode(prev).Timestamp {
			t.Fatalf("timestamp went backwards at %d", i)
		}
		prev = cur
	}
}

func TestSequenceExhaustionRollsOver(t *testing.T) {
	g, clk := newFakeGenerator(t, 5, 6)

	const total = 5000
	type outcome struct {
		ids []int64
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		ids := make([]int64, 0, total)
		for i := 0; i < total; i++ {
			id, err := g.Generate(context.Background())
			if err != nil {
				done <- outcome{ids, err}
				return
			}
			ids = append(ids, id)
		}
		done <- outcome{ids: ids}
	}()

	// The 4097th call blocks until the simulated clock moves.
	require.Eventually(t, clk.HasWaiters, 5*time.Second, time.Millisecond)
	assert.Equal(t, 1, g.waiting(baseTime.UnixMilli()))
	clk.Step(time.Millisecond)

	var res outcome
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for rollover")
	}
	require.NoError(t, res.err)
	require.Len(t, res.ids, total)

	first := Decode(res.ids[0])
	last := Decode(res.ids[MaxSequence])
	rolled := Decode(res.ids[MaxSequence+1])
	assert.Equal(t, first.Timestamp, last.Timestamp)
	assert.Equal(t, int64(MaxSequence), last.Sequence)
	assert.Equal(t, first.Timestamp+1, rolled.Timestamp)
	assert.Equal(t, int64(0), rolled.Sequence)

	seen := make(map[int64]struct{}, total)
	for i, id := range res.ids {
		p := Decode(id)
		require.LessOrEqual(t, p.Sequence, int64(MaxSequence))
		_, dup := seen[id]
		require.False(t, dup, "duplicate at %d", i)
		seen[id] = struct{}{}
	}
	assert.True(t, sort.SliceIsSorted(res.ids, func(i, j int) bool { return res.ids[i] < res.ids[j] }))

	_, _, waiting := g.state()
	assert.Zero(t, waiting, "waiter entries are dropped once the clock advances")
}

func exhaust(t *testing.T, g *Generator) {
	t.Helper()
	for i := 0; i <= MaxSequence; i++ {
		_, err := g.Generate(context.Background())
		require.NoError(t, err)
	}
}

func TestWaitersBackOffByPosition(t *testing.T) {
	g, clk := newFakeGenerator(t, 0, 1)
	exhaust(t, g)
	ms := baseTime.UnixMilli()

	results := make(chan int64, 2)
	for i := 0; i < 2; i++ {
		go func() {
			id, err := g.Generate(context.Background())
			if err != nil {
				t.Errorf("generate: %v", err)
			}
			results <- id
		}()
	}
	require.Eventually(t, func() bool { return g.waiting(ms) == 2 }, 5*time.Second, time.Millisecond)

	// Only the first waiter's timer is due after one unit.
	clk.Step(time.Millisecond)
	first := <-results
	assert.Equal(t, ms+1-Epoch, Decode(first).Timestamp)
	assert.True(t, clk.HasWaiters(), "second waiter sleeps two units")

	clk.Step(time.Millisecond)
	second := <-results
	assert.Equal(t, ms+2-Epoch, Decode(second).Timestamp)
	assert.NotEqual(t, first, second)

	_, _, waiting := g.state()
	assert.Zero(t, waiting)
}

func TestClockRegression(t *testing.T) {
	g, clk := newFakeGenerator(t, 1, 1)
	ctx := context.Background()

	_, err := g.Generate(ctx)
	require.NoError(t, err)
	_, err = g.Generate(ctx)
	require.NoError(t, err)
	lastBefore, seqBefore, _ := g.state()

	clk.SetTime(baseTime.Add(-5 * time.Millisecond))
	id, err := g.Generate(ctx)
	require.Error(t, err)
	assert.Zero(t, id)
	assert.ErrorIs(t, err, ErrClockRegression)
	var rerr *ClockRegressionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, int64(5), rerr.Last-rerr.Now)

	lastAfter, seqAfter, _ := g.state()
	assert.Equal(t, lastBefore, lastAfter, "failed call leaves last timestamp")
	assert.Equal(t, seqBefore, seqAfter, "failed call leaves sequence")

	// Usable again once the clock catches up.
	clk.SetTime(baseTime)
	id, err = g.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), Decode(id).Sequence)
}

func TestCancelWhileWaiting(t *testing.T) {
	g, clk := newFakeGenerator(t, 2, 2)
	exhaust(t, g)
	lastBefore, seqBefore, _ := g.state()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := g.Generate(ctx)
		errCh <- err
	}()
	require.Eventually(t, clk.HasWaiters, 5*time.Second, time.Millisecond)
	cancel()

	var err error
	select {
	case err = <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled caller did not return")
	}
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled, "caller's cancellation is not swallowed")
	var cerr *CancelledError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, baseTime.UnixMilli(), cerr.Timestamp)

	lastAfter, seqAfter, waiting := g.state()
	assert.Equal(t, lastBefore, lastAfter)
	assert.Equal(t, seqBefore, seqAfter)
	assert.Zero(t, waiting)
	assert.False(t, clk.HasWaiters(), "timer released on cancel")
}

func TestDeadlineWhileWaiting(t *testing.T) {
	g, _ := newFakeGenerator(t, 2, 3)
	exhaust(t, g)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := g.Generate(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestEpochOverflow(t *testing.T) {
	clk := clocktesting.NewFakeClock(time.UnixMilli(Epoch - 1))
	g, err := New(0, 0, WithClock(clk))
	require.NoError(t, err)

	_, err = g.Generate(context.Background())
	assert.ErrorIs(t, err, ErrEpochOverflow)
	last, _, _ := g.state()
	assert.Equal(t, int64(-1), last)

	clk.SetTime(time.UnixMilli(Epoch))
	id, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)
}

func TestWithWaitUnitIgnoresNonPositive(t *testing.T) {
	g, err := New(0, 0, WithWaitUnit(0))
	require.NoError(t, err)
	assert.Equal(t, DefaultWaitUnit, g.waitUnit)

	g, err = New(0, 0, WithWaitUnit(3*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Millisecond, g.waitUnit)
}

func BenchmarkGenerate(b *testing.B) {
	g, err := New(1, 1)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := g.Generate(ctx); err != nil {
				b.Error(err)
			}
		}
	})
}
