package idsvc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/DJ45X/snowgen/internal/config"
	"github.com/DJ45X/snowgen/internal/ledger"
	"github.com/DJ45X/snowgen/internal/runtime"
	"github.com/DJ45X/snowgen/pkg/snowflake"
)

func newService(t *testing.T, withLedger bool) (*Service, *runtime.Runtime) {
	t.Helper()
	cfg := cfgpkg.Default()
	if withLedger {
		cfg.Ledger.Dir = filepath.Join(t.TempDir(), "ledger")
		cfg.Ledger.Fsync = "never"
	}
	rt, err := runtime.Open(runtime.Options{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return New(rt), rt
}

func TestMint(t *testing.T) {
	svc, _ := newService(t, false)
	ids, err := svc.Mint(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, ids, 50)
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}

	for _, n := range []int{0, -1, MaxMint + 1} {
		_, err := svc.Mint(context.Background(), n)
		assert.ErrorIs(t, err, ErrInvalidCount, "n=%d", n)
	}
}

func TestMintCancelledDuringWait(t *testing.T) {
	svc, _ := newService(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// A cancelled context only fails when the generator has to wait, so
	// this may succeed; it must never return a partial slice.
	ids, err := svc.Mint(ctx, MaxMint)
	if err != nil {
		assert.True(t, errors.Is(err, snowflake.ErrCancelled))
		assert.Nil(t, ids)
	} else {
		assert.Len(t, ids, MaxMint)
	}
}

func TestDecodeAndParse(t *testing.T) {
	svc, _ := newService(t, false)
	id, err := snowflake.Compose(snowflake.Parts{Timestamp: 1000, NodeGroup: 24, NodeInstance: 30, Sequence: 5})
	require.NoError(t, err)

	d, err := svc.Decode(id)
	require.NoError(t, err)
	assert.Equal(t, int64(24), d.Parts.NodeGroup)
	assert.Equal(t, int64(5), d.Parts.Sequence)
	assert.Equal(t, snowflake.Epoch+1000, d.Time.UnixMilli())
	assert.Len(t, d.Encodings, 6)

	got, err := svc.Parse(d.Encodings["base58"], "base58")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = svc.Parse("1", "hex")
	assert.ErrorIs(t, err, snowflake.ErrUnknownFormat)
	_, err = svc.Decode(-1)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, false)
	_, err := svc.Lookup(ctx, 1)
	assert.ErrorIs(t, err, ErrNoLedger)

	svc, rt := newService(t, true)
	in := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(in, []byte("h\nrow\n"), 0o644))
	res, err := rt.InjectFile(ctx, in, "")
	require.NoError(t, err)

	rec, err := svc.Lookup(ctx, res.FirstID)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Entry.Row)
	assert.Equal(t, in, rec.Run.Meta.Input)

	_, err = svc.Lookup(ctx, res.FirstID+1)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	assert.NoError(t, svc.Health(ctx))
}

func TestParseRejectsMalformedText(t *testing.T) {
	svc, _ := newService(t, false)
	_, err := svc.Parse("not-a-number", "decimal")
	assert.ErrorIs(t, err, ErrInvalidID)
}
