package client

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/DJ45X/snowgen/internal/config"
	"github.com/DJ45X/snowgen/internal/injector"
	"github.com/DJ45X/snowgen/internal/runtime"
	grpcserver "github.com/DJ45X/snowgen/internal/server/grpc"
	idsvc "github.com/DJ45X/snowgen/internal/services/ids"
	"github.com/DJ45X/snowgen/pkg/snowflake"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRoot("test")
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestInjectPrintsSummary(t *testing.T) {
	in := writeFile(t, "people.csv", "name,age\nalice,30\n\nbob,41\n")
	out, err := execute(t, "inject", in)
	require.NoError(t, err)

	want := filepath.Join(filepath.Dir(in), "people_processed.csv")
	assert.Contains(t, out, "Processing file: "+in+"\n")
	assert.Contains(t, out, "Successfully processed 2 data rows.\n")
	assert.Contains(t, out, "Output written to: "+want+"\n")

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name,age", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",alice,30"))
	assert.True(t, strings.HasSuffix(lines[2], ",bob,41"))
}

func TestInjectWithFilterAndOptions(t *testing.T) {
	in := writeFile(t, "orders.txt", "sku;qty\na;1\nb;5\nc;9\n")
	dst := filepath.Join(t.TempDir(), "out.txt")
	out, err := execute(t, "inject", in, "--out", dst, "--delimiter", ";", "--column", "uid",
		"--where", `int(col["qty"]) > 2`, "--id-format", "base58")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully processed 2 data rows.")
	assert.Contains(t, out, "Filtered out 1 data rows.")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "uid;sku;qty", lines[0])
	id, err := snowflake.FormatBase58.Parse(strings.SplitN(lines[1], ";", 2)[0])
	require.NoError(t, err)
	assert.Equal(t, int64(24), snowflake.Decode(id).NodeGroup)
}

func TestInjectErrors(t *testing.T) {
	_, err := execute(t, "inject")
	assert.ErrorIs(t, err, errUsage)

	_, err = execute(t, "inject", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, injector.ErrInputNotFound)

	_, err = execute(t, "inject", t.TempDir())
	assert.ErrorIs(t, err, injector.ErrInputNotFound)
}

func TestInjectNodeOverride(t *testing.T) {
	in := writeFile(t, "a.csv", "h\nx\n")
	_, err := execute(t, "--node-group", "3", "--node-instance", "4", "inject", in)
	require.NoError(t, err)
	data, err := os.ReadFile(injector.OutputPath(in, injector.DefaultSuffix))
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	id, err := strconv.ParseInt(strings.SplitN(lines[1], ",", 2)[0], 10, 64)
	require.NoError(t, err)
	p := snowflake.Decode(id)
	assert.Equal(t, int64(3), p.NodeGroup)
	assert.Equal(t, int64(4), p.NodeInstance)

	_, err = execute(t, "--node-group", "32", "inject", in)
	assert.ErrorIs(t, err, snowflake.ErrInvalidConfig)
}

func TestMintAndDecode(t *testing.T) {
	out, err := execute(t, "mint", "--count", "3")
	require.NoError(t, err)
	lines := strings.Fields(out)
	require.Len(t, lines, 3)
	for _, l := range lines {
		_, err := strconv.ParseInt(l, 10, 64)
		require.NoError(t, err)
	}

	_, err = execute(t, "mint", "--count", "0")
	assert.ErrorIs(t, err, idsvc.ErrInvalidCount)

	id, err := snowflake.Compose(snowflake.Parts{Timestamp: 1000, NodeGroup: 3, NodeInstance: 7, Sequence: 11})
	require.NoError(t, err)
	out, err = execute(t, "decode", strconv.FormatInt(id, 10))
	require.NoError(t, err)
	assert.Contains(t, out, "node_group:    3\n")
	assert.Contains(t, out, "node_instance: 7\n")
	assert.Contains(t, out, "sequence:      11\n")
	assert.Contains(t, out, "base58:")

	out, err = execute(t, "decode", snowflake.FormatBase36.Encode(id), "--id-format", "base36", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "`+strconv.FormatInt(id, 10)+`"`)

	_, err = execute(t, "decode", "zz")
	assert.ErrorIs(t, err, idsvc.ErrInvalidID)
}

func TestLedgerLookupAndRuns(t *testing.T) {
	ledgerDir := filepath.Join(t.TempDir(), "ledger")
	in := writeFile(t, "people.csv", "name\nalice\nbob\n")
	_, err := execute(t, "inject", in, "--ledger", ledgerDir)
	require.NoError(t, err)

	data, err := os.ReadFile(injector.OutputPath(in, injector.DefaultSuffix))
	require.NoError(t, err)
	bob := strings.SplitN(strings.Split(string(data), "\n")[2], ",", 2)[0]

	out, err := execute(t, "lookup", bob, "--ledger", ledgerDir)
	require.NoError(t, err)
	assert.Contains(t, out, "row:     2\n")
	assert.Contains(t, out, "line:    3\n")
	assert.Contains(t, out, "input:   "+in+"\n")

	out, err = execute(t, "runs", "--ledger", ledgerDir)
	require.NoError(t, err)
	assert.Contains(t, out, "rows=2")
	assert.Contains(t, out, " ok\n")

	_, err = execute(t, "lookup", bob)
	assert.ErrorIs(t, err, idsvc.ErrNoLedger)
}

func TestMintOverGRPC(t *testing.T) {
	rt, err := runtime.Open(runtime.Options{Config: cfgpkg.Default()})
	require.NoError(t, err)
	defer rt.Close()
	srv := grpcserver.New(rt)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, l)
	}()
	defer func() {
		cancel()
		<-done
	}()

	out, err := execute(t, "mint", "--count", "2", "--grpc", l.Addr().String())
	require.NoError(t, err)
	ids := strings.Fields(out)
	require.Len(t, ids, 2)

	out, err = execute(t, "decode", ids[0], "--grpc", l.Addr().String())
	require.NoError(t, err)
	assert.Contains(t, out, "node_group:    24\n")
	assert.Contains(t, out, "node_instance: 30\n")
}
