package runtime

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cfgpkg "github.com/DJ45X/snowgen/internal/config"
	"github.com/DJ45X/snowgen/internal/injector"
	"github.com/DJ45X/snowgen/pkg/snowflake"
)

func TestOpenCloseHealth(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Ledger.Dir = t.TempDir()
	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if rt.Ledger() == nil {
		t.Fatalf("ledger should be open when ledger.dir is set")
	}
	if rt.Generator().NodeGroup() != 24 || rt.Generator().NodeInstance() != 30 {
		t.Fatalf("generator identity from config")
	}
}

func TestOpenWithoutLedger(t *testing.T) {
	rt, err := Open(Options{Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	if rt.Ledger() != nil {
		t.Fatalf("no ledger expected")
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Node.Group = 32
	if _, err := Open(Options{Config: cfg}); err == nil {
		t.Fatalf("node group 32 must fail")
	}

	cfg = cfgpkg.Default()
	cfg.Inject.Where = "line +"
	if _, err := Open(Options{Config: cfg}); err == nil {
		t.Fatalf("bad filter must fail")
	}
}

func TestInjectFileRecordsRun(t *testing.T) {
	dir := t.TempDir()
	cfg := cfgpkg.Default()
	cfg.Ledger.Dir = filepath.Join(dir, "ledger")
	cfg.Ledger.Fsync = "never"
	cfg.Inject.IDFormat = "base36"
	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	in := filepath.Join(dir, "users.csv")
	if err := os.WriteFile(in, []byte("name\nann\nbo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	res, err := rt.InjectFile(ctx, in, "")
	if err != nil {
		t.Fatalf("inject: %v", err)
	}
	if res.Rows != 2 || res.Output != injector.OutputPath(in, "") {
		t.Fatalf("result: %+v", res)
	}

	data, err := os.ReadFile(res.Output)
	if err != nil {
		t.Fatal(err)
	}
	second := strings.Split(string(data), "\n")[1]
	idText, _, _ := strings.Cut(second, ",")
	id, err := snowflake.FormatBase36.Parse(idText)
	if err != nil || id != res.FirstID {
		t.Fatalf("base36 id %q: %v", idText, err)
	}

	entry, err := rt.Ledger().Lookup(ctx, res.LastID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if entry.Row != 2 || entry.Line != 3 {
		t.Fatalf("entry: %+v", entry)
	}
	run, err := rt.Ledger().GetRun(ctx, entry.RunID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.Meta.Input != in || run.Stats.Rows != 2 || run.FinishedAt == nil {
		t.Fatalf("run: %+v", run)
	}
}

func TestInjectFileFailureFinishesRun(t *testing.T) {
	dir := t.TempDir()
	cfg := cfgpkg.Default()
	cfg.Ledger.Dir = filepath.Join(dir, "ledger")
	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	ctx := context.Background()
	if _, err := rt.InjectFile(ctx, filepath.Join(dir, "missing.csv"), ""); !errors.Is(err, injector.ErrInputNotFound) {
		t.Fatalf("want ErrInputNotFound, got %v", err)
	}

	in := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(in, []byte("h\na\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.InjectFile(ctx, in, filepath.Join(dir, "no-such-dir", "out.csv")); err == nil {
		t.Fatalf("expected error for unwritable output")
	}
	runs, err := rt.Ledger().Runs(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Error == "" || runs[0].FinishedAt == nil {
		t.Fatalf("failed run should be recorded: %+v", runs)
	}
}
