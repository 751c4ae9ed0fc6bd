package grpcserver

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	snowgenv1 "github.com/DJ45X/snowgen/api/snowgen/v1"
	cfgpkg "github.com/DJ45X/snowgen/internal/config"
	"github.com/DJ45X/snowgen/internal/runtime"
)

const bufSize = 1 << 20

func dialer(s *grpc.Server) func(context.Context, string) (net.Conn, error) {
	lis := bufconn.Listen(bufSize)
	go func() { _ = s.Serve(lis) }()
	return func(ctx context.Context, s string) (net.Conn, error) { return lis.DialContext(ctx) }
}

func openRuntime(t *testing.T, withLedger bool) *runtime.Runtime {
	t.Helper()
	cfg := cfgpkg.Default()
	if withLedger {
		cfg.Ledger.Dir = filepath.Join(t.TempDir(), "ledger")
		cfg.Ledger.Fsync = "never"
	}
	rt, err := runtime.Open(runtime.Options{Config: cfg})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func connect(t *testing.T, rt *runtime.Runtime) (*grpc.ClientConn, context.Context) {
	t.Helper()
	srv := New(rt)
	t.Cleanup(srv.Close)
	d := dialer(srv.grpc)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(d), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn, ctx
}

func TestHealthOverGRPC(t *testing.T) {
	conn, ctx := connect(t, openRuntime(t, false))
	c := healthpb.NewHealthClient(conn)
	for _, svc := range []string{"", snowgenv1.IDService_ServiceName} {
		res, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: svc})
		if err != nil {
			t.Fatalf("check %q: %v", svc, err)
		}
		if res.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			t.Fatalf("status %q = %v", svc, res.GetStatus())
		}
	}
}

func TestMintAndDecodeOverGRPC(t *testing.T) {
	conn, ctx := connect(t, openRuntime(t, false))
	c := snowgenv1.NewIDServiceClient(conn)

	res, err := c.Mint(ctx, wrapperspb.UInt32(3))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if len(res.GetValues()) != 3 {
		t.Fatalf("want 3 ids, got %d", len(res.GetValues()))
	}
	var prev int64
	for _, v := range res.GetValues() {
		id, err := strconv.ParseInt(v.GetStringValue(), 10, 64)
		if err != nil {
			t.Fatalf("parse %q: %v", v.GetStringValue(), err)
		}
		if id <= prev {
			t.Fatalf("ids not increasing: %d after %d", id, prev)
		}
		prev = id
	}

	d, err := c.Decode(ctx, wrapperspb.Int64(prev))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := d.AsMap()
	if m["node_group"].(float64) != 24 || m["node_instance"].(float64) != 30 {
		t.Fatalf("unexpected node fields: %v", m)
	}
	if m["id"] != strconv.FormatInt(prev, 10) {
		t.Fatalf("id = %v", m["id"])
	}
}

func TestErrorCodesOverGRPC(t *testing.T) {
	conn, ctx := connect(t, openRuntime(t, false))
	c := snowgenv1.NewIDServiceClient(conn)

	_, err := c.Mint(ctx, wrapperspb.UInt32(0))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("mint 0: %v", err)
	}
	_, err = c.Decode(ctx, wrapperspb.Int64(-5))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("decode -5: %v", err)
	}
	_, err = c.Lookup(ctx, wrapperspb.Int64(1))
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("lookup without ledger: %v", err)
	}
}

func TestLookupOverGRPC(t *testing.T) {
	rt := openRuntime(t, true)
	in := filepath.Join(t.TempDir(), "in.csv")
	if err := os.WriteFile(in, []byte("name\nalice\nbob\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := rt.InjectFile(context.Background(), in, "")
	if err != nil {
		t.Fatalf("inject: %v", err)
	}

	conn, ctx := connect(t, rt)
	c := snowgenv1.NewIDServiceClient(conn)
	got, err := c.Lookup(ctx, wrapperspb.Int64(res.LastID))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	m := got.AsMap()
	if m["row"].(float64) != 2 || m["input"] != in {
		t.Fatalf("unexpected record: %v", m)
	}

	_, err = c.Lookup(ctx, wrapperspb.Int64(res.LastID+1))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("lookup missing: %v", err)
	}
}
