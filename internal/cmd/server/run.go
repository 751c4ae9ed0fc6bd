package serverrun

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/multierr"

	cfgpkg "github.com/DJ45X/snowgen/internal/config"
	"github.com/DJ45X/snowgen/internal/runtime"
	grpcserver "github.com/DJ45X/snowgen/internal/server/grpc"
	httpserver "github.com/DJ45X/snowgen/internal/server/http"
	idsvc "github.com/DJ45X/snowgen/internal/services/ids"
	logpkg "github.com/DJ45X/snowgen/pkg/log"
)

type Options struct {
	Config cfgpkg.Config
	// Logger overrides the logger built from Config.Log.
	Logger logpkg.Logger
	// Ready, when set, receives the bound addresses once both listeners are up.
	Ready func(grpcAddr, httpAddr string)
}

// Run starts gRPC and HTTP servers and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	procLogger := opts.Logger
	if procLogger == nil {
		l, err := logpkg.ApplyConfig(&opts.Config.Log)
		if err != nil {
			return err
		}
		procLogger = l
		defer procLogger.Close()
	}
	// Redirect stdlib logs (e.g., Pebble) to our logger
	restore := logpkg.RedirectStdLog(procLogger)
	defer restore()

	rt, err := runtime.Open(runtime.Options{Config: opts.Config, Logger: procLogger})
	if err != nil {
		return err
	}
	defer rt.Close()

	procLogger.Info("starting snowgen server",
		logpkg.Str("grpc", opts.Config.Server.GRPCAddr),
		logpkg.Str("http", opts.Config.Server.HTTPAddr),
		logpkg.Int64("node_group", opts.Config.Node.Group),
		logpkg.Int64("node_instance", opts.Config.Node.Instance),
		logpkg.Str("ledger", opts.Config.Ledger.Dir),
	)

	// One service instance shared by both transports
	svc := idsvc.NewWithLogger(rt, procLogger.With(logpkg.Component("ids")))
	gsrv := grpcserver.NewWithService(rt, svc, procLogger)
	hsrv := httpserver.NewWithService(rt, svc, procLogger)

	gl, err := listen(opts.Config.Server.GRPCAddr)
	if err != nil {
		return err
	}
	hl, err := listen(opts.Config.Server.HTTPAddr)
	if err != nil {
		_ = gl.Close()
		return err
	}
	if opts.Ready != nil {
		opts.Ready(gl.Addr().String(), hl.Addr().String())
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		runErr error
	)
	record := func(name string, err error) {
		if err == nil || sctx.Err() != nil {
			return
		}
		procLogger.Error("server stopped", logpkg.Str("server", name), logpkg.Err(err))
		mu.Lock()
		runErr = multierr.Append(runErr, err)
		mu.Unlock()
		stop()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		record("grpc", gsrv.Serve(sctx, gl))
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		record("http", hsrv.Serve(sctx, hl))
	}()

	<-sctx.Done()
	// Stop servers before closing the runtime and ledger.
	gsrv.Close()
	hsrv.Close()
	wg.Wait()
	procLogger.Info("snowgen server stopped")
	mu.Lock()
	defer mu.Unlock()
	return runErr
}

func listen(addr string) (net.Listener, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return l, nil
}
