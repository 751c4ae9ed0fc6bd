package grpcserver

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	snowgenv1 "github.com/DJ45X/snowgen/api/snowgen/v1"
	"github.com/DJ45X/snowgen/internal/runtime"
	idsvc "github.com/DJ45X/snowgen/internal/services/ids"
	logpkg "github.com/DJ45X/snowgen/pkg/log"
)

// healthInterval is how often the runtime is probed for the health service.
var healthInterval = 5 * time.Second

// Server owns the gRPC server instance and runtime.
type Server struct {
	rt     *runtime.Runtime
	svc    *idsvc.Service
	logger logpkg.Logger
	grpc   *grpc.Server
	health *health.Server
}

// New constructs a gRPC server with its own service instance.
func New(rt *runtime.Runtime, opts ...grpc.ServerOption) *Server {
	return NewWithService(rt, idsvc.New(rt), rt.Logger(), opts...)
}

// NewWithService constructs a gRPC server using a shared service instance.
func NewWithService(rt *runtime.Runtime, svc *idsvc.Service, logger logpkg.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	logger = logger.With(logpkg.Component("grpc"))
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(logUnary(logger))}, opts...)
	s := &Server{
		rt:     rt,
		svc:    svc,
		logger: logger,
		grpc:   grpc.NewServer(opts...),
		health: health.NewServer(),
	}
	snowgenv1.RegisterIDServiceServer(s.grpc, &idsServer{svc: svc})
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.refreshHealth(context.Background())
	return s
}

// refreshHealth mirrors runtime health into the grpc.health.v1 service for
// both the overall server ("") and snowgen.v1.IDService.
func (s *Server) refreshHealth(ctx context.Context) {
	st := healthpb.HealthCheckResponse_SERVING
	if err := s.rt.CheckHealth(ctx); err != nil {
		s.logger.Warn("runtime unhealthy", logpkg.Err(err))
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(snowgenv1.IDService_ServiceName, st)
}

// Serve serves on l until ctx is done. l is closed when the server stops.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()

	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return nil
		case err := <-errCh:
			return err
		case <-ticker.C:
			s.refreshHealth(ctx)
		}
	}
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("grpc listening", logpkg.Str("addr", l.Addr().String()))
	return s.Serve(ctx, l)
}

// Close marks the server not serving and stops it gracefully.
func (s *Server) Close() {
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
}

func logUnary(logger logpkg.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []logpkg.Field{logpkg.Str("method", info.FullMethod), logpkg.Dur("dur", time.Since(start))}
		if err != nil {
			logger.Debug("rpc failed", append(fields, logpkg.Err(err))...)
		} else {
			logger.Debug("rpc", fields...)
		}
		return resp, err
	}
}
