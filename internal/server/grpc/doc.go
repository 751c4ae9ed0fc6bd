// Package grpcserver serves snowgen.v1.IDService and grpc.health.v1 over
// gRPC, backed by the shared id service.
package grpcserver
