package client

import (
	"context"
	"encoding/json"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	transports "github.com/DJ45X/snowgen/internal/cmd/client/transports"
	"github.com/DJ45X/snowgen/internal/runtime"
	idsvc "github.com/DJ45X/snowgen/internal/services/ids"
)

// grpcDialer dials a snowgen gRPC endpoint with insecure transport for local/dev.
func grpcDialer(addr string) func(ctx context.Context) (*grpc.ClientConn, error) {
	return func(ctx context.Context) (*grpc.ClientConn, error) {
		return grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
}

// openRuntime opens the runtime for st.cfg. readOnly opens the ledger for
// lookups only.
func (st *cliState) openRuntime(readOnly bool) (*runtime.Runtime, error) {
	return runtime.Open(runtime.Options{Config: st.cfg, Logger: st.logger, LedgerReadOnly: readOnly})
}

// withTransport runs fn against the remote server when grpcAddr is set,
// otherwise against an in-process runtime.
func (st *cliState) withTransport(grpcAddr string, readOnly bool, fn func(transports.IDsTransport) error) error {
	if grpcAddr != "" {
		return fn(transports.NewGrpcTransport(grpcDialer(grpcAddr)))
	}
	rt, err := st.openRuntime(readOnly)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(transports.NewLocalTransport(idsvc.New(rt)))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
