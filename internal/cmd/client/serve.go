package client

import (
	"fmt"

	"github.com/spf13/cobra"

	serverrun "github.com/DJ45X/snowgen/internal/cmd/server"
	cfgpkg "github.com/DJ45X/snowgen/internal/config"
)

// newServeCommand constructs the `serve` command.
func newServeCommand(st *cliState) *cobra.Command {
	var grpcAddr, httpAddr, ledgerDir string
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the id service over gRPC and HTTP",
		Aliases: []string{"server"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if grpcAddr != "" {
				st.cfg.Server.GRPCAddr = grpcAddr
			}
			if httpAddr != "" {
				st.cfg.Server.HTTPAddr = httpAddr
			}
			if ledgerDir != "" {
				st.cfg.Ledger.Dir = cfgpkg.ResolveLedgerDir(ledgerDir)
			}
			if err := serverrun.Run(cmd.Context(), serverrun.Options{Config: st.cfg, Logger: st.logger}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&grpcAddr, "grpc", "", "gRPC listen address (default from config, :7070)")
	cmd.Flags().StringVar(&httpAddr, "http", "", "HTTP listen address (default from config, :8080)")
	cmd.Flags().StringVar(&ledgerDir, "ledger", "", "Ledger directory, \"auto\" for the default data dir (disabled when empty)")
	return cmd
}
