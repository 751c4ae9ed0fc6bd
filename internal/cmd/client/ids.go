package client

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	transports "github.com/DJ45X/snowgen/internal/cmd/client/transports"
	cfgpkg "github.com/DJ45X/snowgen/internal/config"
	idsvc "github.com/DJ45X/snowgen/internal/services/ids"
	"github.com/DJ45X/snowgen/pkg/snowflake"
)

// newMintCommand constructs the `mint` command.
func newMintCommand(st *cliState) *cobra.Command {
	var (
		count    int
		grpcAddr string
		idFormat string
	)
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Print new ids, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			format, err := outputFormat(idFormat, st.cfg.Inject.IDFormat)
			if err != nil {
				return err
			}
			return st.withTransport(grpcAddr, false, func(t transports.IDsTransport) error {
				ids, err := t.Mint(cmd.Context(), count)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, id := range ids {
					fmt.Fprintln(w, format.Encode(id))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, fmt.Sprintf("Number of ids (1-%d)", idsvc.MaxMint))
	cmd.Flags().StringVar(&grpcAddr, "grpc", "", "Mint on a running server at this gRPC address instead of locally")
	cmd.Flags().StringVar(&idFormat, "id-format", "", "Output format: decimal|base2|base32|base36|base58|base64")
	return cmd
}

// newDecodeCommand constructs the `decode` command.
func newDecodeCommand(st *cliState) *cobra.Command {
	var (
		idFormat string
		grpcAddr string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "decode <id>",
		Short: "Split an id into timestamp, node and sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			id, err := parseID(args[0], idFormat)
			if err != nil {
				return err
			}
			return st.withTransport(grpcAddr, true, func(t transports.IDsTransport) error {
				d, err := t.Decode(cmd.Context(), id)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(w, decodeView(d))
				}
				fmt.Fprintf(w, "id:            %d\n", d.ID)
				fmt.Fprintf(w, "time:          %s\n", d.Time.UTC().Format(time.RFC3339Nano))
				fmt.Fprintf(w, "timestamp:     %d\n", d.Timestamp)
				fmt.Fprintf(w, "node_group:    %d\n", d.NodeGroup)
				fmt.Fprintf(w, "node_instance: %d\n", d.NodeInstance)
				fmt.Fprintf(w, "sequence:      %d\n", d.Sequence)
				for _, f := range snowflake.Formats() {
					if v, ok := d.Encodings[string(f)]; ok {
						fmt.Fprintf(w, "%-14s %s\n", string(f)+":", v)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&idFormat, "id-format", "", "Format of the id argument (default decimal)")
	cmd.Flags().StringVar(&grpcAddr, "grpc", "", "Decode on a running server at this gRPC address")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

// newLookupCommand constructs the `lookup` command.
func newLookupCommand(st *cliState) *cobra.Command {
	var (
		idFormat  string
		grpcAddr  string
		ledgerDir string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "lookup <id>",
		Short: "Show which file row received an id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			id, err := parseID(args[0], idFormat)
			if err != nil {
				return err
			}
			if ledgerDir != "" {
				st.cfg.Ledger.Dir = cfgpkg.ResolveLedgerDir(ledgerDir)
			}
			if grpcAddr == "" && st.cfg.Ledger.Dir == "" {
				return fmt.Errorf("%w: pass --ledger or set ledger.dir", idsvc.ErrNoLedger)
			}
			return st.withTransport(grpcAddr, true, func(t transports.IDsTransport) error {
				rec, err := t.Lookup(cmd.Context(), id)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(w, lookupView(rec))
				}
				fmt.Fprintf(w, "id:      %d\n", rec.ID)
				fmt.Fprintf(w, "run:     %s\n", rec.RunID)
				fmt.Fprintf(w, "line:    %d\n", rec.Line)
				fmt.Fprintf(w, "row:     %d\n", rec.Row)
				if rec.Input != "" {
					fmt.Fprintf(w, "input:   %s\n", rec.Input)
					fmt.Fprintf(w, "output:  %s\n", rec.Output)
					fmt.Fprintf(w, "started: %s\n", rec.StartedAt.UTC().Format(time.RFC3339))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&idFormat, "id-format", "", "Format of the id argument (default decimal)")
	cmd.Flags().StringVar(&grpcAddr, "grpc", "", "Look up on a running server at this gRPC address")
	cmd.Flags().StringVar(&ledgerDir, "ledger", "", "Ledger directory (\"auto\" for the default data dir)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

// newRunsCommand constructs the `runs` command listing ledger runs.
func newRunsCommand(st *cliState) *cobra.Command {
	var (
		ledgerDir string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded injection runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if ledgerDir != "" {
				st.cfg.Ledger.Dir = cfgpkg.ResolveLedgerDir(ledgerDir)
			}
			if st.cfg.Ledger.Dir == "" {
				return fmt.Errorf("%w: pass --ledger or set ledger.dir", idsvc.ErrNoLedger)
			}
			rt, err := st.openRuntime(true)
			if err != nil {
				return err
			}
			defer rt.Close()
			runs, err := rt.Ledger().Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range runs {
				status := "ok"
				switch {
				case r.Error != "":
					status = "failed: " + r.Error
				case r.FinishedAt == nil:
					status = "unfinished"
				}
				fmt.Fprintf(w, "%s  %s  %s -> %s  rows=%d filtered=%d  %s\n",
					r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.Meta.Input, r.Meta.Output,
					r.Stats.Rows, r.Stats.Filtered, status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ledgerDir, "ledger", "", "Ledger directory (\"auto\" for the default data dir)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list (0 = all)")
	return cmd
}

func outputFormat(flag, configured string) (snowflake.Format, error) {
	if flag != "" {
		return snowflake.ParseFormat(flag)
	}
	return snowflake.ParseFormat(configured)
}

func parseID(text, format string) (int64, error) {
	f, err := snowflake.ParseFormat(format)
	if err != nil {
		return 0, err
	}
	id, err := f.Parse(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", idsvc.ErrInvalidID, err)
	}
	return id, nil
}

func decodeView(d transports.DecodedID) map[string]any {
	return map[string]any{
		"id":            strconv.FormatInt(d.ID, 10),
		"time":          d.Time.UTC().Format(time.RFC3339Nano),
		"timestamp":     d.Timestamp,
		"node_group":    d.NodeGroup,
		"node_instance": d.NodeInstance,
		"sequence":      d.Sequence,
		"encodings":     d.Encodings,
	}
}

func lookupView(r transports.LedgerRecord) map[string]any {
	out := map[string]any{
		"id":     strconv.FormatInt(r.ID, 10),
		"run_id": r.RunID,
		"line":   r.Line,
		"row":    r.Row,
	}
	if r.Input != "" {
		out["input"] = r.Input
		out["output"] = r.Output
		out["started_at"] = r.StartedAt.UTC().Format(time.RFC3339Nano)
	}
	return out
}
