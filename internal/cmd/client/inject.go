package client

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	cfgpkg "github.com/DJ45X/snowgen/internal/config"
	"github.com/DJ45X/snowgen/internal/injector"
)

// errUsage is returned when inject is called without an input file.
var errUsage = errors.New("usage: snowgen inject <input_file>: please provide the path to the input file")

// newInjectCommand constructs the `inject` command.
func newInjectCommand(st *cliState) *cobra.Command {
	var (
		out        string
		where      string
		idFormat   string
		ledgerDir  string
		column     string
		delimiter  string
		clockRetry time.Duration
	)
	cmd := &cobra.Command{
		Use:   "inject <input_file>",
		Short: "Prepend a fresh id to every data row of a file",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errUsage
			}
			if len(args) > 1 {
				return fmt.Errorf("inject accepts one input file, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			input := args[0]
			ic := &st.cfg.Inject
			if where != "" {
				ic.Where = where
			}
			if idFormat != "" {
				ic.IDFormat = idFormat
			}
			if column != "" {
				ic.HeaderColumn = column
			}
			if delimiter != "" {
				ic.Delimiter = delimiter
			}
			if cmd.Flags().Changed("clock-retry") {
				ic.ClockRetryWindow = clockRetry
			}
			if ledgerDir != "" {
				st.cfg.Ledger.Dir = cfgpkg.ResolveLedgerDir(ledgerDir)
			}

			if info, err := os.Stat(input); err != nil || info.IsDir() {
				return fmt.Errorf("%w: %s", injector.ErrInputNotFound, input)
			}

			rt, err := st.openRuntime(false)
			if err != nil {
				return err
			}
			defer rt.Close()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Processing file: %s\n", input)
			res, err := rt.InjectFile(cmd.Context(), input, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Successfully processed %d data rows.\n", res.Rows)
			if res.Filtered > 0 {
				fmt.Fprintf(w, "Filtered out %d data rows.\n", res.Filtered)
			}
			fmt.Fprintf(w, "Output written to: %s\n", res.Output)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "", "Output path (default <stem>_processed<ext> next to the input)")
	f.StringVar(&where, "where", "", "CEL expression selecting data rows to keep, e.g. col[\"country\"] == \"NG\"")
	f.StringVar(&idFormat, "id-format", "", "Id text format: decimal|base2|base32|base36|base58|base64")
	f.StringVar(&ledgerDir, "ledger", "", "Record every emitted id in the ledger at this directory (\"auto\" for the default data dir)")
	f.StringVar(&column, "column", "", "Header name of the id column")
	f.StringVar(&delimiter, "delimiter", "", "Field delimiter")
	f.DurationVar(&clockRetry, "clock-retry", 0, "Keep retrying for this long when the clock moves backwards, e.g. 50ms")
	return cmd
}
