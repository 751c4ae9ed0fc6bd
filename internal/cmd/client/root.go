package client

import (
	"github.com/spf13/cobra"

	cfgpkg "github.com/DJ45X/snowgen/internal/config"
	logpkg "github.com/DJ45X/snowgen/pkg/log"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath   string
	logLevel     string
	logFormat    string
	nodeGroup    int64
	nodeInstance int64
}

// cliState is filled by the root PersistentPreRunE and read by subcommands.
type cliState struct {
	flags      globalFlags
	cfg        cfgpkg.Config
	logger     logpkg.Logger
	restoreLog func()
}

// NewRoot constructs the root Cobra command for snowgen with all command
// groups registered.
func NewRoot(version string) *cobra.Command {
	st := &cliState{}
	root := &cobra.Command{
		Use:     "snowgen",
		Short:   "Snowflake id generator and file id injector",
		Long:    "snowgen mints 64-bit snowflake ids and prepends them to the rows of delimited text files.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return st.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&st.flags.configPath, "config", "", "Config file (.yaml, .yml or .json)")
	pf.StringVar(&st.flags.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	pf.StringVar(&st.flags.logFormat, "log-format", "", "Log format: text|json")
	pf.Int64Var(&st.flags.nodeGroup, "node-group", 0, "Node group (0-31), overrides config")
	pf.Int64Var(&st.flags.nodeInstance, "node-instance", 0, "Node instance (0-31), overrides config")

	root.AddCommand(
		newInjectCommand(st),
		newMintCommand(st),
		newDecodeCommand(st),
		newLookupCommand(st),
		newRunsCommand(st),
		newServeCommand(st),
	)
	return root
}

func (st *cliState) init(cmd *cobra.Command) error {
	cfg, err := cfgpkg.Load(st.flags.configPath)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("node-group") {
		cfg.Node.Group = st.flags.nodeGroup
	}
	if f.Changed("node-instance") {
		cfg.Node.Instance = st.flags.nodeInstance
	}
	if st.flags.logLevel != "" {
		cfg.Log.Level = st.flags.logLevel
	}
	if st.flags.logFormat != "" {
		cfg.Log.Format = st.flags.logFormat
	}
	logger, err := logpkg.ApplyConfig(&cfg.Log)
	if err != nil {
		return err
	}
	st.cfg = cfg
	st.logger = logger
	// Redirect standard library logs (used by Pebble) to our logger
	st.restoreLog = logpkg.RedirectStdLog(logger)
	return nil
}

func (st *cliState) close() error {
	if st.restoreLog != nil {
		st.restoreLog()
		st.restoreLog = nil
	}
	if st.logger != nil {
		return st.logger.Close()
	}
	return nil
}
