package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"k8s.io/utils/clock"

	cfgpkg "github.com/DJ45X/snowgen/internal/config"
	"github.com/DJ45X/snowgen/internal/injector"
	"github.com/DJ45X/snowgen/internal/ledger"
	"github.com/DJ45X/snowgen/internal/rowfilter"
	pebblestore "github.com/DJ45X/snowgen/internal/storage/pebble"
	logpkg "github.com/DJ45X/snowgen/pkg/log"
	"github.com/DJ45X/snowgen/pkg/snowflake"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
	// Clock drives the generator; nil uses the real clock.
	Clock clock.Clock
	// LedgerReadOnly opens the ledger for lookups only.
	LedgerReadOnly bool
	Metrics        pebblestore.MetricsHook
}

// Runtime wires config, the generator and the optional ledger for one process.
type Runtime struct {
	config cfgpkg.Config
	logger logpkg.Logger
	gen    *snowflake.Generator
	ledger *ledger.Ledger
	filter *rowfilter.Filter
	format snowflake.Format
}

// Open validates the configuration, builds the generator and opens the
// ledger when ledger.dir is set.
func Open(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}

	var genOpts []snowflake.Option
	if opts.Clock != nil {
		genOpts = append(genOpts, snowflake.WithClock(opts.Clock))
	}
	gen, err := snowflake.NewFromIdentity(cfg.Node, genOpts...)
	if err != nil {
		return nil, err
	}

	format, err := snowflake.ParseFormat(cfg.Inject.IDFormat)
	if err != nil {
		return nil, err
	}
	filter, err := rowfilter.Compile(cfg.Inject.Where)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{config: cfg, logger: logger, gen: gen, filter: filter, format: format}

	if cfg.Ledger.Dir != "" {
		mode, err := pebblestore.ParseFsyncMode(cfg.Ledger.Fsync)
		if err != nil {
			return nil, err
		}
		l, err := ledger.Open(ledger.Options{
			DataDir:       cfg.Ledger.Dir,
			Fsync:         mode,
			FsyncInterval: cfg.Ledger.FsyncInterval,
			BatchSize:     cfg.Ledger.BatchSize,
			ReadOnly:      opts.LedgerReadOnly,
			Logger:        logger,
			Metrics:       opts.Metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("ledger: %w", err)
		}
		rt.ledger = l
	}

	logger.Debug("runtime opened",
		logpkg.Int64("node_group", gen.NodeGroup()),
		logpkg.Int64("node_instance", gen.NodeInstance()),
		logpkg.Bool("ledger", rt.ledger != nil))
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.ledger == nil {
		return nil
	}
	return r.ledger.Close()
}

// CheckHealth reports whether the generator can mint and the ledger, if
// any, is readable.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.gen == nil {
		return errors.New("generator not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.ledger != nil {
		if err := r.ledger.Ping(); err != nil {
			return fmt.Errorf("ledger: %w", err)
		}
	}
	return nil
}

// Generator returns the process-wide generator.
func (r *Runtime) Generator() *snowflake.Generator { return r.gen }

// Ledger returns the ledger, or nil when none is configured.
func (r *Runtime) Ledger() *ledger.Ledger { return r.ledger }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the process logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }

// InjectOptions returns injector options from the inject config section.
func (r *Runtime) InjectOptions() injector.Options {
	ic := r.config.Inject
	return injector.Options{
		Column:           ic.HeaderColumn,
		Delimiter:        ic.Delimiter,
		Format:           r.format,
		Filter:           r.filter,
		ClockRetryWindow: ic.ClockRetryWindow,
		OutputSuffix:     ic.OutputSuffix,
		Logger:           r.logger.With(logpkg.Component("injector")),
	}
}

// InjectFile runs one file injection with the configured options. With a
// ledger, every emitted id is recorded under a new run that is finished
// even when the injection fails.
func (r *Runtime) InjectFile(ctx context.Context, input, output string) (res injector.Result, err error) {
	opts := r.InjectOptions()
	if r.ledger == nil {
		return injector.InjectFile(ctx, input, output, r.gen, opts)
	}
	if info, serr := os.Stat(input); serr != nil || info.IsDir() {
		return injector.Result{Input: input}, fmt.Errorf("%w: %s", injector.ErrInputNotFound, input)
	}
	if output == "" {
		output = injector.OutputPath(input, opts.OutputSuffix)
	}

	run, err := r.ledger.BeginRun(ctx, ledger.RunMeta{
		Input:        input,
		Output:       output,
		NodeGroup:    r.gen.NodeGroup(),
		NodeInstance: r.gen.NodeInstance(),
		Where:        r.filter.String(),
		Format:       string(r.format),
	})
	if err != nil {
		return injector.Result{Input: input, Output: output}, err
	}
	opts.Recorder = run
	defer func() {
		ferr := run.Finish(context.WithoutCancel(ctx), res.Stats(), err)
		err = multierr.Append(err, ferr)
	}()
	res, err = injector.InjectFile(ctx, input, output, r.gen, opts)
	if err == nil {
		r.logger.Info("run recorded", logpkg.Str(logpkg.RunIDKey, run.ID()))
	}
	return res, err
}
