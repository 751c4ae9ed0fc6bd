package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/multierr"

	logpkg "github.com/DJ45X/snowgen/pkg/log"
	"github.com/DJ45X/snowgen/pkg/snowflake"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	Node   NodeConfig    `koanf:"node"`
	Inject InjectConfig  `koanf:"inject"`
	Ledger LedgerConfig  `koanf:"ledger"`
	Server ServerConfig  `koanf:"server"`
	Log    logpkg.Config `koanf:"log"`
}

// NodeConfig is the static identity of this generator instance.
type NodeConfig struct {
	Group    int64 `koanf:"group"`
	Instance int64 `koanf:"instance"`
}

func (n NodeConfig) NodeGroup() int64    { return n.Group }
func (n NodeConfig) NodeInstance() int64 { return n.Instance }

// InjectConfig controls how files are rewritten.
type InjectConfig struct {
	HeaderColumn     string        `koanf:"header_column"`
	Delimiter        string        `koanf:"delimiter"`
	IDFormat         string        `koanf:"id_format"`
	Where            string        `koanf:"where"`
	OutputSuffix     string        `koanf:"output_suffix"`
	ClockRetryWindow time.Duration `koanf:"clock_retry_window"`
}

// LedgerConfig enables the pebble-backed ID ledger when Dir is set.
type LedgerConfig struct {
	Dir           string        `koanf:"dir"`
	Fsync         string        `koanf:"fsync"`
	FsyncInterval time.Duration `koanf:"fsync_interval"`
	BatchSize     int           `koanf:"batch_size"`
}

// ServerConfig holds listen addresses for `snowgen serve`.
type ServerConfig struct {
	GRPCAddr string `koanf:"grpc_addr"`
	HTTPAddr string `koanf:"http_addr"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Node: NodeConfig{Group: 24, Instance: 30},
		Inject: InjectConfig{
			HeaderColumn: "id",
			Delimiter:    ",",
			IDFormat:     string(snowflake.FormatDecimal),
			OutputSuffix: "_processed",
		},
		Ledger: LedgerConfig{
			Fsync:         "always",
			FsyncInterval: 5 * time.Millisecond,
			BatchSize:     256,
		},
		Server: ServerConfig{
			GRPCAddr: ":7070",
			HTTPAddr: ":8080",
		},
		Log: logpkg.Config{Level: "info", Format: "text"},
	}
}

// Load reads configuration from a JSON or YAML file (by extension) on top of
// Default, then overlays SNOWGEN_* environment variables. An empty path
// skips the file.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json", "":
			parser = json.Parser()
		default:
			return Config{}, fmt.Errorf("config %s: unsupported extension", path)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := k.Load(envProvider(), nil); err != nil {
		return Config{}, fmt.Errorf("config env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config decode: %w", err)
	}
	cfg.Ledger.Dir = ResolveLedgerDir(cfg.Ledger.Dir)
	return cfg, nil
}

// Validate checks everything the generator does not check itself.
func (c Config) Validate() error {
	var errs []error
	if c.Inject.HeaderColumn == "" {
		errs = append(errs, errors.New("inject.header_column must not be empty"))
	}
	if c.Inject.Delimiter == "" {
		errs = append(errs, errors.New("inject.delimiter must not be empty"))
	}
	if _, err := snowflake.ParseFormat(c.Inject.IDFormat); err != nil {
		errs = append(errs, fmt.Errorf("inject.id_format: %w", err))
	}
	if c.Inject.ClockRetryWindow < 0 {
		errs = append(errs, errors.New("inject.clock_retry_window must not be negative"))
	}
	switch c.Ledger.Fsync {
	case "", "always", "interval", "never":
	default:
		errs = append(errs, fmt.Errorf("ledger.fsync: unknown mode %q", c.Ledger.Fsync))
	}
	if c.Ledger.BatchSize < 0 {
		errs = append(errs, errors.New("ledger.batch_size must not be negative"))
	}
	if _, err := logpkg.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return multierr.Combine(errs...)
}
