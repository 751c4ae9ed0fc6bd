package log

import (
	"fmt"
	"os"
	"strings"
)

// Config is the declarative form of a logger, as loaded from the config file.
type Config struct {
	Level            string   `koanf:"level"`
	Format           string   `koanf:"format"`
	Outputs          []string `koanf:"outputs"`
	Redact           []string `koanf:"redact"`
	Caller           bool     `koanf:"caller"`
	SampleInitial    int      `koanf:"sample_initial"`
	SampleThereafter int      `koanf:"sample_thereafter"`
}

// ApplyConfig builds a Logger from cfg. Outputs accept "console" (stderr),
// "stdout", "null" and "file:<path>".
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := []LoggerOption{WithLevel(level)}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		opts = append(opts, WithFormatter(&TextFormatter{Caller: cfg.Caller}))
	case "json":
		opts = append(opts, WithFormatter(&JSONFormatter{Caller: cfg.Caller}))
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	for _, spec := range cfg.Outputs {
		switch {
		case spec == "console" || spec == "stderr":
			opts = append(opts, WithOutput(NewConsoleOutput()))
		case spec == "stdout":
			opts = append(opts, WithOutput(&ConsoleOutput{Writer: os.Stdout}))
		case spec == "null":
			opts = append(opts, WithOutput(NullOutput{}))
		case strings.HasPrefix(spec, "file:"):
			out, err := NewFileOutput(strings.TrimPrefix(spec, "file:"))
			if err != nil {
				return nil, fmt.Errorf("log output %q: %w", spec, err)
			}
			opts = append(opts, WithOutput(out))
		default:
			return nil, fmt.Errorf("unknown log output %q", spec)
		}
	}

	if len(cfg.Redact) > 0 {
		opts = append(opts, WithRedactedKeys(cfg.Redact...))
	}
	if cfg.SampleThereafter > 0 {
		opts = append(opts, WithSampling(cfg.SampleInitial, cfg.SampleThereafter))
	}
	return NewLogger(opts...), nil
}
