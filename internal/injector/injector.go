package injector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/DJ45X/snowgen/internal/ledger"
	"github.com/DJ45X/snowgen/internal/rowfilter"
	logpkg "github.com/DJ45X/snowgen/pkg/log"
	"github.com/DJ45X/snowgen/pkg/snowflake"
)

const (
	DefaultColumn    = "id"
	DefaultDelimiter = ","
)

// Minter produces ids. *snowflake.Generator implements it.
type Minter interface {
	Generate(ctx context.Context) (int64, error)
}

// Recorder receives one entry per emitted row. *ledger.Run implements it.
type Recorder interface {
	Record(ctx context.Context, e ledger.Entry) error
}

// Options tunes a transform. The zero value reproduces the classic output:
// an "id" column, comma delimiter and decimal ids.
type Options struct {
	Column    string
	Delimiter string
	Format    snowflake.Format
	Filter    *rowfilter.Filter
	Recorder  Recorder
	// ClockRetryWindow bounds how long a clock regression is retried.
	// Zero fails on the first regression.
	ClockRetryWindow time.Duration
	// OutputSuffix is used by InjectFile when no output path is given.
	OutputSuffix string
	Logger       logpkg.Logger
}

func (o Options) withDefaults() Options {
	if o.Column == "" {
		o.Column = DefaultColumn
	}
	if o.Delimiter == "" {
		o.Delimiter = DefaultDelimiter
	}
	if o.Format == "" {
		o.Format = snowflake.FormatDecimal
	}
	if o.OutputSuffix == "" {
		o.OutputSuffix = DefaultSuffix
	}
	if o.Logger == nil {
		o.Logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return o
}

// Result summarizes a transform.
type Result struct {
	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`
	// Header is false only for empty input.
	Header   bool  `json:"header"`
	Rows     int   `json:"rows"`
	Blank    int   `json:"blank"`
	Filtered int   `json:"filtered"`
	FirstID  int64 `json:"first_id,omitempty"`
	LastID   int64 `json:"last_id,omitempty"`
}

// Stats converts r to the counters stored with a ledger run.
func (r Result) Stats() ledger.RunStats {
	return ledger.RunStats{Rows: r.Rows, Blank: r.Blank, Filtered: r.Filtered, FirstID: r.FirstID, LastID: r.LastID}
}

// Transform copies r to w with an id column prepended. The first line is
// the header and becomes "<column><delim><header>". Every non-blank data
// line kept by the filter becomes "<id><delim><line>"; blank lines are
// dropped. Empty input produces the single line "<column>". Lines are
// terminated with "\n" and a trailing "\r" on input is stripped.
//
// On error the returned Result counts the rows already written.
func Transform(ctx context.Context, r io.Reader, w io.Writer, gen Minter, opts Options) (Result, error) {
	opts = opts.withDefaults()
	var res Result

	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)

	header, ok, err := readLine(br)
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	if !ok {
		if _, err := bw.WriteString(opts.Column + "\n"); err != nil {
			return res, err
		}
		return res, bw.Flush()
	}
	res.Header = true
	opts.Logger.Debug("header read", logpkg.Str("header", header))
	if _, err := bw.WriteString(opts.Column + opts.Delimiter + header + "\n"); err != nil {
		return res, err
	}

	filter := opts.Filter
	if filter.Enabled() {
		filter = filter.WithColumns(strings.Split(header, opts.Delimiter))
	}

	lineNo := 1
	for {
		line, ok, err := readLine(br)
		if err != nil {
			return res, fmt.Errorf("read line %d: %w", lineNo+1, err)
		}
		if !ok {
			break
		}
		lineNo++
		if lineNo == 2 {
			opts.Logger.Debug("first data line read", logpkg.Str("line", line))
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if strings.TrimSpace(line) == "" {
			res.Blank++
			continue
		}
		if filter.Enabled() {
			row := rowfilter.Row{
				Line:   line,
				LineNo: lineNo,
				Index:  res.Rows + res.Filtered + 1,
				Fields: strings.Split(line, opts.Delimiter),
			}
			if !filter.Keep(row) {
				res.Filtered++
				continue
			}
		}

		id, err := mint(ctx, gen, opts)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, err := bw.WriteString(opts.Format.Encode(id) + opts.Delimiter + line + "\n"); err != nil {
			return res, err
		}
		res.Rows++
		if res.Rows == 1 {
			res.FirstID = id
		}
		res.LastID = id
		if opts.Recorder != nil {
			if err := opts.Recorder.Record(ctx, ledger.Entry{ID: id, Line: lineNo, Row: res.Rows}); err != nil {
				return res, fmt.Errorf("line %d: record: %w", lineNo, err)
			}
		}
	}
	return res, bw.Flush()
}

// readLine returns the next line without its terminator. ok is false at
// end of input.
func readLine(br *bufio.Reader) (string, bool, error) {
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", false, nil
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}

// mint asks gen for an id, retrying clock regressions within
// opts.ClockRetryWindow. Any other failure is returned as is.
func mint(ctx context.Context, gen Minter, opts Options) (int64, error) {
	if opts.ClockRetryWindow <= 0 {
		return gen.Generate(ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Millisecond
	b.MaxInterval = 100 * time.Millisecond
	b.MaxElapsedTime = opts.ClockRetryWindow

	op := func() (int64, error) {
		id, err := gen.Generate(ctx)
		if err != nil && !errors.Is(err, snowflake.ErrClockRegression) {
			return 0, backoff.Permanent(err)
		}
		return id, err
	}
	notify := func(err error, wait time.Duration) {
		opts.Logger.Warn("clock regression, retrying", logpkg.Err(err), logpkg.Dur("wait", wait))
	}
	return backoff.RetryNotifyWithData(op, backoff.WithContext(b, ctx), notify)
}
