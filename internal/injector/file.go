package injector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	logpkg "github.com/DJ45X/snowgen/pkg/log"
)

// DefaultSuffix is inserted before the extension of the output file name.
const DefaultSuffix = "_processed"

var (
	// ErrInputNotFound is returned when the input is missing or a directory.
	ErrInputNotFound = errors.New("input file not found or is a directory")
	// ErrSameFile is returned when input and output resolve to the same path.
	ErrSameFile = errors.New("output path is the input file")
)

// OutputPath derives the output file for input: "data/users.csv" becomes
// "data/users_processed.csv" and "notes" becomes "notes_processed". Only the
// file name is inspected, so dots in directory names are left alone. A
// leading dot does not start an extension.
func OutputPath(input, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	dir, base := filepath.Split(input)
	ext := filepath.Ext(base)
	if ext == base || strings.TrimLeft(base, ".") == strings.TrimLeft(ext, ".") {
		ext = ""
	}
	return dir + strings.TrimSuffix(base, ext) + suffix + ext
}

// InjectFile transforms the file at input into output. An empty output uses
// OutputPath(input, opts.OutputSuffix). The output is written to a temporary
// file in the same directory and renamed into place only on success.
func InjectFile(ctx context.Context, input, output string, gen Minter, opts Options) (Result, error) {
	opts = opts.withDefaults()
	res := Result{Input: input}

	info, err := os.Stat(input)
	if err != nil || info.IsDir() {
		return res, fmt.Errorf("%w: %s", ErrInputNotFound, input)
	}
	if output == "" {
		output = OutputPath(input, opts.OutputSuffix)
	}
	res.Output = output
	if same, err := samePath(input, output); err == nil && same {
		return res, fmt.Errorf("%w: %s", ErrSameFile, output)
	}

	log := opts.Logger.With(logpkg.Str("input", input))
	log.Info("processing file")
	if info.Size() == 0 {
		log.Warn("input file is empty")
	}

	in, err := os.Open(input)
	if err != nil {
		return res, err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(output), "."+filepath.Base(output)+".tmp-*")
	if err != nil {
		return res, fmt.Errorf("create output: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp.Name())
		}
	}()

	tr, err := Transform(ctx, in, tmp, gen, opts)
	tr.Input, tr.Output = res.Input, res.Output
	if err != nil {
		return tr, multierr.Append(err, tmp.Close())
	}
	if err := multierr.Combine(tmp.Chmod(0o644), tmp.Sync(), tmp.Close()); err != nil {
		return tr, fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return tr, fmt.Errorf("write output: %w", err)
	}
	committed = true
	log.Info("file processed", logpkg.Str("output", output), logpkg.Int("rows", tr.Rows),
		logpkg.Int("blank", tr.Blank), logpkg.Int("filtered", tr.Filtered))
	return tr, nil
}

func samePath(a, b string) (bool, error) {
	aa, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return aa == bb, nil
}
