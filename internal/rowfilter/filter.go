package rowfilter

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// Row is the input of a single evaluation.
type Row struct {
	// Line is the raw data line without the line terminator.
	Line string
	// LineNo is the physical line number; the header is line 1.
	LineNo int
	// Index is the 1-based position among non-blank data rows.
	Index int
	// Fields is Line split by the delimiter.
	Fields []string
}

// Filter is a compiled CEL predicate over data rows. The zero value and a
// Filter compiled from an empty expression keep every row.
type Filter struct {
	expr    string
	prog    cel.Program
	enabled bool
	columns []string
}

// Compile parses and type-checks expr. The expression must evaluate to bool
// and may use:
//
//	line    string              raw row text
//	line_no int                 physical line number (header = 1)
//	row     int                 1-based data row number
//	fields  list(string)        row split by the delimiter
//	col     map(string, string) header column name to field value
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("line", cel.StringType),
		cel.Variable("line_no", cel.IntType),
		cel.Variable("row", cel.IntType),
		cel.Variable("fields", cel.ListType(cel.StringType)),
		cel.Variable("col", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("row filter: %w", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("row filter: expression must be bool, got %s", ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("row filter: %w", err)
	}
	return &Filter{expr: expr, prog: prog, enabled: true}, nil
}

// Enabled reports whether the filter rejects anything at all.
func (f *Filter) Enabled() bool { return f != nil && f.enabled }

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// WithColumns returns a copy of f that exposes the header names through col.
func (f *Filter) WithColumns(columns []string) *Filter {
	if f == nil {
		return nil
	}
	nf := *f
	nf.columns = append([]string(nil), columns...)
	return &nf
}

// Keep evaluates the filter for r. Evaluation errors and non-bool results
// reject the row.
func (f *Filter) Keep(r Row) bool {
	if !f.Enabled() {
		return true
	}
	col := make(map[string]string, len(f.columns))
	for i, name := range f.columns {
		if i < len(r.Fields) {
			col[name] = r.Fields[i]
		}
	}
	fields := r.Fields
	if fields == nil {
		fields = []string{}
	}
	out, _, err := f.prog.Eval(map[string]any{
		"line":    r.Line,
		"line_no": int64(r.LineNo),
		"row":     int64(r.Index),
		"fields":  fields,
		"col":     col,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
