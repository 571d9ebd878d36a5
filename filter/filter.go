// Package filter selects message fields with CEL expressions.
//
// An expression is evaluated once per field descriptor with these variables:
//
//	name          string  field name, e.g. "user_id"
//	json_name     string  JSON name, e.g. "userId"
//	full_name     string  fully qualified name, e.g. "acme.User.user_id"
//	number        int     field number
//	kind          string  protomap kind, e.g. "INT64", "MESSAGE", "MAP"
//	is_repeated   bool    true for repeated fields (not maps)
//	is_map        bool    true for map fields
//	is_extension  bool    true for extension fields
//	message       string  full name of the containing message
//
// The expression must yield a bool. A Filter plugs into forward conversion
// through protomap.WithFieldFilter:
//
//	f, err := filter.Compile(`!(name in ["password", "token"])`)
//	...
//	data, err := protomap.ToMap(msg, f.Option())
package filter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/zero-day-ai/protomap"
)

// ErrNotBool is returned by Compile when the expression does not evaluate to
// a bool.
var ErrNotBool = errors.New("filter expression must evaluate to bool")

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error
)

func fieldEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable("name", cel.StringType),
			cel.Variable("json_name", cel.StringType),
			cel.Variable("full_name", cel.StringType),
			cel.Variable("number", cel.IntType),
			cel.Variable("kind", cel.StringType),
			cel.Variable("is_repeated", cel.BoolType),
			cel.Variable("is_map", cel.BoolType),
			cel.Variable("is_extension", cel.BoolType),
			cel.Variable("message", cel.StringType),
		)
	})
	return env, envErr
}

// Filter is a compiled field predicate. It is safe for concurrent use.
type Filter struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr.
func Compile(expr string) (*Filter, error) {
	e, err := fieldEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	ast, iss := e.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("compile %q: %w, got %s", expr, ErrNotBool, ast.OutputType())
	}

	prg, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) *Filter {
	f, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return f
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Eval evaluates the expression against fd.
func (f *Filter) Eval(fd protoreflect.FieldDescriptor) (bool, error) {
	out, _, err := f.prg.Eval(Activation(fd))
	if err != nil {
		return false, fmt.Errorf("evaluate %q on %s: %w", f.expr, fd.FullName(), err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("evaluate %q on %s: %w", f.expr, fd.FullName(), ErrNotBool)
	}
	return b, nil
}

// Match reports whether fd satisfies the expression. Evaluation errors count
// as no match.
func (f *Filter) Match(fd protoreflect.FieldDescriptor) bool {
	ok, err := f.Eval(fd)
	return err == nil && ok
}

// Option returns a converter option that keeps only matching fields.
func (f *Filter) Option() protomap.Option {
	return protomap.WithFieldFilter(f.Match)
}

// Activation returns the CEL variables bound for fd.
func Activation(fd protoreflect.FieldDescriptor) map[string]any {
	return map[string]any{
		"name":         string(fd.Name()),
		"json_name":    fd.JSONName(),
		"full_name":    string(fd.FullName()),
		"number":       int64(fd.Number()),
		"kind":         protomap.KindOf(fd).String(),
		"is_repeated":  fd.IsList(),
		"is_map":       fd.IsMap(),
		"is_extension": fd.IsExtension(),
		"message":      string(fd.ContainingMessage().FullName()),
	}
}
