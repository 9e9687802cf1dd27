// Package eval evaluates declared-type expressions of native trees.
//
// Only the constant subset used in declarations is supported: symbols
// resolved through the static-parameter environment and then the namespace,
// (curly T params...), (call f args...), (top x), (quote x) and
// self-evaluating literals.
package eval

import (
	"fmt"

	"astbridge/pkg/native"
)

// UndefVarError reports a symbol bound neither in the environment nor in the
// namespace.
type UndefVarError struct {
	Name string
}

func (e *UndefVarError) Error() string {
	return fmt.Sprintf("%s not defined", e.Name)
}

// Interpreter evaluates expressions against a namespace
type Interpreter struct {
	ns *Namespace
}

// New creates an interpreter over ns
func New(ns *Namespace) *Interpreter {
	return &Interpreter{ns: ns}
}

// Namespace returns the global namespace
func (in *Interpreter) Namespace() *Namespace {
	return in.ns
}

// Eval evaluates expr with env, an alternating list of symbols and values
// that shadow the namespace.
func (in *Interpreter) Eval(expr native.Value, env []native.Value) (native.Value, error) {
	switch x := expr.(type) {
	case *native.Symbol:
		return in.lookup(x, env)

	case *native.Expr:
		switch x.Head {
		case native.SymQuote:
			if len(x.Args) != 1 {
				return nil, fmt.Errorf("quote: expected 1 argument, got %d", len(x.Args))
			}
			return x.Args[0], nil

		case native.SymTop:
			if len(x.Args) != 1 {
				return nil, fmt.Errorf("top: expected 1 argument, got %d", len(x.Args))
			}
			sym, ok := x.Args[0].(*native.Symbol)
			if !ok {
				return nil, fmt.Errorf("top: expected a symbol, got %s", native.Show(x.Args[0]))
			}
			return in.lookup(sym, nil)

		case native.SymNull:
			return native.Nothing, nil

		case native.SymCurly:
			if len(x.Args) == 0 {
				return nil, fmt.Errorf("curly: missing type")
			}
			vals, err := in.evalArgs(x.Args, env)
			if err != nil {
				return nil, err
			}
			return ApplyType(vals[0], vals[1:])

		case native.SymCall:
			if len(x.Args) == 0 {
				return nil, fmt.Errorf("call: missing function")
			}
			vals, err := in.evalArgs(x.Args, env)
			if err != nil {
				return nil, err
			}
			return apply(vals[0], vals[1:])
		}
		return nil, fmt.Errorf("unsupported expression in declaration: %s", native.Show(x))
	}

	// Everything else evaluates to itself
	return expr, nil
}

func (in *Interpreter) lookup(sym *native.Symbol, env []native.Value) (native.Value, error) {
	for i := 0; i+1 < len(env); i += 2 {
		if env[i] == sym {
			return env[i+1], nil
		}
	}
	if v, ok := in.ns.Lookup(sym); ok {
		return v, nil
	}
	return nil, &UndefVarError{Name: sym.Name}
}

func (in *Interpreter) evalArgs(args []native.Value, env []native.Value) ([]native.Value, error) {
	vals := make([]native.Value, len(args))
	for i, a := range args {
		v, err := in.Eval(a, env)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// apply calls a builtin or instantiates a type
func apply(f native.Value, args []native.Value) (native.Value, error) {
	switch fn := f.(type) {
	case *native.Builtin:
		return fn.Fn(args)
	case *native.DataType:
		return ApplyType(fn, args)
	}
	return nil, fmt.Errorf("not a function: %s", native.Show(f))
}

// ApplyType instantiates a parameterless type with params
func ApplyType(t native.Value, params []native.Value) (native.Value, error) {
	dt, ok := t.(*native.DataType)
	if !ok {
		return nil, fmt.Errorf("not a type: %s", native.Show(t))
	}
	if len(dt.Params) != 0 {
		return nil, fmt.Errorf("type %s is already instantiated", native.Show(dt))
	}
	if len(params) == 0 {
		return dt, nil
	}
	ps := make([]native.Value, len(params))
	copy(ps, params)
	return &native.DataType{Name: dt.Name, Params: ps}, nil
}
