// Package frontend defines what the converter needs from the front end and
// provides a reader-based implementation of it.
package frontend

import (
	"errors"
	"fmt"
	"os"

	"github.com/npillmayer/schuko/tracing"

	"astbridge/pkg/analysis"
	"astbridge/pkg/ast"
	"astbridge/pkg/macro"
	"astbridge/pkg/parser"
)

// tracer traces with key 'astbridge.frontend'.
func tracer() tracing.Trace {
	return tracing.Select("astbridge.frontend")
}

// Frontend parses source text and expands it into generic trees.
type Frontend interface {
	// ParseLine parses one input line. It returns nil for a blank line.
	ParseLine(line string) (*ast.Value, error)
	// ParseFragment parses one datum of str starting at byte offset pos and
	// returns it with the offset to continue from. ast.Nil marks end of input.
	ParseFragment(str string, pos int, greedy bool) (*ast.Value, int, error)
	// ParseFile parses a source file into (file forms...), or ast.Nil.
	ParseFile(path string) (*ast.Value, error)
	// ParseSourceText parses text like ParseFile.
	ParseSourceText(text string) (*ast.Value, error)
	// ExpandToThunk macro-expands expr and lowers its function forms.
	// Anything but an atom comes back wrapped in a thunk.
	ExpandToThunk(expr *ast.Value) (*ast.Value, error)
}

// MacroInvoker is the front end's view of the native side.
type MacroInvoker interface {
	Invoke(name string, args []*ast.Value) (*ast.Value, error)
	IsDefinedGlobal(name string) bool
}

// maxExpansionDepth bounds macro results that expand to further macro calls.
const maxExpansionDepth = 256

// Reader is the reference front end over pkg/parser.
type Reader struct {
	macros MacroInvoker
}

// NewReader creates a front end expanding macros through m.
func NewReader(m MacroInvoker) *Reader {
	return &Reader{macros: m}
}

// ParseLine implements Frontend. Several forms on one line are grouped as
// (toplevel forms...).
func (r *Reader) ParseLine(line string) (*ast.Value, error) {
	forms, err := parser.New(line).ParseAll()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	switch len(forms) {
	case 0:
		return nil, nil
	case 1:
		return forms[0], nil
	}
	return ast.NewCell(ast.NewSym("toplevel"), ast.SliceToList(forms)), nil
}

// ParseFragment implements Frontend. A greedy read also consumes the space
// and comments following the datum.
func (r *Reader) ParseFragment(str string, pos int, greedy bool) (*ast.Value, int, error) {
	p := parser.NewAt(str, pos)
	v, err := p.Parse()
	if err != nil {
		return nil, pos, fmt.Errorf("parse at %d: %w", pos, err)
	}
	if v == nil {
		return ast.Nil, p.Pos(), nil
	}
	if greedy {
		p.SkipSpace()
	}
	return v, p.Pos(), nil
}

// ParseFile implements Frontend.
func (r *Reader) ParseFile(path string) (*ast.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := r.ParseSourceText(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ParseSourceText implements Frontend.
func (r *Reader) ParseSourceText(text string) (*ast.Value, error) {
	forms, err := parser.New(text).ParseAll()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(forms) == 0 {
		return ast.Nil, nil
	}
	return ast.NewCell(ast.NewSym("file"), ast.SliceToList(forms)), nil
}

// ExpandToThunk implements Frontend.
func (r *Reader) ExpandToThunk(expr *ast.Value) (*ast.Value, error) {
	if expr == nil {
		return nil, nil
	}
	e, err := r.expand(expr, 0)
	if err != nil {
		return nil, err
	}
	if e, err = analysis.Lower(e); err != nil {
		return nil, err
	}
	if !ast.IsCell(e) {
		return e, nil
	}
	return WrapThunk(e), nil
}

// WrapThunk builds
//
//	(thunk (lambda () (var-info (locals) () () ()) (body (return e))))
func WrapThunk(e *ast.Value) *ast.Value {
	vinfo := ast.List(ast.NewSym("var-info"), ast.List1(ast.NewSym("locals")), ast.Nil, ast.Nil, ast.Nil)
	body := ast.List2(ast.NewSym("body"), ast.List2(ast.NewSym("return"), e))
	lam := ast.List(ast.NewSym("lambda"), ast.Nil, vinfo, body)
	return ast.List2(ast.NewSym("thunk"), lam)
}

func (r *Reader) expand(e *ast.Value, depth int) (*ast.Value, error) {
	if !ast.IsCell(e) {
		return e, nil
	}
	hd := e.Car
	switch {
	case ast.SymEqStr(hd, "quote"):
		return e, nil

	case ast.SymEqStr(hd, "defined?"):
		items := ast.ListToSlice(e.Cdr)
		if len(items) != 1 || !ast.IsSym(items[0]) {
			return nil, fmt.Errorf("defined?: expected a symbol, got %s", e.Cdr)
		}
		return ast.NewBool(r.macros.IsDefinedGlobal(items[0].Str)), nil

	case ast.SymEqStr(hd, "macrocall"):
		return r.expandMacro(e, depth)
	}

	items := ast.ListToSlice(e)
	changed := false
	for i, it := range items {
		x, err := r.expand(it, depth)
		if err != nil {
			return nil, err
		}
		if x != it {
			items[i] = x
			changed = true
		}
	}
	if !changed || !ast.IsProperList(e) {
		return e, nil
	}
	return ast.SliceToList(items), nil
}

func (r *Reader) expandMacro(e *ast.Value, depth int) (*ast.Value, error) {
	if depth >= maxExpansionDepth {
		return nil, fmt.Errorf("macro expansion nested deeper than %d", maxExpansionDepth)
	}
	items := ast.ListToSlice(e.Cdr)
	if len(items) == 0 || !ast.IsSym(items[0]) {
		return nil, fmt.Errorf("macrocall: expected a macro name, got %s", e)
	}
	name := items[0].Str
	out, err := r.macros.Invoke(name, items[1:])
	switch {
	case errors.Is(err, macro.ErrNotFound):
		return nil, fmt.Errorf("macro %s not defined", name)
	case errors.Is(err, macro.ErrExpansionFailed):
		tracer().Infof("expansion of %s failed", name)
		return ast.List1(ast.NewSym("error")), nil
	case err != nil:
		return nil, err
	}
	return r.expand(out, depth+1)
}
