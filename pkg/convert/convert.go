// Package convert translates between the front end's generic trees and native
// syntax trees.
package convert

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/npillmayer/schuko/tracing"

	"astbridge/pkg/ast"
	"astbridge/pkg/gensym"
	"astbridge/pkg/memory"
	"astbridge/pkg/native"
)

// tracer traces with key 'astbridge.convert'.
func tracer() tracing.Trace {
	return tracing.Select("astbridge.convert")
}

// ErrMalformedTree matches every *MalformedTreeError.
var ErrMalformedTree = errors.New("malformed tree")

// MalformedTreeError reports a generic tree shape the converter does not
// recognize. It means an upstream pass broke its contract.
type MalformedTreeError struct {
	Reason string
	Node   string
}

func (e *MalformedTreeError) Error() string {
	return fmt.Sprintf("malformed tree: %s: %s", e.Reason, e.Node)
}

// Is makes errors.Is(err, ErrMalformedTree) hold.
func (e *MalformedTreeError) Is(target error) bool {
	return target == ErrMalformedTree
}

func malformed(reason string, v *ast.Value) error {
	return &MalformedTreeError{Reason: reason, Node: v.String()}
}

// Converter holds what conversion needs: the destination heap, the session's
// gensym table and the target word size.
type Converter struct {
	heap     *memory.Heap
	gensyms  *gensym.Table
	wordSize int
}

// New creates a converter. A wordSize of 0 selects the host word size.
func New(heap *memory.Heap, gensyms *gensym.Table, wordSize int) *Converter {
	if wordSize == 0 {
		wordSize = strconv.IntSize
	}
	return &Converter{heap: heap, gensyms: gensyms, wordSize: wordSize}
}

// WordSize returns the target word size in bits
func (c *Converter) WordSize() int {
	return c.wordSize
}

// ToNative converts a generic tree. The heap's collector is suspended for the
// whole call: intermediate nodes are only reachable from Go locals until they
// are linked into the result.
func (c *Converter) ToNative(e *ast.Value) (native.Value, error) {
	restore := c.heap.Suspend()
	defer restore()

	v, err := c.toNative(e)
	if err != nil {
		tracer().Debugf("to-native failed: %v", err)
		return nil, err
	}
	return v, nil
}

func (c *Converter) toNative(e *ast.Value) (native.Value, error) {
	if e == nil {
		return nil, &MalformedTreeError{Reason: "missing node", Node: "nil"}
	}
	switch e.Tag {
	case ast.TFloat:
		return native.Float64(e.Float), nil
	case ast.TUint64:
		return native.Uint64(e.Uint), nil
	case ast.TInt:
		return c.boxSigned(e.Int), nil
	case ast.TUint:
		return c.boxUnsigned(e.Uint), nil
	case ast.TSym:
		switch e.Str {
		case "true":
			return native.True, nil
		case "false":
			return native.False, nil
		}
		return native.Sym(e.Str), nil
	case ast.TGensym:
		return c.gensyms.Resolve(e.Int), nil
	case ast.TStr:
		return native.String(e.Str), nil
	case ast.TBool:
		return native.Bool(e.Int != 0), nil
	case ast.TNil:
		return native.Nothing, nil
	case ast.TChar:
		return native.Char(rune(e.Int)), nil
	case ast.TForeign:
		v, ok := e.Foreign.(native.Value)
		if !ok || v == nil {
			return nil, malformed("foreign handle without a native value", e)
		}
		return v, nil
	case ast.TCell:
		return c.toExpr(e)
	}
	return nil, malformed("unknown node", e)
}

// boxSigned boxes a signed integer for the target word size
func (c *Converter) boxSigned(n int64) native.Value {
	if c.wordSize == 64 {
		return native.Int64(n)
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return native.Int64(n)
	}
	return native.Int32(int32(n))
}

// boxUnsigned boxes an unsigned integer for the target word size. On a
// 32-bit target values above MaxInt64 wrap to a negative Int64.
func (c *Converter) boxUnsigned(u uint64) native.Value {
	if c.wordSize == 64 {
		return native.Uint64(u)
	}
	if u > math.MaxInt32 {
		return native.Int64(int64(u))
	}
	return native.Int32(int32(u))
}

// headSymbol converts a list head; unlike atoms, true/false stay symbols
func (c *Converter) headSymbol(hd *ast.Value) *native.Symbol {
	if ast.IsGensym(hd) {
		return c.gensyms.Resolve(hd.Int)
	}
	return native.Sym(hd.Str)
}

func (c *Converter) toExpr(e *ast.Value) (native.Value, error) {
	hd := e.Car
	if !ast.IsSymbol(hd) {
		return nil, malformed("list head is not a symbol", e)
	}
	if !ast.IsProperList(e) {
		return nil, malformed("improper list", e)
	}
	head := c.headSymbol(hd)
	n := ast.ListLen(e) - 1
	rest := e.Cdr

	switch head {
	case native.SymLambda:
		if n < 1 {
			return nil, malformed("lambda without argument list", e)
		}
		ex := native.NewExpr(c.heap, head, n)
		formals, err := c.fullList(rest.Car)
		if err != nil {
			return nil, err
		}
		ex.Args[0] = formals
		if err := c.fillArgs(ex, 1, rest.Cdr); err != nil {
			return nil, err
		}
		return native.NewLambdaInfo(c.heap, ex, nil), nil

	case native.SymVarInfo:
		if n < 3 {
			return nil, malformed("var-info needs locals, declared and captured slots", e)
		}
		ex := native.NewExpr(c.heap, head, n)
		locals, err := c.toNative(rest.Car)
		if err != nil {
			return nil, err
		}
		ex.Args[0] = locals
		rest = rest.Cdr
		for i := 1; i <= 2; i++ {
			recs, err := c.fullListOfLists(rest.Car)
			if err != nil {
				return nil, err
			}
			ex.Args[i] = recs
			rest = rest.Cdr
		}
		if err := c.fillArgs(ex, 3, rest); err != nil {
			return nil, err
		}
		return ex, nil
	}

	ex := native.NewExpr(c.heap, head, n)
	if err := c.fillArgs(ex, 0, rest); err != nil {
		return nil, err
	}
	return ex, nil
}

// fillArgs converts list elements left to right into ex.Args[from:]
func (c *Converter) fillArgs(ex *native.Expr, from int, list *ast.Value) error {
	for i := from; i < len(ex.Args); i++ {
		v, err := c.toNative(list.Car)
		if err != nil {
			return err
		}
		ex.Args[i] = v
		list = list.Cdr
	}
	return nil
}

// fullList converts a list into an array of converted elements
func (c *Converter) fullList(l *ast.Value) (*native.Array, error) {
	if !ast.IsProperList(l) {
		return nil, malformed("expected a list", l)
	}
	arr := native.NewArray(c.heap, ast.ListLen(l))
	for i := 0; ast.IsCell(l); i++ {
		v, err := c.toNative(l.Car)
		if err != nil {
			return nil, err
		}
		arr.Elems[i] = v
		l = l.Cdr
	}
	return arr, nil
}

// fullListOfLists converts a list of lists into an array of arrays
func (c *Converter) fullListOfLists(l *ast.Value) (*native.Array, error) {
	if !ast.IsProperList(l) {
		return nil, malformed("expected a list of lists", l)
	}
	arr := native.NewArray(c.heap, ast.ListLen(l))
	for i := 0; ast.IsCell(l); i++ {
		inner, err := c.fullList(l.Car)
		if err != nil {
			return nil, err
		}
		arr.Elems[i] = inner
		l = l.Cdr
	}
	return arr, nil
}

// ToGeneric converts a native value for the front end. Symbols, booleans,
// expression nodes and arrays are decomposed; every other value travels as an
// opaque foreign handle that ToNative hands back unchanged.
func (c *Converter) ToGeneric(v native.Value) *ast.Value {
	switch x := v.(type) {
	case *native.Symbol:
		return ast.NewSym(x.Name)
	case native.Bool:
		if x {
			return ast.NewSym("true")
		}
		return ast.NewSym("false")
	case *native.Expr:
		args := c.arrayToList(x.Args)
		return ast.NewCell(ast.NewSym(x.Head.Name), args)
	case *native.Array:
		return c.arrayToList(x.Elems)
	}
	return ast.NewForeign(v)
}

func (c *Converter) arrayToList(elems []native.Value) *ast.Value {
	lst := ast.Nil
	for i := len(elems) - 1; i >= 0; i-- {
		lst = ast.NewCell(c.ToGeneric(elems[i]), lst)
	}
	return lst
}
