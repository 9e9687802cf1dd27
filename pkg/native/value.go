// Package native defines the compiler's typed syntax tree: interned symbols,
// boxed numbers, expression nodes, arrays and lambda templates.
package native

import (
	"astbridge/pkg/memory"
)

// Value is a native tree value. The set of implementations is closed.
type Value interface {
	nativeValue()
}

// Bool is one of the two boolean singletons.
type Bool bool

// Boolean singletons
const (
	True  = Bool(true)
	False = Bool(false)
)

// Null is the empty-sequence singleton.
type Null struct{}

// Nothing is the only Null value.
var Nothing = Null{}

// Boxed numbers
type (
	Float64 float64
	Int32   int32
	Int64   int64
	Uint64  uint64
	Char    rune
)

// String is a byte string; it may contain zero bytes.
type String string

// Expr is an expression node: a head symbol and a fixed-length argument list.
type Expr struct {
	memory.Header
	Head *Symbol
	Args []Value
}

// Array is an ordered mutable sequence of native values.
type Array struct {
	memory.Header
	Elems []Value
}

// LambdaInfo is a lambda template: the lambda expression tree plus the static
// parameter bindings (alternating placeholder, value) it was instantiated with.
// AST is nil when no tree is attached.
type LambdaInfo struct {
	memory.Header
	AST     Value
	SParams []Value
}

// TypeVar is a static-parameter placeholder.
type TypeVar struct {
	Name *Symbol
}

// DataType is a concrete type value, possibly parameterized.
type DataType struct {
	Name   *Symbol
	Params []Value
}

// BuiltinFn is the signature of native functions and expanders.
type BuiltinFn func(args []Value) (Value, error)

// Builtin is a callable native function.
type Builtin struct {
	Name string
	Fn   BuiltinFn
}

func (*Symbol) nativeValue()     {}
func (Bool) nativeValue()        {}
func (Null) nativeValue()        {}
func (Float64) nativeValue()     {}
func (Int32) nativeValue()       {}
func (Int64) nativeValue()       {}
func (Uint64) nativeValue()      {}
func (Char) nativeValue()        {}
func (String) nativeValue()      {}
func (*Expr) nativeValue()       {}
func (*Array) nativeValue()      {}
func (*LambdaInfo) nativeValue() {}
func (*TypeVar) nativeValue()    {}
func (*DataType) nativeValue()   {}
func (*Builtin) nativeValue()    {}

// NewExpr allocates an expression node with n empty argument slots.
func NewExpr(h *memory.Heap, head *Symbol, n int) *Expr {
	e := &Expr{Head: head, Args: make([]Value, n)}
	for i := range e.Args {
		e.Args[i] = Nothing
	}
	h.Track(e)
	return e
}

// NewArray allocates an array of n elements.
func NewArray(h *memory.Heap, n int) *Array {
	a := &Array{Elems: make([]Value, n)}
	for i := range a.Elems {
		a.Elems[i] = Nothing
	}
	h.Track(a)
	return a
}

// NewLambdaInfo wraps a lambda expression as a template.
func NewLambdaInfo(h *memory.Heap, tree Value, sparams []Value) *LambdaInfo {
	li := &LambdaInfo{AST: tree, SParams: sparams}
	h.Track(li)
	return li
}

// AddStaticParameters returns a new template sharing li's tree whose bindings
// are li's followed by sp. li is left untouched.
func AddStaticParameters(h *memory.Heap, li *LambdaInfo, sp []Value) *LambdaInfo {
	merged := make([]Value, 0, len(li.SParams)+len(sp))
	merged = append(merged, li.SParams...)
	merged = append(merged, sp...)
	return NewLambdaInfo(h, li.AST, merged)
}

// TraceRefs implements memory.Object.
func (e *Expr) TraceRefs(visit func(any)) {
	for _, a := range e.Args {
		visit(a)
	}
}

// TraceRefs implements memory.Object.
func (a *Array) TraceRefs(visit func(any)) {
	for _, v := range a.Elems {
		visit(v)
	}
}

// TraceRefs implements memory.Object.
func (li *LambdaInfo) TraceRefs(visit func(any)) {
	if li.AST != nil {
		visit(li.AST)
	}
	for _, v := range li.SParams {
		visit(v)
	}
}

// Arg returns argument i of e.
func (e *Expr) Arg(i int) Value {
	return e.Args[i]
}

// Len returns the number of elements of a.
func (a *Array) Len() int {
	return len(a.Elems)
}

// IsExpr checks if v is an expression node with the given head
func IsExpr(v Value, head *Symbol) bool {
	e, ok := v.(*Expr)
	return ok && e != nil && e.Head == head
}
