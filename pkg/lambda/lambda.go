// Package lambda provides typed views over the fixed lambda layout:
//
//	(lambda formals (var-info (locals ...) declared captured meta) (body ...))
//
// A shape mismatch means an upstream pass produced a broken tree; accessors
// assert and panic rather than return errors.
package lambda

import (
	"fmt"

	"astbridge/pkg/memory"
	"astbridge/pkg/native"
)

func assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("lambda: "+format, args...))
	}
}

// Expr returns the lambda expression of l, which may be a lambda *native.Expr
// or a template carrying one.
func Expr(l native.Value) *native.Expr {
	if li, ok := l.(*native.LambdaInfo); ok {
		assert(li.AST != nil, "template has no tree")
		l = li.AST
	}
	ex, ok := l.(*native.Expr)
	assert(ok && ex.Head == native.SymLambda, "not a lambda: %s", native.Show(l))
	assert(len(ex.Args) == 3, "lambda has %d slots, want 3", len(ex.Args))
	return ex
}

// FormalArgs returns the array of formal argument declarations.
func FormalArgs(l native.Value) *native.Array {
	a, ok := Expr(l).Args[0].(*native.Array)
	assert(ok, "formal arguments are not an array")
	return a
}

// VarInfoBlock returns the 4-slot var-info expression.
func VarInfoBlock(l native.Value) *native.Expr {
	vi, ok := Expr(l).Args[1].(*native.Expr)
	assert(ok && vi.Head == native.SymVarInfo, "slot 1 is not a var-info block")
	assert(len(vi.Args) >= 3, "var-info block has %d slots", len(vi.Args))
	return vi
}

// Locals returns the locally declared variable symbols.
func Locals(l native.Value) []native.Value {
	lo, ok := VarInfoBlock(l).Args[0].(*native.Expr)
	assert(ok && lo.Head == native.SymLocals, "var-info slot 0 is not a locals node")
	return lo.Args
}

// DeclaredVarInfo returns the var-info records of declared locals.
func DeclaredVarInfo(l native.Value) *native.Array {
	a, ok := VarInfoBlock(l).Args[1].(*native.Array)
	assert(ok, "declared var-info is not an array")
	return a
}

// CapturedVarInfo returns the var-info records of captured variables.
func CapturedVarInfo(l native.Value) *native.Array {
	a, ok := VarInfoBlock(l).Args[2].(*native.Array)
	assert(ok, "captured var-info is not an array")
	return a
}

// Body returns the body expression; its arguments are the statements.
func Body(l native.Value) *native.Expr {
	b, ok := Expr(l).Args[2].(*native.Expr)
	assert(ok && b.Head == native.SymBody, "slot 2 is not a body")
	return b
}

// DeclVarName returns the variable named by a declaration: either a bare
// symbol or (:: name type).
func DeclVarName(decl native.Value) *native.Symbol {
	if s, ok := decl.(*native.Symbol); ok {
		return s
	}
	ex, ok := decl.(*native.Expr)
	assert(ok && len(ex.Args) > 0, "not a declaration: %s", native.Show(decl))
	s, ok := ex.Args[0].(*native.Symbol)
	assert(ok, "declared name is not a symbol: %s", native.Show(ex.Args[0]))
	return s
}

// IsRestArg matches (:: name (call f ... x)), the spelling of a rest
// argument. It is a syntactic test; anything else is false.
func IsRestArg(decl native.Value) bool {
	ex, ok := decl.(*native.Expr)
	if !ok || ex.Head != native.SymDecl || len(ex.Args) < 2 {
		return false
	}
	atype, ok := ex.Args[1].(*native.Expr)
	if !ok || atype.Head != native.SymCall || len(atype.Args) != 3 {
		return false
	}
	return atype.Args[1] == native.SymDots
}

// WrapAsThunk builds a zero-argument template returning expr:
//
//	(lambda [] (var-info (locals) [] [] []) (body (return expr)))
//
// An expr that already is a body is used as the body directly.
func WrapAsThunk(h *memory.Heap, expr native.Value) *native.LambdaInfo {
	f := h.PushRoots(3)
	defer f.Pop()
	f.Set(0, expr)

	le := native.NewExpr(h, native.SymLambda, 3)
	f.Set(1, le)
	vi := native.NewExpr(h, native.SymVarInfo, 4)
	le.Args[1] = vi
	vi.Args[0] = native.NewExpr(h, native.SymLocals, 0)
	for i := 1; i < 4; i++ {
		vi.Args[i] = native.NewArray(h, 0)
	}
	le.Args[0] = native.NewArray(h, 0)

	if !native.IsExpr(expr, native.SymBody) {
		bo := native.NewExpr(h, native.SymBody, 1)
		f.Set(2, bo)
		ret := native.NewExpr(h, native.SymReturn, 1)
		ret.Args[0] = expr
		bo.Args[0] = ret
		expr = bo
	}
	le.Args[2] = expr
	return native.NewLambdaInfo(h, le, nil)
}
