package analysis

import (
	"fmt"

	"astbridge/pkg/ast"
)

// Lower rewrites every (function (tuple formals...) stmts...) form of e into
// the lambda layout
//
//	(lambda formals (var-info (locals ...) declared captured ()) (body ...))
//
// where declared holds a (name type flags) record per argument and local and
// captured one per outer variable the function reads. Undeclared types are
// Any. The last statement of a body is made a return.
func Lower(e *ast.Value) (*ast.Value, error) {
	return lowerExpr(e, nil)
}

func lowerExpr(e *ast.Value, scope *Scope) (*ast.Value, error) {
	if ast.IsSym(e) {
		if scope != nil {
			scope.Reference(e.Str)
		}
		return e, nil
	}
	if !ast.IsCell(e) {
		return e, nil
	}

	hd := e.Car
	switch {
	case ast.SymEqStr(hd, "quote"):
		return e, nil
	case ast.SymEqStr(hd, "function"):
		return lowerFunction(e, scope)
	case ast.SymEqStr(hd, "local"):
		return ast.List1(ast.NewSym("null")), nil
	case ast.SymEqStr(hd, "="):
		if scope != nil && ast.IsCell(e.Cdr) && ast.IsSym(e.Cdr.Car) {
			if v := scope.FindVar(e.Cdr.Car.Str); v != nil {
				v.Assigned = true
			}
			rest, err := lowerList(e.Cdr.Cdr, scope)
			if err != nil {
				return nil, err
			}
			return ast.NewCell(hd, ast.NewCell(e.Cdr.Car, rest)), nil
		}
	}

	if !ast.IsProperList(e) {
		return nil, fmt.Errorf("improper list in %s", e)
	}
	if ast.IsSymbol(hd) {
		rest, err := lowerList(e.Cdr, scope)
		if err != nil {
			return nil, err
		}
		return ast.NewCell(hd, rest), nil
	}
	return lowerList(e, scope)
}

func lowerList(l *ast.Value, scope *Scope) (*ast.Value, error) {
	items := ast.ListToSlice(l)
	for i, it := range items {
		x, err := lowerExpr(it, scope)
		if err != nil {
			return nil, err
		}
		items[i] = x
	}
	return ast.SliceToList(items), nil
}

// formal splits a formal argument into name and declared type
func formal(f *ast.Value) (string, *ast.Value, error) {
	if ast.IsSym(f) {
		return f.Str, nil, nil
	}
	items := ast.ListToSlice(f)
	if ast.IsCell(f) && ast.SymEqStr(f.Car, "::") && len(items) == 3 && ast.IsSym(items[1]) {
		return items[1].Str, items[2], nil
	}
	return "", nil, fmt.Errorf("bad formal argument %s", f)
}

func lowerFunction(e *ast.Value, parent *Scope) (*ast.Value, error) {
	items := ast.ListToSlice(e.Cdr)
	if len(items) == 0 || !ast.IsCell(items[0]) || !ast.SymEqStr(items[0].Car, "tuple") ||
		!ast.IsProperList(items[0]) || !ast.IsProperList(e) {
		return nil, fmt.Errorf("function: expected (tuple formals...) in %s", e)
	}
	formals := items[0].Cdr
	stmts := items[1:]

	scope := NewScope(parent)
	for _, f := range ast.ListToSlice(formals) {
		name, typ, err := formal(f)
		if err != nil {
			return nil, err
		}
		scope.AddVar(name, typ, true)
	}
	for _, st := range stmts {
		if err := declareLocals(st, scope); err != nil {
			return nil, err
		}
	}

	body := make([]*ast.Value, 0, len(stmts)+1)
	for _, st := range stmts {
		x, err := lowerExpr(st, scope)
		if err != nil {
			return nil, err
		}
		body = append(body, x)
	}
	switch {
	case len(body) == 0:
		body = append(body, ast.List2(ast.NewSym("return"), ast.List1(ast.NewSym("null"))))
	case !ast.IsCell(body[len(body)-1]) || !ast.SymEqStr(body[len(body)-1].Car, "return"):
		body[len(body)-1] = ast.List2(ast.NewSym("return"), body[len(body)-1])
	}

	var locals, declared, captured []*ast.Value
	for _, v := range scope.Vars() {
		if !v.IsArg {
			locals = append(locals, ast.NewSym(v.Name))
		}
		declared = append(declared, record(v))
	}
	for _, v := range scope.Captured() {
		captured = append(captured, record(v))
	}

	vinfo := ast.List(
		ast.NewSym("var-info"),
		ast.NewCell(ast.NewSym("locals"), ast.SliceToList(locals)),
		ast.SliceToList(declared),
		ast.SliceToList(captured),
		ast.Nil,
	)
	return ast.List(
		ast.NewSym("lambda"),
		formals,
		vinfo,
		ast.NewCell(ast.NewSym("body"), ast.SliceToList(body)),
	), nil
}

func record(v *VarUsage) *ast.Value {
	typ := v.Type
	if typ == nil {
		typ = ast.NewSym("Any")
	}
	return ast.List3(ast.NewSym(v.Name), typ, ast.NewInt(v.Flags()))
}

// declareLocals adds the names assigned or declared local in e, not looking
// into nested functions or quoted data.
func declareLocals(e *ast.Value, scope *Scope) error {
	if !ast.IsCell(e) {
		return nil
	}
	hd := e.Car
	switch {
	case ast.SymEqStr(hd, "quote"), ast.SymEqStr(hd, "function"):
		return nil
	case ast.SymEqStr(hd, "local"):
		for _, d := range ast.ListToSlice(e.Cdr) {
			name, typ, err := formal(d)
			if err != nil {
				return fmt.Errorf("local: %w", err)
			}
			scope.AddVar(name, typ, false)
		}
		return nil
	case ast.SymEqStr(hd, "=") && ast.IsCell(e.Cdr) && ast.IsSym(e.Cdr.Car):
		scope.AddVar(e.Cdr.Car.Str, nil, false)
	}
	for _, x := range ast.ListToSlice(e) {
		if err := declareLocals(x, scope); err != nil {
			return err
		}
	}
	return nil
}
