package native

import (
	"testing"

	"astbridge/pkg/memory"
)

func TestSymbolInterning(t *testing.T) {
	if Sym("alpha") != Sym("alpha") {
		t.Error("symbols with one name must be one object")
	}
	if Sym("alpha") == Sym("beta") {
		t.Error("different names must give different symbols")
	}
	if Sym("lambda") != SymLambda {
		t.Error("well-known heads are interned")
	}

	g1, g2 := Gensym(), Gensym()
	if g1 == g2 || g1.Name == g2.Name {
		t.Error("gensyms must be distinct")
	}
	if !g1.IsGensym() || Sym("alpha").IsGensym() {
		t.Error("IsGensym mismatch")
	}
	if Sym(g1.Name) != g1 {
		t.Error("a gensym's name must map back to it")
	}
}

func TestConstructors(t *testing.T) {
	h := memory.NewHeap(0)
	e := NewExpr(h, SymCall, 2)
	if len(e.Args) != 2 || e.Arg(0) != Nothing || e.Arg(1) != Nothing {
		t.Errorf("NewExpr slots = %v", e.Args)
	}
	a := NewArray(h, 3)
	if a.Len() != 3 || a.Elems[2] != Nothing {
		t.Errorf("NewArray elems = %v", a.Elems)
	}
	if e.Generation() == 0 || a.Generation() == 0 {
		t.Error("heap allocations are stamped")
	}
	if !IsExpr(e, SymCall) || IsExpr(e, SymBody) || IsExpr(a, SymCall) || IsExpr(nil, SymCall) {
		t.Error("IsExpr mismatch")
	}
}

func TestAddStaticParameters(t *testing.T) {
	h := memory.NewHeap(0)
	tv := &TypeVar{Name: Sym("T")}
	base := NewLambdaInfo(h, NewExpr(h, SymLambda, 3), []Value{tv, Int64(1)})
	s := &TypeVar{Name: Sym("S")}

	li := AddStaticParameters(h, base, []Value{s, Int64(2)})
	if li == base || li.AST != base.AST {
		t.Fatal("result must be a new template sharing the tree")
	}
	if len(li.SParams) != 4 || li.SParams[2] != s || li.SParams[3] != Int64(2) {
		t.Errorf("merged bindings = %v", li.SParams)
	}
	if len(base.SParams) != 2 {
		t.Error("source bindings were modified")
	}
	li.SParams[0] = Int64(9)
	if base.SParams[0] != tv {
		t.Error("bindings must not share storage")
	}
}

func TestEqual(t *testing.T) {
	h := memory.NewHeap(0)
	mk := func(n int64) *Expr {
		e := NewExpr(h, SymCall, 2)
		e.Args[0] = Sym("f")
		arr := NewArray(h, 1)
		arr.Elems[0] = Int64(n)
		e.Args[1] = arr
		return e
	}
	intT := &DataType{Name: Sym("Int64")}
	arrT := func(p Value) *DataType { return &DataType{Name: Sym("Array"), Params: []Value{p, Int64(1)}} }

	tests := []struct {
		a, b Value
		want bool
	}{
		{mk(1), mk(1), true},
		{mk(1), mk(2), false},
		{Int64(1), Int32(1), false},
		{String("a\x00b"), String("a\x00b"), true},
		{Float64(0.5), Float64(0.5), true},
		{Nothing, Nothing, true},
		{True, False, false},
		{arrT(intT), arrT(intT), true},
		{arrT(intT), arrT(Sym("Int64")), false},
		{NewLambdaInfo(h, mk(1), nil), NewLambdaInfo(h, mk(1), nil), true},
		{NewLambdaInfo(h, mk(1), nil), NewLambdaInfo(h, nil, nil), false},
		{&TypeVar{Name: Sym("T")}, &TypeVar{Name: Sym("T")}, false},
	}
	for i, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("%d: Equal(%s, %s) = %v, want %v", i, Show(tt.a), Show(tt.b), got, tt.want)
		}
	}
}

func TestShow(t *testing.T) {
	h := memory.NewHeap(0)
	e := NewExpr(h, SymCall, 3)
	e.Args[0] = Sym("f")
	e.Args[1] = Int32(3)
	arr := NewArray(h, 2)
	arr.Elems[0] = True
	arr.Elems[1] = String("s")
	e.Args[2] = arr

	tests := []struct {
		v    Value
		want string
	}{
		{e, `(call f 3i32 [true "s"])`},
		{Uint64(255), "0xff"},
		{Char('λ'), "'λ'"},
		{Nothing, "()"},
		{&DataType{Name: Sym("Array"), Params: []Value{&DataType{Name: Sym("Int64")}, Int64(2)}}, "Array{Int64,2}"},
		{NewLambdaInfo(h, nil, []Value{&TypeVar{Name: Sym("T")}, Int64(1)}), "#<template no tree where T 1>"},
		{&Builtin{Name: "tuple"}, "#<builtin tuple>"},
		{nil, "#<undef>"},
	}
	for _, tt := range tests {
		if got := Show(tt.v); got != tt.want {
			t.Errorf("Show = %s, want %s", got, tt.want)
		}
	}
}

func TestTraceRefs(t *testing.T) {
	h := memory.NewHeap(1)
	f := h.PushRoots(1)
	defer f.Pop()

	li := NewLambdaInfo(h, nil, nil)
	f.Set(0, li)
	body := NewExpr(h, SymBody, 1)
	li.AST = body
	inner := NewArray(h, 0)
	body.Args[0] = inner

	h.Collect()
	if li.Reclaimed() || body.Reclaimed() || inner.Reclaimed() {
		t.Error("objects reachable from a rooted template were reclaimed")
	}
}
