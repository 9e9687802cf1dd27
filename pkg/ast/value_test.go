package ast

import "testing"

func TestString(t *testing.T) {
	tests := []struct {
		v    *Value
		want string
	}{
		{NewInt(-3), "-3"},
		{NewUint(7), "7"},
		{NewUint64(7), "#u64 7"},
		{NewFloat(2), "2.0"},
		{NewFloat(0.25), "0.25"},
		{NewSym("x"), "x"},
		{NewGensym(4), "#:g4"},
		{NewStr("a\"b"), `"a\"b"`},
		{True, "#t"},
		{False, "#f"},
		{Nil, "()"},
		{NewChar(' '), "#\\space"},
		{NewChar('z'), "#\\z"},
		{List(NewSym("f"), NewInt(1), Nil), "(f 1 ())"},
		{NewCell(NewSym("a"), NewSym("b")), "(a . b)"},
		{NewForeign(3), "#<foreign int>"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestPredicates(t *testing.T) {
	g := NewGensym(1)
	if !IsGensym(g) || IsSym(g) || !IsSymbol(g) {
		t.Error("gensym predicates")
	}
	if !IsSym(NewSym("a")) || !SymEqStr(NewSym("a"), "a") || SymEqStr(g, g.Str) {
		t.Error("symbol predicates")
	}
	if !IsNumber(NewUint64(1)) || IsNumber(NewStr("1")) || IsNumber(nil) {
		t.Error("IsNumber")
	}
	if !IsNil(nil) || !IsNil(Nil) || IsNil(NewInt(0)) {
		t.Error("IsNil")
	}
	if NewBool(true) != True || NewBool(false) != False {
		t.Error("booleans are singletons")
	}
	if !IsForeign(NewForeign(nil)) {
		t.Error("IsForeign")
	}
}

func TestListHelpers(t *testing.T) {
	l := List3(NewInt(1), NewInt(2), NewInt(3))
	if ListLen(l) != 3 || !IsProperList(l) {
		t.Errorf("ListLen = %d", ListLen(l))
	}
	items := ListToSlice(l)
	if len(items) != 3 || items[2].Int != 3 {
		t.Errorf("ListToSlice = %v", items)
	}
	if SliceToList(items).String() != "(1 2 3)" {
		t.Error("SliceToList round trip")
	}
	if IsProperList(NewCell(NewInt(1), NewInt(2))) {
		t.Error("dotted pair is not a proper list")
	}
	if !IsProperList(Nil) || ListLen(Nil) != 0 {
		t.Error("empty list")
	}
	if TagName(TGensym) != "GENSYM" || TagName(Tag(99)) != "UNKNOWN(99)" {
		t.Error("TagName")
	}
}
