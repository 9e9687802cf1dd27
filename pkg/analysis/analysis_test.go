package analysis

import (
	"testing"

	"astbridge/pkg/ast"
	"astbridge/pkg/parser"
)

func parseExpr(input string) *ast.Value {
	p := parser.New(input)
	expr, _ := p.Parse()
	return expr
}

func TestScopeReference(t *testing.T) {
	outer := NewScope(nil)
	outer.AddVar("x", nil, true)
	mid := NewScope(outer)
	inner := NewScope(mid)

	inner.Reference("x")
	inner.Reference("x")
	inner.Reference("global")

	xUsage := outer.FindVar("x")
	if xUsage == nil {
		t.Fatal("x not found")
	}
	if xUsage.UseCount != 2 {
		t.Errorf("x.UseCount = %d, want 2", xUsage.UseCount)
	}
	if !xUsage.CapturedByLambda {
		t.Error("x should be captured by lambda")
	}
	if len(inner.Captured()) != 1 || len(mid.Captured()) != 1 {
		t.Errorf("captured: inner=%d mid=%d, want 1 and 1", len(inner.Captured()), len(mid.Captured()))
	}
	if len(outer.Captured()) != 0 {
		t.Error("the defining scope does not capture its own variable")
	}
	if inner.FindVar("global") != nil || outer.FindVar("global") != nil {
		t.Error("globals are not declared anywhere")
	}
}

func TestFlags(t *testing.T) {
	v := &VarUsage{Name: "v"}
	if v.Flags() != 0 {
		t.Errorf("Flags = %d, want 0", v.Flags())
	}
	v.Assigned = true
	v.CapturedByLambda = true
	if v.Flags() != FlagCaptured|FlagAssigned {
		t.Errorf("Flags = %d, want 3", v.Flags())
	}
}

func TestLowerFunction(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{
			"(function (tuple) 1)",
			"(lambda () (var-info (locals) () () ()) (body (return 1)))",
		},
		{
			"(function (tuple))",
			"(lambda () (var-info (locals) () () ()) (body (return (null))))",
		},
		{
			"(function (tuple (:: x T) y) (= z (call + x y)) z)",
			"(lambda ((:: x T) y) (var-info (locals z) ((x T 0) (y Any 0) (z Any 2)) () ()) (body (= z (call + x y)) (return z)))",
		},
		{
			"(function (tuple a) (local (:: b Int64)) (return a))",
			"(lambda (a) (var-info (locals b) ((a Any 0) (b Int64 0)) () ()) (body (null) (return a)))",
		},
		{
			"(function (tuple n) (function (tuple) n))",
			"(lambda (n) (var-info (locals) ((n Any 1)) () ()) (body (return (lambda () (var-info (locals) () ((n Any 1)) ()) (body (return n))))))",
		},
		{
			"(call f (quote (function (tuple) x)))",
			"(call f (quote (function (tuple) x)))",
		},
	}
	for _, tt := range tests {
		got, err := Lower(parseExpr(tt.input))
		if err != nil {
			t.Errorf("Lower(%s) error: %v", tt.input, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("Lower(%s)\n got %s\nwant %s", tt.input, got, tt.want)
		}
	}
}

func TestLowerTransitiveCapture(t *testing.T) {
	got, err := Lower(parseExpr("(function (tuple a) (function (tuple b) (function (tuple) (call + a b))))"))
	if err != nil {
		t.Fatalf("Lower error: %v", err)
	}
	mid := ast.ListToSlice(ast.ListToSlice(got)[3])[1] // (return (lambda ...))
	midLambda := ast.ListToSlice(mid)[1]
	captured := ast.ListToSlice(ast.ListToSlice(midLambda)[2])[3]
	if captured.String() != "((a Any 1))" {
		t.Errorf("middle function captures %s, want ((a Any 1))", captured)
	}
}

func TestLowerErrors(t *testing.T) {
	inputs := []string{
		"(function)",
		"(function x 1)",
		"(function (a b) 1)",
		"(function (tuple 1) 1)",
		"(function (tuple (:: x)) x)",
		"(function (tuple) (local 3))",
	}
	for _, in := range inputs {
		if got, err := Lower(parseExpr(in)); err == nil {
			t.Errorf("Lower(%s) = %s, want error", in, got)
		}
	}
}

func TestLowerLeavesOtherFormsAlone(t *testing.T) {
	in := parseExpr("(block (= x 1) (call g x))")
	got, err := Lower(in)
	if err != nil {
		t.Fatalf("Lower error: %v", err)
	}
	if got.String() != in.String() {
		t.Errorf("Lower = %s, want %s", got, in)
	}
}
