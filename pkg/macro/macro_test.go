package macro

import (
	"errors"
	"fmt"
	"testing"

	"astbridge/pkg/ast"
	"astbridge/pkg/convert"
	"astbridge/pkg/diagnostics"
	"astbridge/pkg/eval"
	"astbridge/pkg/gensym"
	"astbridge/pkg/memory"
	"astbridge/pkg/native"
	"astbridge/pkg/parser"
)

type fixture struct {
	heap   *memory.Heap
	ns     *eval.Namespace
	diags  *diagnostics.Collector
	bridge *Bridge
}

func newFixture(interval int) *fixture {
	heap := memory.NewHeap(interval)
	ns := eval.DefaultNamespace()
	diags := &diagnostics.Collector{}
	conv := convert.New(heap, gensym.NewTable(), 64)
	return &fixture{heap: heap, ns: ns, diags: diags, bridge: New(ns, conv, heap, diags)}
}

func parseArgs(t *testing.T, inputs ...string) []*ast.Value {
	t.Helper()
	args := make([]*ast.Value, len(inputs))
	for i, in := range inputs {
		v, err := parser.ParseString(in)
		if err != nil {
			t.Fatalf("ParseString(%q) error: %v", in, err)
		}
		args[i] = v
	}
	return args
}

// swap builds (call f b a) from (f a b)
func swap(heap *memory.Heap) native.BuiltinFn {
	return func(args []native.Value) (native.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("swap: expected 1 argument, got %d", len(args))
		}
		e, ok := args[0].(*native.Expr)
		if !ok || len(e.Args) != 2 {
			return nil, fmt.Errorf("swap: expected a binary call")
		}
		out := native.NewExpr(heap, native.SymCall, 3)
		out.Args[0] = e.Head
		out.Args[1] = e.Args[1]
		out.Args[2] = e.Args[0]
		return out, nil
	}
}

func TestInvokeNotFound(t *testing.T) {
	fx := newFixture(0)
	_, err := fx.bridge.Invoke("nope", parseArgs(t, "x"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(fx.diags.Diags) != 0 {
		t.Error("a missing macro is not reported")
	}
	if fx.heap.RootDepth() != 0 || fx.heap.Pinned() != 0 {
		t.Error("lookup miss must not root or pin anything")
	}
}

func TestInvokeSuccess(t *testing.T) {
	fx := newFixture(0)
	fx.ns.DefineMacro("swap", swap(fx.heap))

	got, err := fx.bridge.Invoke("swap", parseArgs(t, "(minus a b)"))
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if got.String() != "(call minus b a)" {
		t.Errorf("Invoke = %s, want (call minus b a)", got)
	}
	if fx.heap.Pinned() != 1 {
		t.Errorf("Pinned = %d, want 1", fx.heap.Pinned())
	}
	if fx.heap.RootDepth() != 0 {
		t.Errorf("root frames left: %d", fx.heap.RootDepth())
	}
}

func TestInvokeFailure(t *testing.T) {
	tests := []struct {
		name string
		mk   func(h *memory.Heap) native.BuiltinFn
	}{
		{"error", func(h *memory.Heap) native.BuiltinFn {
			return func(args []native.Value) (native.Value, error) { return nil, errors.New("bad input") }
		}},
		{"panic", func(h *memory.Heap) native.BuiltinFn {
			return func(args []native.Value) (native.Value, error) { panic("index out of range") }
		}},
		{"nil result", func(h *memory.Heap) native.BuiltinFn {
			return func(args []native.Value) (native.Value, error) { return nil, nil }
		}},
		{"error with frame held", func(h *memory.Heap) native.BuiltinFn {
			return func(args []native.Value) (native.Value, error) {
				h.PushRoots(1).Set(0, args[0])
				return nil, errors.New("bad input")
			}
		}},
		{"panic with frames held", func(h *memory.Heap) native.BuiltinFn {
			return func(args []native.Value) (native.Value, error) {
				h.PushRoots(1)
				h.PushRoots(2)
				panic("index out of range")
			}
		}},
		{"error after pinning", func(h *memory.Heap) native.BuiltinFn {
			return func(args []native.Value) (native.Value, error) {
				h.Pin(args[0])
				return nil, errors.New("bad input")
			}
		}},
	}
	for _, tt := range tests {
		fx := newFixture(0)
		fx.ns.DefineMacro("m", tt.mk(fx.heap))

		var got *ast.Value
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("%s: Invoke panicked: %v", tt.name, r)
				}
			}()
			got, err = fx.bridge.Invoke("m", parseArgs(t, "(f x)", "2"))
		}()
		if !errors.Is(err, ErrExpansionFailed) {
			t.Errorf("%s: err = %v, want ErrExpansionFailed", tt.name, err)
		}
		if err != ErrExpansionFailed {
			t.Errorf("%s: the sentinel must be returned unwrapped, got %v", tt.name, err)
		}
		if got != nil {
			t.Errorf("%s: got a value %s", tt.name, got)
		}
		if !fx.diags.Has(diagnostics.EExpansion) {
			t.Errorf("%s: failure was not reported", tt.name)
		}
		if fx.heap.RootDepth() != 0 {
			t.Errorf("%s: root frames left: %d", tt.name, fx.heap.RootDepth())
		}
		if fx.heap.Pinned() != 0 {
			t.Errorf("%s: pins left: %d", tt.name, fx.heap.Pinned())
		}
	}
}

func TestInvokeKeepsOuterFrames(t *testing.T) {
	fx := newFixture(0)
	fx.ns.DefineMacro("m", func(args []native.Value) (native.Value, error) {
		fx.heap.PushRoots(1)
		return nil, errors.New("bad input")
	})
	outer := fx.heap.PushRoots(1)
	if _, err := fx.bridge.Invoke("m", parseArgs(t, "x")); err != ErrExpansionFailed {
		t.Fatalf("err = %v, want ErrExpansionFailed", err)
	}
	if fx.heap.RootDepth() != 1 {
		t.Errorf("root depth = %d, want the caller's frame only", fx.heap.RootDepth())
	}
	outer.Pop()
}

func TestInvokeMalformedArgument(t *testing.T) {
	fx := newFixture(0)
	fx.ns.DefineMacro("swap", swap(fx.heap))

	_, err := fx.bridge.Invoke("swap", parseArgs(t, "(1 2)"))
	if !errors.Is(err, convert.ErrMalformedTree) {
		t.Fatalf("err = %v, want ErrMalformedTree", err)
	}
	if fx.heap.RootDepth() != 0 {
		t.Errorf("root frames left: %d", fx.heap.RootDepth())
	}
}

func TestInvokePinsResultAcrossCollections(t *testing.T) {
	fx := newFixture(1)
	var produced *native.Expr
	fx.ns.DefineMacro("swap", func(args []native.Value) (native.Value, error) {
		v, err := swap(fx.heap)(args)
		if err == nil {
			produced = v.(*native.Expr)
		}
		return v, err
	})

	mark := fx.heap.Pinned()
	if _, err := fx.bridge.Invoke("swap", parseArgs(t, "(g a b)")); err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	fx.heap.Collect()
	if produced.Reclaimed() {
		t.Fatal("pinned expansion result was reclaimed")
	}

	fx.heap.ReleasePins(mark)
	fx.heap.Collect()
	if !produced.Reclaimed() {
		t.Error("released expansion result should be reclaimed")
	}
}

func TestIsDefinedGlobal(t *testing.T) {
	fx := newFixture(0)
	fx.ns.Define("answer", native.Int64(42))
	if !fx.bridge.IsDefinedGlobal("answer") {
		t.Error("answer should be defined")
	}
	if fx.bridge.IsDefinedGlobal("question") {
		t.Error("question should not be defined")
	}
}
