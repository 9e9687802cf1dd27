// Package macro invokes native expanders on behalf of the front end.
//
// Callers only ever observe a generic result, ErrNotFound or
// ErrExpansionFailed; the expander's own failure is reported through the
// diagnostics Reporter and stops at this boundary.
package macro

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"astbridge/pkg/ast"
	"astbridge/pkg/convert"
	"astbridge/pkg/diagnostics"
	"astbridge/pkg/eval"
	"astbridge/pkg/memory"
	"astbridge/pkg/native"
)

// tracer traces with key 'astbridge.macro'.
func tracer() tracing.Trace {
	return tracing.Select("astbridge.macro")
}

// Invocation outcomes other than success.
var (
	ErrNotFound        = errors.New("macro not found")
	ErrExpansionFailed = errors.New("macro expansion failed")
)

// Bridge runs expanders registered in a namespace.
type Bridge struct {
	ns       *eval.Namespace
	conv     *convert.Converter
	heap     *memory.Heap
	reporter diagnostics.Reporter
}

// New creates a bridge. A nil reporter discards diagnostics.
func New(ns *eval.Namespace, conv *convert.Converter, heap *memory.Heap, reporter diagnostics.Reporter) *Bridge {
	if reporter == nil {
		reporter = diagnostics.Discard
	}
	return &Bridge{ns: ns, conv: conv, heap: heap, reporter: reporter}
}

// Invoke applies the expander registered under name to args. The native
// result is pinned until the enclosing expansion pass releases its pins.
//
// A malformed argument is a structural error and is returned as such.
func (b *Bridge) Invoke(name string, args []*ast.Value) (*ast.Value, error) {
	fn, ok := b.ns.LookupExpander(name)
	if !ok {
		tracer().Debugf("no expander for %s", name)
		return nil, ErrNotFound
	}

	depth := b.heap.RootDepth()
	f := b.heap.PushRoots(len(args))
	defer func() {
		if n := b.heap.UnwindRoots(depth); n > 1 {
			tracer().Infof("expander %s left %d root frames behind", name, n-1)
		}
	}()
	nargs := make([]native.Value, len(args))
	for i, a := range args {
		v, err := b.conv.ToNative(a)
		if err != nil {
			return nil, err
		}
		f.Set(i, v)
		nargs[i] = v
	}

	mark := b.heap.Pinned()
	result, err := apply(fn, nargs)
	if err != nil {
		if b.heap.Pinned() > mark {
			b.heap.ReleasePins(mark)
		}
		tracer().Errorf("expander %s failed: %v", name, err)
		b.reporter.Report(diagnostics.MakeDiag(diagnostics.EExpansion,
			fmt.Sprintf("macro %s: %v", name, err), ""))
		return nil, ErrExpansionFailed
	}

	b.heap.Pin(result)
	tracer().Debugf("expanded %s to %s", name, native.Show(result))
	return b.conv.ToGeneric(result), nil
}

// apply calls fn, turning a panic into an error.
func apply(fn *native.Builtin, args []native.Value) (result native.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	result, err = fn.Fn(args)
	if err == nil && result == nil {
		err = errors.New("expander returned no value")
	}
	return result, err
}

// IsDefinedGlobal reports whether the namespace binds name.
func (b *Bridge) IsDefinedGlobal(name string) bool {
	return b.ns.IsDefined(name)
}
