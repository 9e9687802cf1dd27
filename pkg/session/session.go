// Package session threads the heap, the gensym table, the namespace and the
// front end through every boundary operation. Independent sessions share
// nothing but the symbol table.
package session

import (
	"github.com/npillmayer/schuko/tracing"

	"astbridge/pkg/ast"
	"astbridge/pkg/config"
	"astbridge/pkg/convert"
	"astbridge/pkg/diagnostics"
	"astbridge/pkg/eval"
	"astbridge/pkg/frontend"
	"astbridge/pkg/gensym"
	"astbridge/pkg/lambda"
	"astbridge/pkg/macro"
	"astbridge/pkg/memory"
	"astbridge/pkg/native"
	"astbridge/pkg/specialize"
)

// tracer traces with key 'astbridge.session'.
func tracer() tracing.Trace {
	return tracing.Select("astbridge.session")
}

// TraceKeys lists the tracer keys of every package.
var TraceKeys = []string{
	"astbridge.convert",
	"astbridge.specialize",
	"astbridge.macro",
	"astbridge.frontend",
	"astbridge.session",
}

// Session is one compilation context.
type Session struct {
	Heap      *memory.Heap
	Gensyms   *gensym.Table
	Namespace *eval.Namespace
	Reporter  diagnostics.Reporter

	conv        *convert.Converter
	interp      *eval.Interpreter
	specializer *specialize.Specializer
	macros      *macro.Bridge
	front       frontend.Frontend
}

// New creates a session from cfg. A nil reporter discards diagnostics.
func New(cfg config.Config, reporter diagnostics.Reporter) *Session {
	if reporter == nil {
		reporter = diagnostics.Discard
	}
	s := &Session{
		Heap:      memory.NewHeap(cfg.GCInterval),
		Gensyms:   gensym.NewTable(),
		Namespace: eval.DefaultNamespace(),
		Reporter:  reporter,
	}
	s.conv = convert.New(s.Heap, s.Gensyms, cfg.WordSize)
	s.interp = eval.New(s.Namespace)
	s.specializer = specialize.New(s.Heap, s.interp)
	s.macros = macro.New(s.Namespace, s.conv, s.Heap, reporter)
	s.front = frontend.NewReader(s.macros)
	if cfg.TraceLevel != "" {
		SetTraceLevel(cfg.TraceLevel)
	}
	tracer().Debugf("session: word size %d, gc interval %d", s.conv.WordSize(), cfg.GCInterval)
	return s
}

// SetTraceLevel applies level to every package tracer.
func SetTraceLevel(level string) {
	l := tracing.TraceLevelFromString(level)
	for _, key := range TraceKeys {
		tracing.Select(key).SetTraceLevel(l)
	}
}

// SetFrontend replaces the front end.
func (s *Session) SetFrontend(f frontend.Frontend) {
	s.front = f
}

// Interpreter returns the declared-type evaluator.
func (s *Session) Interpreter() *eval.Interpreter {
	return s.interp
}

// ToNative converts a generic tree.
func (s *Session) ToNative(e *ast.Value) (native.Value, error) {
	return s.conv.ToNative(e)
}

// ToGeneric converts a native value.
func (s *Session) ToGeneric(v native.Value) *ast.Value {
	return s.conv.ToGeneric(v)
}

// ParseInputLine parses one line of input. It returns nil for a blank line.
func (s *Session) ParseInputLine(line string) (native.Value, error) {
	e, err := s.front.ParseLine(line)
	if err != nil || e == nil {
		return nil, s.reportParse(err)
	}
	return s.toNative(e)
}

// ParseString parses one datum of str at byte offset pos and returns it with
// the offset to continue from. At end of input it returns native.Nothing.
func (s *Session) ParseString(str string, pos int, greedy bool) (native.Value, int, error) {
	e, next, err := s.front.ParseFragment(str, pos, greedy)
	if err != nil {
		return nil, pos, s.reportParse(err)
	}
	v, err := s.toNative(e)
	if err != nil {
		return nil, pos, err
	}
	return v, next, nil
}

// ParseFile parses a source file. An empty file yields native.Nothing.
func (s *Session) ParseFile(path string) (native.Value, error) {
	e, err := s.front.ParseFile(path)
	if err != nil {
		return nil, s.reportParse(err)
	}
	return s.toNative(e)
}

// ParseFileString parses source text like ParseFile.
func (s *Session) ParseFileString(text string) (native.Value, error) {
	e, err := s.front.ParseSourceText(text)
	if err != nil {
		return nil, s.reportParse(err)
	}
	return s.toNative(e)
}

// Expand runs one top-level expansion pass over expr and returns either an
// atom or a thunk. Every value pinned during the pass is released before
// Expand returns.
func (s *Session) Expand(expr native.Value) (native.Value, error) {
	mark := s.Heap.Pinned()
	defer s.Heap.ReleasePins(mark)

	out, err := s.front.ExpandToThunk(s.conv.ToGeneric(expr))
	if err != nil {
		tracer().Debugf("expand: %v", err)
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	return s.toNative(out)
}

// InvokeMacro applies a registered expander to generic arguments.
func (s *Session) InvokeMacro(name string, args []*ast.Value) (*ast.Value, error) {
	return s.macros.Invoke(name, args)
}

// IsDefinedGlobal reports whether the namespace binds name.
func (s *Session) IsDefinedGlobal(name string) bool {
	return s.macros.IsDefinedGlobal(name)
}

// WrapExpr wraps expr as a zero-argument template.
func (s *Session) WrapExpr(expr native.Value) *native.LambdaInfo {
	return lambda.WrapAsThunk(s.Heap, expr)
}

// Specialize copies template bound to sparams.
func (s *Session) Specialize(template native.Value, sparams []native.Value) (*native.Expr, error) {
	e, err := s.specializer.Specialize(template, sparams)
	if err != nil {
		s.Reporter.Report(diagnostics.MakeDiag(diagnostics.ESpecialize, err.Error(), ""))
	}
	return e, err
}

// SpecializeInPlace specializes li against its own bindings.
func (s *Session) SpecializeInPlace(li *native.LambdaInfo) error {
	if err := s.specializer.SpecializeInPlace(li); err != nil {
		s.Reporter.Report(diagnostics.MakeDiag(diagnostics.ESpecialize, err.Error(), ""))
		return err
	}
	return nil
}

func (s *Session) toNative(e *ast.Value) (native.Value, error) {
	v, err := s.conv.ToNative(e)
	if err != nil {
		s.Reporter.Report(diagnostics.MakeDiag(diagnostics.EMalformed, err.Error(), ""))
		return nil, err
	}
	return v, nil
}

func (s *Session) reportParse(err error) error {
	if err != nil {
		s.Reporter.Report(diagnostics.MakeDiag(diagnostics.EParse, err.Error(), ""))
	}
	return err
}
