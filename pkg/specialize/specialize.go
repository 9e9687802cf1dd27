// Package specialize instantiates lambda templates against static-parameter
// bindings.
//
// A specialization is a deep copy of the template's tree in which nested
// templates are rebound to the enclosing bindings and every declared type in
// the var-info block is replaced by its evaluated value.
package specialize

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"astbridge/pkg/lambda"
	"astbridge/pkg/memory"
	"astbridge/pkg/native"
)

// tracer traces with key 'astbridge.specialize'.
func tracer() tracing.Trace {
	return tracing.Select("astbridge.specialize")
}

// Evaluator evaluates a declared-type expression. env alternates symbols and
// the values they are bound to.
type Evaluator interface {
	Eval(expr native.Value, env []native.Value) (native.Value, error)
}

// Specializer produces specialized copies of lambda templates.
type Specializer struct {
	heap *memory.Heap
	eval Evaluator
}

// New creates a specializer allocating on heap and evaluating with ev.
func New(heap *memory.Heap, ev Evaluator) *Specializer {
	return &Specializer{heap: heap, eval: ev}
}

// Specialize returns a fresh copy of template's lambda tree bound to sparams,
// an alternating list of type variables and values. template may be a
// *native.LambdaInfo or a lambda *native.Expr; it is never modified. Any
// evaluation failure is returned as is and no tree is produced.
func (s *Specializer) Specialize(template native.Value, sparams []native.Value) (*native.Expr, error) {
	if li, ok := template.(*native.LambdaInfo); ok {
		template = li.AST
	}
	lambda.Expr(template) // asserts the layout before anything is copied

	env := typeVarEnv(sparams)

	f := s.heap.PushRoots(1)
	defer f.Pop()

	tree := s.copyAST(template, sparams).(*native.Expr)
	f.Set(0, tree)

	if err := s.evalDeclTypes(lambda.DeclaredVarInfo(tree), env); err != nil {
		tracer().Debugf("specialize: declared types: %v", err)
		return nil, err
	}
	if err := s.evalDeclTypes(lambda.CapturedVarInfo(tree), env); err != nil {
		tracer().Debugf("specialize: captured types: %v", err)
		return nil, err
	}
	tracer().Debugf("specialized %s", native.Show(tree))
	return tree, nil
}

// SpecializeInPlace replaces li's tree with its specialization against li's
// own bindings. A template without a tree is left alone.
func (s *Specializer) SpecializeInPlace(li *native.LambdaInfo) error {
	if li.AST == nil {
		return nil
	}
	tree, err := s.Specialize(li.AST, li.SParams)
	if err != nil {
		return err
	}
	li.AST = tree
	return nil
}

// typeVarEnv maps each type variable of sparams to its name.
func typeVarEnv(sparams []native.Value) []native.Value {
	if len(sparams)%2 != 0 {
		panic(fmt.Sprintf("specialize: odd static parameter list (%d entries)", len(sparams)))
	}
	env := make([]native.Value, len(sparams))
	for i := 0; i < len(sparams); i += 2 {
		tv, ok := sparams[i].(*native.TypeVar)
		if !ok {
			panic(fmt.Sprintf("specialize: static parameter %d is not a type variable: %s", i/2, native.Show(sparams[i])))
		}
		env[i] = tv.Name
		env[i+1] = sparams[i+1]
	}
	return env
}

func (s *Specializer) copyAST(v native.Value, sparams []native.Value) native.Value {
	switch x := v.(type) {
	case *native.LambdaInfo:
		return native.AddStaticParameters(s.heap, x, sparams)

	case *native.Array:
		na := native.NewArray(s.heap, len(x.Elems))
		f := s.heap.PushRoots(1)
		defer f.Pop()
		f.Set(0, na)
		for i, e := range x.Elems {
			na.Elems[i] = s.copyAST(e, sparams)
		}
		return na

	case *native.Expr:
		ne := native.NewExpr(s.heap, x.Head, len(x.Args))
		f := s.heap.PushRoots(1)
		defer f.Pop()
		f.Set(0, ne)
		for i, a := range x.Args {
			ne.Args[i] = s.copyAST(a, sparams)
		}
		return ne
	}
	return v
}

// evalDeclTypes overwrites slot 1 of every record in vi with its evaluation.
func (s *Specializer) evalDeclTypes(vi *native.Array, env []native.Value) error {
	for i, r := range vi.Elems {
		rec, ok := r.(*native.Array)
		if !ok || len(rec.Elems) < 2 {
			panic(fmt.Sprintf("specialize: var-info record %d is malformed: %s", i, native.Show(r)))
		}
		ty, err := s.eval.Eval(rec.Elems[1], env)
		if err != nil {
			return err
		}
		rec.Elems[1] = ty
	}
	return nil
}
