// Package analysis computes variable information for function forms of the
// generic tree: which names are arguments, which are locals, which are
// assigned and which outer variables a closure captures.
package analysis

import "astbridge/pkg/ast"

// Var-info flag bits
const (
	FlagCaptured = 1 // read by an inner function
	FlagAssigned = 2 // target of an assignment
)

// VarUsage records how a variable is used inside one function
type VarUsage struct {
	Name             string
	Type             *ast.Value // declared type, nil if undeclared
	IsArg            bool
	Assigned         bool
	UseCount         int
	CapturedByLambda bool
}

// Flags returns the var-info flag bits of v
func (v *VarUsage) Flags() int64 {
	var f int64
	if v.CapturedByLambda {
		f |= FlagCaptured
	}
	if v.Assigned {
		f |= FlagAssigned
	}
	return f
}

// Scope is the variable table of one function
type Scope struct {
	parent   *Scope
	vars     []*VarUsage
	index    map[string]*VarUsage
	captured []*VarUsage
	capIndex map[string]bool
}

// NewScope creates a scope nested in parent, which may be nil
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:   parent,
		index:    make(map[string]*VarUsage),
		capIndex: make(map[string]bool),
	}
}

// AddVar declares name in s. Redeclaring returns the existing entry.
func (s *Scope) AddVar(name string, typ *ast.Value, isArg bool) *VarUsage {
	if v, ok := s.index[name]; ok {
		if v.Type == nil {
			v.Type = typ
		}
		return v
	}
	v := &VarUsage{Name: name, Type: typ, IsArg: isArg}
	s.vars = append(s.vars, v)
	s.index[name] = v
	return v
}

// FindVar returns the variable declared in s itself
func (s *Scope) FindVar(name string) *VarUsage {
	return s.index[name]
}

// Vars returns the variables of s in declaration order
func (s *Scope) Vars() []*VarUsage {
	return s.vars
}

// Captured returns the outer variables s reads, in order of first use
func (s *Scope) Captured() []*VarUsage {
	return s.captured
}

// Reference records a read of name. A name bound by an enclosing function is
// captured by s and every scope in between; unbound names are globals.
func (s *Scope) Reference(name string) {
	if v, ok := s.index[name]; ok {
		v.UseCount++
		return
	}
	for p := s.parent; p != nil; p = p.parent {
		v, ok := p.index[name]
		if !ok {
			continue
		}
		v.UseCount++
		v.CapturedByLambda = true
		for q := s; q != p; q = q.parent {
			q.capture(v)
		}
		return
	}
}

func (s *Scope) capture(v *VarUsage) {
	if s.capIndex[v.Name] {
		return
	}
	s.capIndex[v.Name] = true
	s.captured = append(s.captured, v)
}
