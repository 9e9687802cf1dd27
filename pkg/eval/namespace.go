package eval

import (
	"astbridge/pkg/native"
)

// Namespace is the global namespace: value bindings and macro expanders,
// both keyed by interned symbol.
type Namespace struct {
	bindings  map[*native.Symbol]native.Value
	expanders map[*native.Symbol]*native.Builtin
}

// NewNamespace creates an empty namespace
func NewNamespace() *Namespace {
	return &Namespace{
		bindings:  make(map[*native.Symbol]native.Value),
		expanders: make(map[*native.Symbol]*native.Builtin),
	}
}

// Define binds name to v
func (ns *Namespace) Define(name string, v native.Value) {
	ns.bindings[native.Sym(name)] = v
}

// Lookup returns the value bound to sym
func (ns *Namespace) Lookup(sym *native.Symbol) (native.Value, bool) {
	v, ok := ns.bindings[sym]
	return v, ok
}

// IsDefined reports whether name is bound
func (ns *Namespace) IsDefined(name string) bool {
	_, ok := ns.bindings[native.Sym(name)]
	return ok
}

// DefineMacro registers an expander under name
func (ns *Namespace) DefineMacro(name string, fn native.BuiltinFn) {
	ns.expanders[native.Sym(name)] = &native.Builtin{Name: name, Fn: fn}
}

// LookupExpander returns the expander registered under name
func (ns *Namespace) LookupExpander(name string) (*native.Builtin, bool) {
	f, ok := ns.expanders[native.Sym(name)]
	return f, ok
}

// ClearMacros removes every registered expander
func (ns *Namespace) ClearMacros() {
	ns.expanders = make(map[*native.Symbol]*native.Builtin)
}
