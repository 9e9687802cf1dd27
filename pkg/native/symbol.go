package native

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Symbol is a native symbol. Symbols are interned, so two symbols with the
// same name are the same object.
type Symbol struct {
	Name   string
	gensym bool
}

var (
	symMu    sync.Mutex
	symtab   = make(map[string]*Symbol)
	gensymID uint64
)

// Sym returns the interned symbol for name.
func Sym(name string) *Symbol {
	symMu.Lock()
	defer symMu.Unlock()
	if s, ok := symtab[name]; ok {
		return s
	}
	s := &Symbol{Name: name}
	symtab[name] = s
	return s
}

// Gensym creates a fresh symbol distinct from every other symbol. It is
// interned under its "#N" name, which the reader cannot produce, so the name
// maps back to the same object.
func Gensym() *Symbol {
	n := atomic.AddUint64(&gensymID, 1)
	s := &Symbol{Name: fmt.Sprintf("#%d", n), gensym: true}
	symMu.Lock()
	symtab[s.Name] = s
	symMu.Unlock()
	return s
}

// IsGensym reports whether s was created by Gensym.
func (s *Symbol) IsGensym() bool {
	return s.gensym
}

// Well-known heads
var (
	SymLambda  = Sym("lambda")
	SymVarInfo = Sym("var-info")
	SymLocals  = Sym("locals")
	SymBody    = Sym("body")
	SymReturn  = Sym("return")
	SymDecl    = Sym("::")
	SymCall    = Sym("call")
	SymDots    = Sym("...")
	SymQuote   = Sym("quote")
	SymTop     = Sym("top")
	SymCurly   = Sym("curly")
	SymNull    = Sym("null")
	SymThunk   = Sym("thunk")
)
