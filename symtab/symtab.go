/*
Package symtab implements scopes and symbol tables for ParaCL programs.

Scopes are organized in a tree, following the lexical structure of a program.
Every scope carries a symbol table, holding the variables (and parameters)
declared in the scope. Symbol tables remember the order of declarations:
the code generator assigns stack slots to symbols in this order.

For a thorough discussion of scopes and symbol tables, refer to
"Language Implementation Patterns" by Terence Parr.

Function Boundaries

ParaCL functions cannot see the local variables of enclosing scopes, with
the exception of the global scope. A scope which is the outermost scope of a
function (holding the function's parameters) is marked as a function scope.
Name resolution walks up the scope tree until it reaches a function scope,
then continues with the global scope.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package symtab

import (
	"fmt"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to the global syntax tracer.
func T() tracing.Trace {
	return gtrace.SyntaxTracer
}

// --- Symbols ---------------------------------------------------------------

// Kind is the kind of a symbol.
type Kind int8

// Kinds of symbols.
const (
	Variable Kind = iota
	Param
)

func (k Kind) String() string {
	switch k {
	case Variable:
		return "var"
	case Param:
		return "param"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Symbol is a declared name.
type Symbol struct {
	name  string
	Kind  Kind
	Index int         // position within the declaring symbol table
	UData interface{} // user data
}

// NewSymbol creates a new variable symbol.
func NewSymbol(nm string) *Symbol {
	return &Symbol{name: nm, Index: -1}
}

// WithKind sets the kind of a symbol. Use as
//
//    sym := NewSymbol("x").WithKind(Param)
//
func (s *Symbol) WithKind(k Kind) *Symbol {
	s.Kind = k
	return s
}

// Name gets the symbol's name.
func (s *Symbol) Name() string {
	return s.name
}

// String is a debug Stringer for symbols.
func (s *Symbol) String() string {
	return fmt.Sprintf("<%s '%s'#%d>", s.Kind, s.name, s.Index)
}

// === Symbol Tables =========================================================

// SymbolTable is a symbol table with map-like semantics which remembers the
// order in which symbols have been declared.
type SymbolTable struct {
	table map[string]*Symbol
	order []*Symbol
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		table: make(map[string]*Symbol),
	}
}

// Resolve checks for a symbol in the symbol table.
// Returns a symbol or nil.
func (t *SymbolTable) Resolve(name string) *Symbol {
	return t.table[name]
}

// ResolveOrDefine finds a symbol in the table, and inserts a new one if not found.
// Returns the symbol and a flag, signalling whether the symbol has already been
// present.
func (t *SymbolTable) ResolveOrDefine(name string) (*Symbol, bool) {
	if len(name) == 0 {
		return nil, false
	}
	if sym := t.Resolve(name); sym != nil {
		return sym, true
	}
	sym, _ := t.Define(name)
	return sym, false
}

// Define creates a new symbol in the symbol table. The name may not be empty.
// Returns the new symbol and the previously stored symbol with this name (or nil).
// A redefined symbol keeps the position of the symbol it replaces.
func (t *SymbolTable) Define(name string) (*Symbol, *Symbol) {
	if len(name) == 0 {
		return nil, nil
	}
	sym := NewSymbol(name)
	old := t.Insert(sym)
	return sym, old
}

// Insert inserts a pre-created symbol, returning the symbol previously stored
// under the same name, if any.
func (t *SymbolTable) Insert(sym *Symbol) *Symbol {
	old := t.Resolve(sym.name)
	if old != nil {
		sym.Index = old.Index
		t.order[old.Index] = sym
	} else {
		sym.Index = len(t.order)
		t.order = append(t.order, sym)
	}
	t.table[sym.name] = sym
	return old
}

// Size counts the symbols in a symbol table.
func (t *SymbolTable) Size() int {
	return len(t.order)
}

// Count counts the symbols of kind k.
func (t *SymbolTable) Count(k Kind) int {
	n := 0
	for _, sym := range t.order {
		if sym.Kind == k {
			n++
		}
	}
	return n
}

// Each iterates over the symbols of the table in order of declaration.
func (t *SymbolTable) Each(mapper func(string, *Symbol)) {
	for _, sym := range t.order {
		mapper(sym.name, sym)
	}
}

// Symbols returns the symbols of the table in order of declaration.
func (t *SymbolTable) Symbols() []*Symbol {
	syms := make([]*Symbol, len(t.order))
	copy(syms, t.order)
	return syms
}
