package symtab

import "fmt"

// === Scopes ================================================================

// Scope is a named scope, which may contain symbol definitions. Scopes link back
// to a parent scope, forming a tree.
type Scope struct {
	Name     string
	Parent   *Scope
	Function bool // outermost scope of a function
	symtab   *SymbolTable
}

// NewScope creates a new scope.
func NewScope(nm string, parent *Scope) *Scope {
	return &Scope{
		Name:   nm,
		Parent: parent,
		symtab: NewSymbolTable(),
	}
}

// Prettyfied Stringer.
func (s *Scope) String() string {
	if s.Function {
		return fmt.Sprintf("<scope %s (function)>", s.Name)
	}
	return fmt.Sprintf("<scope %s>", s.Name)
}

// IsGlobal is a predicate: is this the root scope of a tree?
func (s *Scope) IsGlobal() bool {
	return s.Parent == nil
}

// Symbols returns the symbol table of a scope.
func (s *Scope) Symbols() *SymbolTable {
	return s.symtab
}

// Define defines a symbol in the scope. Returns the new symbol and the previously
// stored symbol under this name, if any.
func (s *Scope) Define(name string) (*Symbol, *Symbol) {
	return s.symtab.Define(name)
}

// Global returns the root of the scope tree s belongs to.
func (s *Scope) Global() *Scope {
	for s.Parent != nil {
		s = s.Parent
	}
	return s
}

// FunctionScope returns the outermost scope of the function s belongs to, or nil
// if s is not part of a function.
func (s *Scope) FunctionScope() *Scope {
	for ; s != nil; s = s.Parent {
		if s.Function {
			return s
		}
	}
	return nil
}

// Resolve finds a symbol visible from scope s. Returns the symbol (or nil) and
// the scope the symbol was found in.
//
// Resolution walks up the tree of scopes. When it leaves a function, it skips
// all scopes outside of the function except the global scope.
func (s *Scope) Resolve(name string) (*Symbol, *Scope) {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym := sc.symtab.Resolve(name); sym != nil {
			return sym, sc
		}
		if sc.Function {
			g := sc.Global()
			if g == sc {
				break
			}
			if sym := g.symtab.Resolve(name); sym != nil {
				return sym, g
			}
			break
		}
	}
	return nil, nil
}

// ---------------------------------------------------------------------------

// ScopeTree can be treated as a stack during static analysis, thus
// building a tree from scopes which are pushed and popped to/from the stack.
type ScopeTree struct {
	ScopeBase *Scope
	ScopeTOS  *Scope
}

// Current gets the current scope of a stack (TOS).
func (scst *ScopeTree) Current() *Scope {
	if scst.ScopeTOS == nil {
		panic("attempt to access scope from empty stack")
	}
	return scst.ScopeTOS
}

// Globals gets the outermost scope, containing global symbols.
func (scst *ScopeTree) Globals() *Scope {
	if scst.ScopeBase == nil {
		panic("attempt to access global scope from empty stack")
	}
	return scst.ScopeBase
}

// PushNewScope pushes a scope onto the stack of scopes. A scope is constructed,
// including a symbol table for variable declarations.
func (scst *ScopeTree) PushNewScope(nm string) *Scope {
	scp := scst.ScopeTOS
	newsc := NewScope(nm, scp)
	if scp == nil { // the new scope is the global scope
		scst.ScopeBase = newsc // make new scope anchor
	}
	scst.ScopeTOS = newsc // new scope now TOS
	T().P("scope", newsc.Name).Debugf("pushing new scope")
	return newsc
}

// PushFunctionScope pushes the outermost scope of a function.
func (scst *ScopeTree) PushFunctionScope(nm string) *Scope {
	sc := scst.PushNewScope(nm)
	sc.Function = true
	return sc
}

// PopScope pops the top-most (recent) scope.
func (scst *ScopeTree) PopScope() *Scope {
	if scst.ScopeTOS == nil {
		panic("attempt to pop scope from empty stack")
	}
	sc := scst.ScopeTOS
	T().Debugf("popping scope [%s]", sc.Name)
	scst.ScopeTOS = scst.ScopeTOS.Parent
	return sc
}
