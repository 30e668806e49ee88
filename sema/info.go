/*
Package sema discovers scopes and functions of a ParaCL program.

Analysis attaches a scope to every block and function node of a syntax tree,
declares variables, collects all function definitions into a function table
and resolves every call site, building a call graph. The result is an Info,
which is the input of the code generator alongside the tree.

Variables are declared by their first assignment, in the innermost scope
where the name is not visible already. Inside function bodies, only the
function's own scopes and the global scope are visible. Named functions live
in a global namespace of their own: they may be called before they are
defined and may call themselves recursively.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sema

import (
	"fmt"
	"strings"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/ast"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/symtab"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paracl.sema'.
func tracer() tracing.Trace {
	return tracing.Select("paracl.sema")
}

// FuncID identifies a function within an Info.
type FuncID int

// NoFunc is the null function reference.
const NoFunc FuncID = -1

// Function is an entry of the function table.
type Function struct {
	ID      FuncID
	Name    string        // empty for anonymous functions
	Node    ast.NodeID    // the Func node
	Params  []string      // parameter names
	Scope   *symtab.Scope // function scope, holding the parameters
	Callers []ast.NodeID  // static call sites
}

// Arity returns the number of parameters of a function.
func (f *Function) Arity() int {
	return len(f.Params)
}

func (f *Function) String() string {
	name := f.Name
	if name == "" {
		name = fmt.Sprintf("λ#%d", f.ID)
	}
	return fmt.Sprintf("<func %s/%d>", name, len(f.Params))
}

// CallKind tells how a call site reaches its callee.
type CallKind int8

// Kinds of calls.
const (
	Static  CallKind = iota // named function, known at compile time
	Dynamic                 // function value held by a variable
)

// Call is the resolution of a call site.
type Call struct {
	Kind   CallKind
	Callee FuncID         // for static calls
	Var    *symtab.Symbol // for dynamic calls
}

// Info is the result of analysing a tree.
type Info struct {
	Tree     *ast.Tree
	Global   *symtab.Scope
	Scopes   map[ast.NodeID]*symtab.Scope // scopes of Block and Func nodes
	Funcs    []*Function                  // function table, in order of definition
	ByNode   map[ast.NodeID]*Function     // function of a Func node
	Named    map[string]*Function         // global function namespace
	Calls    map[ast.NodeID]Call          // call graph: call site → callee
	FuncRefs map[ast.NodeID]FuncID        // Var nodes denoting a named function
}

func newInfo(tree *ast.Tree) *Info {
	return &Info{
		Tree:     tree,
		Scopes:   make(map[ast.NodeID]*symtab.Scope),
		ByNode:   make(map[ast.NodeID]*Function),
		Named:    make(map[string]*Function),
		Calls:    make(map[ast.NodeID]Call),
		FuncRefs: make(map[ast.NodeID]FuncID),
	}
}

// Func returns the function with the given ID, or nil.
func (info *Info) Func(id FuncID) *Function {
	if id < 0 || int(id) >= len(info.Funcs) {
		return nil
	}
	return info.Funcs[id]
}

// Scope returns the scope attached to a block or function node, or nil.
func (info *Info) Scope(id ast.NodeID) *symtab.Scope {
	return info.Scopes[id]
}

// --- Errors ----------------------------------------------------------------

// Error is an error in a source program, detected by analysis.
type Error struct {
	Node ast.NodeID
	Span paracl.Span
	Msg  string
}

func (e *Error) Error() string {
	if e.Span.IsNull() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

// Errors is a list of source errors.
type Errors []*Error

func (errs Errors) Error() string {
	var b strings.Builder
	for i, e := range errs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}
