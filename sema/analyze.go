package sema

import (
	"fmt"

	"github.com/ajlekcahdp4/paracl-interpreter-sub000/ast"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/symtab"
	"github.com/emirpasic/gods/stacks/arraystack"
)

type analyzer struct {
	info   *Info
	tree   *ast.Tree
	scopes symtab.ScopeTree
	funcs  *arraystack.Stack // functions currently analysed, innermost on top
	errors Errors
}

// Analyze discovers scopes, functions and calls of a program. Source errors are
// returned as Errors, together with the (partial) Info.
func Analyze(tree *ast.Tree) (*Info, error) {
	if err := tree.Check(); err != nil {
		return nil, err
	}
	a := &analyzer{
		info:  newInfo(tree),
		tree:  tree,
		funcs: arraystack.New(),
	}
	a.collectFunctions()
	a.info.Global = a.block(tree.Root, "global")
	tracer().P("funcs", len(a.info.Funcs)).Infof("analysed program with %d nodes", tree.Size())
	if len(a.errors) > 0 {
		tracer().Errorf("%d error(s) in program", len(a.errors))
		return a.info, a.errors
	}
	return a.info, nil
}

func (a *analyzer) errorf(id ast.NodeID, format string, args ...interface{}) {
	e := &Error{Node: id, Span: a.tree.Node(id).Span, Msg: fmt.Sprintf(format, args...)}
	tracer().Debugf("error: %v", e)
	a.errors = append(a.errors, e)
}

// collectFunctions fills the function table and the global function namespace
// before any name is resolved, so that calls may precede definitions.
func (a *analyzer) collectFunctions() {
	a.tree.Walk(a.tree.Root, func(id ast.NodeID, n *ast.Node) bool {
		if n.Kind != ast.Func {
			return true
		}
		fn := &Function{
			ID:     FuncID(len(a.info.Funcs)),
			Name:   n.Name,
			Node:   id,
			Params: n.Names,
		}
		a.info.Funcs = append(a.info.Funcs, fn)
		a.info.ByNode[id] = fn
		if fn.Name != "" {
			if other, ok := a.info.Named[fn.Name]; ok {
				a.errorf(id, "function %s redefined, first defined at node #%d", fn.Name, other.Node)
			} else {
				a.info.Named[fn.Name] = fn
			}
		}
		return true
	})
}

func (a *analyzer) currentFunction() *Function {
	if fn, ok := a.funcs.Peek(); ok {
		return fn.(*Function)
	}
	return nil
}

// --- Statements ------------------------------------------------------------

func (a *analyzer) block(id ast.NodeID, name string) *symtab.Scope {
	sc := a.scopes.PushNewScope(name)
	a.info.Scopes[id] = sc
	for _, stmt := range a.tree.Node(id).Kids {
		a.stmt(stmt)
	}
	a.scopes.PopScope()
	return sc
}

func (a *analyzer) stmt(id ast.NodeID) {
	n := a.tree.Node(id)
	switch n.Kind {
	case ast.Block:
		a.block(id, fmt.Sprintf("block#%d", id))
	case ast.ExprStmt, ast.Print:
		a.expr(n.Kids[0])
	case ast.If:
		a.expr(n.Kids[0])
		a.block(n.Kids[1], fmt.Sprintf("then#%d", id))
		if len(n.Kids) > 2 {
			a.block(n.Kids[2], fmt.Sprintf("else#%d", id))
		}
	case ast.While:
		a.expr(n.Kids[0])
		a.block(n.Kids[1], fmt.Sprintf("while#%d", id))
	case ast.Return:
		if a.currentFunction() == nil {
			a.errorf(id, "return outside of function")
		}
		a.expr(n.Kids[0])
	case ast.Error:
		a.errorf(id, "syntax error: %s", n.Name)
	default:
		a.errorf(id, "%s is not a statement", n.Kind)
	}
}

// --- Expressions -----------------------------------------------------------

func (a *analyzer) expr(id ast.NodeID) {
	n := a.tree.Node(id)
	switch n.Kind {
	case ast.Const, ast.Read:
	case ast.Var:
		if sym, _ := a.scopes.Current().Resolve(n.Name); sym != nil {
			return
		}
		if fn, ok := a.info.Named[n.Name]; ok {
			a.info.FuncRefs[id] = fn.ID
			return
		}
		a.errorf(id, "undeclared variable %s", n.Name)
	case ast.Binary, ast.Unary:
		for _, kid := range n.Kids {
			a.expr(kid)
		}
	case ast.Assign:
		a.assign(id, n)
	case ast.Func:
		a.function(id, n)
	case ast.Call:
		a.call(id, n)
	case ast.Error:
		a.errorf(id, "syntax error: %s", n.Name)
	default:
		a.errorf(id, "%s is not an expression", n.Kind)
	}
}

func (a *analyzer) assign(id ast.NodeID, n *ast.Node) {
	a.expr(n.Kids[0])
	sc := a.scopes.Current()
	for _, target := range n.Names {
		if sym, _ := sc.Resolve(target); sym != nil {
			continue
		}
		if _, ok := a.info.Named[target]; ok {
			a.errorf(id, "cannot assign to function %s", target)
			continue
		}
		sym, _ := sc.Define(target)
		tracer().Debugf("declared %v in %v", sym, sc)
	}
}

func (a *analyzer) function(id ast.NodeID, n *ast.Node) {
	fn := a.info.ByNode[id]
	sc := a.scopes.PushFunctionScope(fmt.Sprintf("func#%d", id))
	a.info.Scopes[id] = sc
	fn.Scope = sc
	for _, p := range n.Names {
		if sc.Symbols().Resolve(p) != nil {
			a.errorf(id, "duplicate parameter %s", p)
			continue
		}
		sc.Symbols().Insert(symtab.NewSymbol(p).WithKind(symtab.Param))
	}
	a.funcs.Push(fn)
	a.block(n.Kids[0], fmt.Sprintf("body#%d", id))
	a.funcs.Pop()
	a.scopes.PopScope()
}

func (a *analyzer) call(id ast.NodeID, n *ast.Node) {
	for _, arg := range n.Kids {
		a.expr(arg)
	}
	if sym, _ := a.scopes.Current().Resolve(n.Name); sym != nil {
		a.info.Calls[id] = Call{Kind: Dynamic, Callee: NoFunc, Var: sym}
		return
	}
	fn, ok := a.info.Named[n.Name]
	if !ok {
		a.errorf(id, "unknown function %s", n.Name)
		return
	}
	if len(n.Kids) != fn.Arity() {
		a.errorf(id, "function %s expects %d argument(s), called with %d", n.Name, fn.Arity(), len(n.Kids))
		return
	}
	fn.Callers = append(fn.Callers, id)
	a.info.Calls[id] = Call{Kind: Static, Callee: fn.ID}
}
