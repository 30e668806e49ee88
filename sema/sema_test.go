package sema

import (
	"errors"
	"strings"
	"testing"

	"github.com/ajlekcahdp4/paracl-interpreter-sub000/ast"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/symtab"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestDeclarations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.sema")
	defer teardown()
	//
	tree := ast.NewTree()
	body := tree.Block(
		tree.ExprStmt(tree.Assign(tree.Binary(ast.Sub, tree.Var("x"), tree.Const(1)), "x")),
		tree.ExprStmt(tree.Assign(tree.Var("x"), "y", "z")),
	)
	tree.Program(
		tree.ExprStmt(tree.Assign(tree.Const(3), "x")),
		tree.While(tree.Var("x"), body),
	)
	info, err := Analyze(tree)
	if err != nil {
		t.Fatal(err)
	}
	global := info.Scope(tree.Root)
	if global != info.Global || global.Symbols().Size() != 1 {
		t.Errorf("expected exactly x in global scope, have %d symbols", global.Symbols().Size())
	}
	loop := info.Scope(body)
	if loop == nil || loop.Symbols().Size() != 2 {
		t.Fatalf("expected y and z in loop scope")
	}
	if loop.Symbols().Resolve("x") != nil {
		t.Errorf("x must not be redeclared in loop scope")
	}
	syms := loop.Symbols().Symbols()
	if syms[0].Name() != "y" || syms[1].Name() != "z" {
		t.Errorf("expected declaration order y, z, have %v", syms)
	}
}

func TestFunctionsAndCalls(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.sema")
	defer teardown()
	//
	tree := ast.NewTree()
	// call precedes definition
	early := tree.Call("sum", tree.Const(1), tree.Const(2))
	fbody := tree.Block(
		tree.ExprStmt(tree.Assign(tree.Binary(ast.Add, tree.Var("a"), tree.Var("b")), "s")),
		tree.ExprStmt(tree.Binary(ast.Add, tree.Var("s"), tree.Var("g"))),
	)
	def := tree.Func("sum", []string{"a", "b"}, fbody)
	dyn := tree.Call("f", tree.Const(1), tree.Const(2))
	ref := tree.Var("sum")
	tree.Program(
		tree.ExprStmt(tree.Assign(tree.Const(10), "g")),
		tree.Print(early),
		tree.ExprStmt(tree.Assign(def, "f")),
		tree.Print(dyn),
		tree.ExprStmt(tree.Assign(ref, "h")),
	)
	info, err := Analyze(tree)
	if err != nil {
		t.Fatal(err)
	}
	if len(info.Funcs) != 1 {
		t.Fatalf("expected 1 function, have %d", len(info.Funcs))
	}
	fn := info.Funcs[0]
	if info.Named["sum"] != fn || info.ByNode[def] != fn || fn.Arity() != 2 {
		t.Errorf("function table incomplete: %v", fn)
	}
	if fn.Scope == nil || !fn.Scope.Function || fn.Scope.Symbols().Count(symtab.Param) != 2 {
		t.Errorf("expected function scope with 2 parameters")
	}
	if c := info.Calls[early]; c.Kind != Static || c.Callee != fn.ID {
		t.Errorf("expected static call of sum, have %v", c)
	}
	if c := info.Calls[dyn]; c.Kind != Dynamic || c.Var == nil || c.Var.Name() != "f" {
		t.Errorf("expected dynamic call through f, have %v", c)
	}
	if len(fn.Callers) != 1 || fn.Callers[0] != early {
		t.Errorf("expected one static caller, have %v", fn.Callers)
	}
	if info.FuncRefs[ref] != fn.ID {
		t.Errorf("expected reference to named function sum")
	}
	if sc := info.Scope(fbody); sc == nil || sc.Symbols().Resolve("s") == nil {
		t.Errorf("expected local s in function body scope")
	}
}

func TestSourceErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.sema")
	defer teardown()
	//
	tree := ast.NewTree()
	local := tree.Block(tree.ExprStmt(tree.Assign(tree.Const(1), "hidden")),
		tree.ExprStmt(tree.Func("peek", nil, tree.Block(tree.Print(tree.Var("hidden"))))))
	tree.Program(
		tree.Print(tree.Var("nowhere")),
		tree.ExprStmt(tree.Call("nofunc")),
		tree.ExprStmt(tree.Func("one", []string{"x"}, tree.Block(tree.Return(tree.Var("x"))))),
		tree.ExprStmt(tree.Call("one", tree.Const(1), tree.Const(2))),
		tree.ExprStmt(tree.Func("one", nil, tree.Block())),
		tree.ExprStmt(tree.Assign(tree.Const(1), "one")),
		tree.Return(tree.Const(0)),
		tree.ErrorNode("unexpected token"),
		local,
	)
	_, err := Analyze(tree)
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected source errors, have %v", err)
	}
	msg := err.Error()
	for _, expected := range []string{
		"undeclared variable nowhere",
		"unknown function nofunc",
		"expects 1 argument(s), called with 2",
		"function one redefined",
		"cannot assign to function one",
		"return outside of function",
		"syntax error: unexpected token",
		"undeclared variable hidden",
	} {
		if !strings.Contains(msg, expected) {
			t.Errorf("expected error %q, have\n%s", expected, msg)
		}
	}
}
