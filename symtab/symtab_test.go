package symtab

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestNewSymTab(t *testing.T) {
	symtab := NewSymbolTable()
	if symtab == nil || symtab.Size() != 0 {
		t.Error("no empty symbol table created")
	}
}

func TestNewSymbol(t *testing.T) {
	symtab := NewSymbolTable()
	sym, _ := symtab.Define("new-sym")
	if sym == nil {
		t.Fatal("no symbol created for table")
	}
	sym.UData = 5
	if sym.UData != 5 {
		t.Errorf("UData does not work")
	}
	if sym, _ := symtab.Define(""); sym != nil {
		t.Errorf("symbol with empty name should not be created")
	}
}

func TestDeclarationOrder(t *testing.T) {
	symtab := NewSymbolTable()
	for _, nm := range []string{"c", "a", "b"} {
		symtab.Define(nm)
	}
	symtab.Insert(NewSymbol("p").WithKind(Param))
	var names []string
	symtab.Each(func(nm string, sym *Symbol) {
		names = append(names, nm)
		if sym.Index != len(names)-1 {
			t.Errorf("symbol %v has index %d, expected %d", sym, sym.Index, len(names)-1)
		}
	})
	if len(names) != 4 || names[0] != "c" || names[1] != "a" || names[3] != "p" {
		t.Errorf("symbols not in declaration order: %v", names)
	}
	if symtab.Count(Param) != 1 || symtab.Count(Variable) != 3 {
		t.Errorf("expected 3 variables and 1 parameter")
	}
}

func TestResolveOrDefine(t *testing.T) {
	symtab := NewSymbolTable()
	sym, _ := symtab.Define("new-sym")
	if s, found := symtab.ResolveOrDefine(sym.Name()); !found || s != sym {
		t.Error("cannot find stored symbol in table")
	}
	if _, found := symtab.ResolveOrDefine("other"); found {
		t.Error("new symbol reported as found")
	}
	if symtab.Size() != 2 {
		t.Errorf("expected 2 symbols, have %d", symtab.Size())
	}
}

func TestRedefine(t *testing.T) {
	symtab := NewSymbolTable()
	symtab.Define("first")
	sym, _ := symtab.Define("new-sym")
	sym2, old := symtab.Define("new-sym")
	if old != sym {
		t.Error("symbol should have been replaced")
	}
	if sym2.Index != 1 || symtab.Size() != 2 {
		t.Errorf("redefinition should keep the position, have index %d", sym2.Index)
	}
}

func TestScopeUpsearch(t *testing.T) {
	scopep := NewScope("parent", nil)
	scope := NewScope("current", scopep)
	scopep.Define("new-sym")
	if sym, sc := scope.Resolve("new-sym"); sym == nil || sc != scopep {
		t.Errorf("expected to find symbol in parent scope")
	}
}

func TestFunctionBoundary(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.symtab")
	defer teardown()
	//
	tree := &ScopeTree{}
	global := tree.PushNewScope("global")
	global.Define("g")
	block := tree.PushNewScope("block")
	block.Define("hidden")
	fn := tree.PushFunctionScope("f")
	fn.Define("x")
	body := tree.PushNewScope("body")
	if sym, sc := body.Resolve("x"); sym == nil || sc != fn {
		t.Errorf("expected parameter x to be visible in function body")
	}
	if sym, sc := body.Resolve("g"); sym == nil || sc != global {
		t.Errorf("expected global g to be visible in function body")
	}
	if sym, _ := body.Resolve("hidden"); sym != nil {
		t.Errorf("expected local variable of enclosing block to be invisible in function")
	}
	if body.FunctionScope() != fn || block.FunctionScope() != nil {
		t.Errorf("function scope not found")
	}
	if tree.PopScope() != body || tree.PopScope() != fn || tree.Current() != block {
		t.Errorf("scope stack out of order")
	}
	tree.PopScope()
	tree.PopScope()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected pop from empty stack to panic")
		}
	}()
	tree.PopScope()
}
