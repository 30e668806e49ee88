package asm

import (
	"errors"
	"strings"
	"testing"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/ast"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/builder"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/chunk"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/codegen"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/disasm"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/isa"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/vm"
	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func sameChunk(t *testing.T, want, got *chunk.Chunk) {
	t.Helper()
	if diff := cmp.Diff(want.Code(), got.Code()); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Constants(), got.Constants()); diff != "" {
		t.Errorf("constants mismatch (-want +got):\n%s", diff)
	}
}

func TestLabels(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.asm")
	defer teardown()
	//
	src := `; count down from 3
.constant_pool
    0 = 3
    1 = 1
.code
    push_const 0      ; i
loop:
    push_local 0
    print
    push_local 0
    push_const 1
    sub
    mov_local 0
    push_local 0
    jmp_true loop
    pop
    ret
`
	c, err := Assemble(strings.NewReader(src), nil)
	if err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	m := vm.New(c, vm.WithOutput(&out), vm.ValidateStack(true))
	if err = m.Run(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "3\n2\n1\n" {
		t.Errorf("expected 3 2 1, have %q", out.String())
	}
}

func TestForwardLabelsAndConstants(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.asm")
	defer teardown()
	//
	src := `.constant_pool
    0 = 0
    1 = target
.code
0x0000  push_const 1
        jmp_dynamic
        jmp skip
target: jmp skip
skip:   ret
`
	c, err := Assemble(strings.NewReader(src), isa.ParaCL())
	if err != nil {
		t.Fatal(err)
	}
	b := builder.New()
	b.Emit(isa.PushConst, 1)
	b.Emit(isa.JmpDynamic)
	b.Emit(isa.Jmp, 16)
	b.Emit(isa.Jmp, 16)
	b.Emit(isa.Ret)
	sameChunk(t, b.Chunk([]paracl.Cell{0, 11}), c)
}

func TestDisassemblyRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.asm")
	defer teardown()
	//
	tree := ast.NewTree()
	tree.Program(
		tree.ExprStmt(tree.Func("sum", []string{"a", "b"}, tree.Block(
			tree.ExprStmt(tree.Binary(ast.Add, tree.Var("a"), tree.Var("b"))),
		))),
		tree.ExprStmt(tree.Assign(tree.Const(-5), "i")),
		tree.While(tree.Binary(ast.Ls, tree.Var("i"), tree.Const(4)), tree.Block(
			tree.ExprStmt(tree.Assign(tree.Call("sum", tree.Var("i"), tree.Const(3)), "i")),
			tree.Print(tree.Var("i")),
		)),
	)
	c, err := codegen.Compile(tree)
	if err != nil {
		t.Fatal(err)
	}
	var listing strings.Builder
	if err = disasm.Write(&listing, c, nil); err != nil {
		t.Fatal(err)
	}
	t.Logf("\n%s", listing.String())
	re, err := Assemble(strings.NewReader(listing.String()), nil)
	if err != nil {
		t.Fatal(err)
	}
	sameChunk(t, c, re)
}

func TestSourceErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.asm")
	defer teardown()
	//
	for _, x := range []struct {
		src  string
		line int
		msg  string
	}{
		{"push_const 0\n", 1, "outside of .constant_pool or .code"},
		{".data\n", 1, "unknown directive .data"},
		{".constant_pool\n 1 = 5\n", 2, "out of sequence"},
		{".constant_pool\n 0 = 3000000000\n", 2, "does not fit"},
		{".code\n  ret\n  frobnicate\n", 3, "unknown instruction frobnicate"},
		{".code\n  push_const\n", 2, "expected operand of push_const"},
		{".code\n  ret 1\n", 2, "expected end of line"},
		{".code\n  push_const -1\n", 2, "out of range"},
		{".code\n  jmp nowhere\n", 2, "undefined label nowhere"},
		{".code\nl:\nl: ret\n", 3, "label l redefined"},
		{".code\n0x0005 ret\n", 2, "does not match location"},
		{".code\n  ret $\n", 2, "unexpected character"},
		{".code\n  ret $", 2, "unexpected character"},
	} {
		_, err := Assemble(strings.NewReader(x.src), nil)
		var aerr *Error
		if !errors.As(err, &aerr) {
			t.Errorf("%q: expected assembler error, have %v", x.src, err)
			continue
		}
		if aerr.Line != x.line || !strings.Contains(aerr.Msg, x.msg) {
			t.Errorf("%q: expected error %q at line %d, have %v", x.src, x.msg, x.line, aerr)
		}
	}
}
