package ast

import (
	"bytes"
	"testing"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func countdown() *Tree {
	t := NewTree()
	t.Program(
		t.ExprStmt(t.Assign(t.Const(3), "i")),
		t.While(
			t.Binary(Gt, t.Var("i"), t.Const(0)),
			t.Block(
				t.Print(t.Var("i")),
				t.ExprStmt(t.Assign(t.Binary(Sub, t.Var("i"), t.Const(1)), "i")),
			),
		),
	)
	return t
}

func TestBuildTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.ast")
	defer teardown()
	//
	tree := countdown()
	if err := tree.Check(); err != nil {
		t.Fatal(err)
	}
	root := tree.Node(tree.Root)
	if root.Kind != Block || len(root.Kids) != 2 {
		t.Fatalf("expected root block with 2 statements, have %v", root)
	}
	loop := tree.Node(root.Kid(1))
	if loop.Kind != While || tree.Node(loop.Kid(1)).Kind != Block {
		t.Errorf("expected while loop with body block, have %v", loop)
	}
	if root.Kid(2) != NoNode {
		t.Errorf("expected NoNode for missing child")
	}
	var vars []string
	tree.Walk(tree.Root, func(id NodeID, n *Node) bool {
		if n.Kind == Var {
			vars = append(vars, n.Name)
		}
		return true
	})
	if diff := cmp.Diff([]string{"i", "i", "i"}, vars); diff != "" {
		t.Errorf("variable references differ (-want +got):\n%s", diff)
	}
}

func TestCBORRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.ast")
	defer teardown()
	//
	tree := countdown()
	tree.At(tree.Root, paracl.Span{0, 42})
	var buf bytes.Buffer
	if err := Encode(&buf, tree); err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(tree, decoded); diff != "" {
		t.Errorf("tree changed by encoding (-want +got):\n%s", diff)
	}
}

func TestCheckRejectsMalformedTrees(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.ast")
	defer teardown()
	//
	noRoot := NewTree()
	noRoot.Block()
	if noRoot.Check() == nil {
		t.Errorf("expected tree without root to be rejected")
	}
	badKid := NewTree()
	badKid.Program(badKid.Add(Node{Kind: Print, Kids: []NodeID{17}}))
	if badKid.Check() == nil {
		t.Errorf("expected dangling child reference to be rejected")
	}
	shared := NewTree()
	c := shared.Const(1)
	shared.Program(shared.Print(c), shared.Add(Node{Kind: Print, Kids: []NodeID{c}}))
	if shared.Check() == nil {
		t.Errorf("expected shared child to be rejected")
	}
	arity := NewTree()
	arity.Program(arity.Add(Node{Kind: Binary, Op: Add, Kids: []NodeID{arity.Const(1)}}))
	if arity.Check() == nil {
		t.Errorf("expected binary node with one operand to be rejected")
	}
	body := NewTree()
	body.Program(body.While(body.Const(1), body.Print(body.Const(1))))
	if body.Check() == nil {
		t.Errorf("expected loop body which is not a block to be rejected")
	}
	if _, err := Decode(bytes.NewReader([]byte{0xff, 0x00})); err == nil {
		t.Errorf("expected garbage input to be rejected")
	}
}
