/*
Package ast defines the abstract syntax tree of ParaCL programs.

The tree is homogeneous: every node has the same structure, a kind tag
determines which of its fields are meaningful. Nodes live in an arena (a
Tree) and reference their children by index, never by pointer. Trees are
created by a front end and handed to the semantic analysis and the code
generator; between processes they travel CBOR-encoded (see Encode and Decode).

Node layout by kind:

    Block     Kids: statements
    ExprStmt  Kids: expression            value is discarded
    Print     Kids: expression
    If        Kids: condition, then-block [, else-block]
    While     Kids: condition, body-block
    Return    Kids: expression
    Assign    Names: targets, Kids: value   'a = b = 5' has Names [a b]
    Var       Name
    Const     Value
    Binary    Op, Kids: left, right
    Unary     Op, Kids: operand
    Read      (no fields)                 reads an integer from input
    Func      Name (optional), Names: parameters, Kids: body-block
    Call      Name: callee, Kids: arguments
    Error     Name: diagnostic message

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ast

import (
	"fmt"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paracl.ast'.
func tracer() tracing.Trace {
	return tracing.Select("paracl.ast")
}

// NodeID addresses a node within its tree.
type NodeID int32

// NoNode is the null node reference.
const NoNode NodeID = -1

// Kind is the type tag of a node.
type Kind uint8

// Node kinds.
const (
	Error Kind = iota
	Block
	ExprStmt
	Print
	If
	While
	Return
	Assign
	Var
	Const
	Binary
	Unary
	Read
	Func
	Call
)

var kindNames = [...]string{"Error", "Block", "ExprStmt", "Print", "If", "While", "Return",
	"Assign", "Var", "Const", "Binary", "Unary", "Read", "Func", "Call"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsStatement is a predicate: is a node of kind k a statement?
func (k Kind) IsStatement() bool {
	switch k {
	case Block, ExprStmt, Print, If, While, Return:
		return true
	}
	return false
}

// Op is an operator of a Binary or Unary node.
type Op uint8

// Operators.
const (
	NoOp Op = iota
	Add
	Sub
	Mul
	Div
	Mod
	Eq
	Ne
	Gt
	Ls
	Ge
	Le
	And
	Or
	Neg  // unary
	Not  // unary
	Plus // unary
)

var opNames = [...]string{"", "+", "-", "*", "/", "%", "==", "!=", ">", "<", ">=", "<=",
	"&&", "||", "-", "!", "+"}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", op)
}

// IsUnary is a predicate: is op a unary operator?
func (op Op) IsUnary() bool {
	return op == Neg || op == Not || op == Plus
}

// Node is a node of the syntax tree.
type Node struct {
	Kind  Kind        `cbor:"1,keyasint"`
	Op    Op          `cbor:"2,keyasint,omitempty"`
	Name  string      `cbor:"3,keyasint,omitempty"`
	Names []string    `cbor:"4,keyasint,omitempty"`
	Value paracl.Cell `cbor:"5,keyasint,omitempty"`
	Kids  []NodeID    `cbor:"6,keyasint,omitempty"`
	Span  paracl.Span `cbor:"7,keyasint,omitempty"`
}

// Kid returns child i of a node, or NoNode if there is no such child.
func (n *Node) Kid(i int) NodeID {
	if i < 0 || i >= len(n.Kids) {
		return NoNode
	}
	return n.Kids[i]
}

func (n *Node) String() string {
	switch n.Kind {
	case Var, Call, Error:
		return fmt.Sprintf("(%s %s)", n.Kind, n.Name)
	case Const:
		return fmt.Sprintf("(%s %d)", n.Kind, n.Value)
	case Binary, Unary:
		return fmt.Sprintf("(%s %s)", n.Kind, n.Op)
	case Assign:
		return fmt.Sprintf("(%s %v)", n.Kind, n.Names)
	case Func:
		return fmt.Sprintf("(%s %s %v)", n.Kind, n.Name, n.Names)
	}
	return fmt.Sprintf("(%s)", n.Kind)
}

// Tree is an arena of nodes. The zero value is an empty tree without a root.
type Tree struct {
	Nodes []Node `cbor:"1,keyasint"`
	Root  NodeID `cbor:"2,keyasint"`
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{Root: NoNode}
}

// Node returns the node with the given ID. It panics if id is not a node of t.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.Nodes) {
		panic(fmt.Sprintf("ast: node #%d is not a node of tree with %d nodes", id, len(t.Nodes)))
	}
	return &t.Nodes[id]
}

// Size returns the number of nodes in the arena.
func (t *Tree) Size() int {
	return len(t.Nodes)
}

// Add appends a node to the arena and returns its ID.
func (t *Tree) Add(n Node) NodeID {
	t.Nodes = append(t.Nodes, n)
	return NodeID(len(t.Nodes) - 1)
}

// Walk traverses the subtree at id in depth-first pre-order. If f returns false,
// the children of the node are skipped.
func (t *Tree) Walk(id NodeID, f func(NodeID, *Node) bool) {
	if id == NoNode {
		return
	}
	n := t.Node(id)
	if !f(id, n) {
		return
	}
	for _, kid := range n.Kids {
		t.Walk(kid, f)
	}
}
