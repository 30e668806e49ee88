package ast

import (
	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
)

// Constructors for nodes. Each of them adds a node to the tree and returns its ID.

// Program creates a block from statements and makes it the root of the tree.
func (t *Tree) Program(stmts ...NodeID) NodeID {
	t.Root = t.Block(stmts...)
	return t.Root
}

// Block creates a block of statements.
func (t *Tree) Block(stmts ...NodeID) NodeID {
	return t.Add(Node{Kind: Block, Kids: stmts})
}

// ExprStmt creates a statement evaluating an expression for its side effects.
func (t *Tree) ExprStmt(e NodeID) NodeID {
	return t.Add(Node{Kind: ExprStmt, Kids: []NodeID{e}})
}

// Print creates a print statement.
func (t *Tree) Print(e NodeID) NodeID {
	return t.Add(Node{Kind: Print, Kids: []NodeID{e}})
}

// If creates a conditional statement. els may be NoNode.
func (t *Tree) If(cond, then, els NodeID) NodeID {
	kids := []NodeID{cond, then}
	if els != NoNode {
		kids = append(kids, els)
	}
	return t.Add(Node{Kind: If, Kids: kids})
}

// While creates a loop.
func (t *Tree) While(cond, body NodeID) NodeID {
	return t.Add(Node{Kind: While, Kids: []NodeID{cond, body}})
}

// Return creates a return statement.
func (t *Tree) Return(e NodeID) NodeID {
	return t.Add(Node{Kind: Return, Kids: []NodeID{e}})
}

// Assign creates an assignment of value to one or more targets. Targets are
// listed left to right: 'a = b = 1' is Assign(Const(1), "a", "b").
func (t *Tree) Assign(value NodeID, targets ...string) NodeID {
	return t.Add(Node{Kind: Assign, Names: targets, Kids: []NodeID{value}})
}

// Var creates a variable reference.
func (t *Tree) Var(name string) NodeID {
	return t.Add(Node{Kind: Var, Name: name})
}

// Const creates an integer literal.
func (t *Tree) Const(v paracl.Cell) NodeID {
	return t.Add(Node{Kind: Const, Value: v})
}

// Binary creates a binary operation.
func (t *Tree) Binary(op Op, left, right NodeID) NodeID {
	return t.Add(Node{Kind: Binary, Op: op, Kids: []NodeID{left, right}})
}

// Unary creates a unary operation.
func (t *Tree) Unary(op Op, e NodeID) NodeID {
	return t.Add(Node{Kind: Unary, Op: op, Kids: []NodeID{e}})
}

// Read creates an input expression ('?').
func (t *Tree) Read() NodeID {
	return t.Add(Node{Kind: Read})
}

// Func creates a function definition. Named functions are callable by name from
// everywhere in the program; every function definition is also an expression
// yielding the function as a value. name may be empty.
func (t *Tree) Func(name string, params []string, body NodeID) NodeID {
	return t.Add(Node{Kind: Func, Name: name, Names: params, Kids: []NodeID{body}})
}

// Call creates a call of a named function or of a function value held by a
// variable.
func (t *Tree) Call(callee string, args ...NodeID) NodeID {
	return t.Add(Node{Kind: Call, Name: callee, Kids: args})
}

// ErrorNode creates a placeholder for a syntactically broken part of a program.
func (t *Tree) ErrorNode(msg string) NodeID {
	return t.Add(Node{Kind: Error, Name: msg})
}

// At sets the source span of a node and returns the node's ID.
func (t *Tree) At(id NodeID, span paracl.Span) NodeID {
	t.Node(id).Span = span
	return id
}
