package ast

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ast: cannot create CBOR encoding mode: %v", err))
	}
	encMode = em
}

// Encode writes a tree to w in CBOR format.
func Encode(w io.Writer, t *Tree) error {
	data, err := encMode.Marshal(t)
	if err != nil {
		return fmt.Errorf("ast: encode tree: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Decode reads a CBOR-encoded tree from r and checks its structure.
func Decode(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	t := &Tree{}
	if err = cbor.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("ast: decode tree: %w", err)
	}
	if err = t.Check(); err != nil {
		tracer().Errorf("%v", err)
		return nil, err
	}
	tracer().Debugf("decoded tree with %d nodes", len(t.Nodes))
	return t, nil
}

// Check verifies the structure of a tree: the root is a block, every child
// reference is in range, no node is shared, and every node has the children
// its kind requires. It does not check names, which is the job of semantic
// analysis.
func (t *Tree) Check() error {
	if t.Root < 0 || int(t.Root) >= len(t.Nodes) {
		return fmt.Errorf("ast: root #%d out of range", t.Root)
	}
	if t.Nodes[t.Root].Kind != Block {
		return fmt.Errorf("ast: root is %s, not a block", t.Nodes[t.Root].Kind)
	}
	parent := make([]NodeID, len(t.Nodes))
	for i := range parent {
		parent[i] = NoNode
	}
	for i := range t.Nodes {
		n := &t.Nodes[i]
		for _, kid := range n.Kids {
			if kid < 0 || int(kid) >= len(t.Nodes) || int(kid) == i {
				return fmt.Errorf("ast: node #%d %v has invalid child #%d", i, n, kid)
			}
			if parent[kid] != NoNode {
				return fmt.Errorf("ast: node #%d is a child of both #%d and #%d", kid, parent[kid], i)
			}
			parent[kid] = NodeID(i)
		}
		if err := t.checkArity(NodeID(i), n); err != nil {
			return err
		}
	}
	if parent[t.Root] != NoNode {
		return fmt.Errorf("ast: root #%d has a parent", t.Root)
	}
	return nil
}

func (t *Tree) checkArity(id NodeID, n *Node) error {
	lo, hi := 0, -1
	switch n.Kind {
	case ExprStmt, Print, Return, Unary:
		lo, hi = 1, 1
	case If:
		lo, hi = 2, 3
	case While, Binary:
		lo, hi = 2, 2
	case Assign:
		lo, hi = 1, 1
		if len(n.Names) == 0 {
			return fmt.Errorf("ast: assignment #%d without target", id)
		}
	case Func:
		lo, hi = 1, 1
	case Var, Const, Read, Error:
		hi = 0
	case Block, Call:
	default:
		return fmt.Errorf("ast: node #%d has unknown kind %d", id, n.Kind)
	}
	if len(n.Kids) < lo || (hi >= 0 && len(n.Kids) > hi) {
		return fmt.Errorf("ast: node #%d %v has %d children", id, n, len(n.Kids))
	}
	switch n.Kind {
	case If, While:
		for _, body := range n.Kids[1:] {
			if t.Nodes[body].Kind != Block {
				return fmt.Errorf("ast: body of node #%d %v is not a block", id, n)
			}
		}
	case Func:
		if t.Nodes[n.Kids[0]].Kind != Block {
			return fmt.Errorf("ast: body of function #%d is not a block", id)
		}
	}
	return nil
}
