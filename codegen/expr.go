package codegen

import (
	"fmt"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/ast"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/isa"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/sema"
)

var binaryOps = map[ast.Op]*isa.Descriptor{
	ast.Add: isa.Add,
	ast.Sub: isa.Sub,
	ast.Mul: isa.Mul,
	ast.Div: isa.Div,
	ast.Mod: isa.Mod,
	ast.Eq:  isa.CmpEq,
	ast.Ne:  isa.CmpNe,
	ast.Gt:  isa.CmpGt,
	ast.Ls:  isa.CmpLs,
	ast.Ge:  isa.CmpGe,
	ast.Le:  isa.CmpLe,
	ast.And: isa.And,
	ast.Or:  isa.Or,
}

// expr generates an expression. If the value is not used, it does not remain
// on the stack.
func (g *generator) expr(id ast.NodeID, used bool) {
	n := g.tree.Node(id)
	if n.Kind == ast.Assign {
		g.node = id
		g.assign(n, used)
		return
	}
	g.value(id)
	if !used {
		g.b.Emit(isa.Pop)
	}
}

// value generates an expression, leaving its value on top of the stack.
func (g *generator) value(id ast.NodeID) {
	g.node = id
	n := g.tree.Node(id)
	switch n.Kind {
	case ast.Const:
		g.literal(n.Value)
	case ast.Var:
		if fn, ok := g.info.FuncRefs[id]; ok {
			g.funcAddr(fn)
			return
		}
		g.load(n.Name)
	case ast.Binary:
		op, ok := binaryOps[n.Op]
		if !ok {
			panic(internalError(fmt.Sprintf("invalid binary operator %v", n.Op)))
		}
		g.value(n.Kid(0))
		g.value(n.Kid(1))
		g.b.Emit(op)
	case ast.Unary:
		g.value(n.Kid(0))
		switch n.Op {
		case ast.Plus:
		case ast.Neg:
			g.b.Emit(isa.Neg)
		case ast.Not:
			g.b.Emit(isa.Not)
		default:
			panic(internalError(fmt.Sprintf("invalid unary operator %v", n.Op)))
		}
	case ast.Read:
		g.b.Emit(isa.Read)
	case ast.Assign:
		g.assign(n, true)
	case ast.Func:
		fn := g.info.ByNode[id]
		if fn == nil {
			panic(internalError("function missing from function table"))
		}
		g.funcAddr(fn.ID)
	case ast.Call:
		g.call(id, n)
	default:
		panic(internalError(fmt.Sprintf("cannot generate expression %v", n)))
	}
}

// assign stores the value into every target, right to left, republishing it
// for the next target. The value is left on the stack for the leftmost target
// only if the assignment is used as an expression.
func (g *generator) assign(n *ast.Node, used bool) {
	g.value(n.Kid(0))
	for i := len(n.Names) - 1; i >= 0; i-- {
		g.store(n.Names[i])
		if i > 0 || used {
			g.load(n.Names[i])
		}
	}
}

func (g *generator) resolve(name string) slot {
	s, ok := g.frames.Resolve(name)
	if !ok {
		panic(internalError(fmt.Sprintf("undeclared symbol %s", name)))
	}
	return s
}

func (g *generator) load(name string) {
	s := g.resolve(name)
	if s.mode == absolute {
		g.b.Emit(isa.PushLocal, int64(s.offset))
		return
	}
	g.b.Emit(isa.PushLocalRel, int64(s.offset))
}

func (g *generator) store(name string) {
	s := g.resolve(name)
	if s.mode == absolute {
		g.b.Emit(isa.MovLocal, int64(s.offset))
		return
	}
	g.b.Emit(isa.MovLocalRel, int64(s.offset))
}

// funcAddr pushes the entry location of a function, from a constant which is
// set when linking.
func (g *generator) funcAddr(fn sema.FuncID) {
	k, ok := g.linker.funcAddr[fn]
	if !ok {
		k = g.consts.reserve()
		g.linker.funcAddr[fn] = k
		g.linker.add(&relocation{kind: relocFuncAddr, slot: k, fn: fn})
	}
	g.b.Emit(isa.PushConst, int64(k))
}

// call generates a call sequence. After the callee returns, its value is on
// top of the stack.
func (g *generator) call(id ast.NodeID, n *ast.Node) {
	c, ok := g.info.Calls[id]
	if !ok {
		panic(internalError(fmt.Sprintf("unresolved call of %s", n.Name)))
	}
	g.literal(0) // return value
	k := g.consts.reserve()
	ret := g.linker.add(&relocation{kind: relocRetAddr, slot: k, target: -1})
	g.b.Emit(isa.PushConst, int64(k)) // return address
	g.b.Emit(isa.PushSP)
	for _, arg := range n.Kids {
		g.value(arg)
	}
	g.node = id
	switch c.Kind {
	case sema.Static:
		g.b.Emit(isa.SetupFrame, 0)
		site := g.b.Emit(isa.Jmp, 0)
		g.linker.add(&relocation{kind: relocCall, site: site, fn: c.Callee})
	case sema.Dynamic:
		g.load(n.Name)
		g.b.Emit(isa.SetupFrame, 1)
		g.b.Emit(isa.JmpDynamic)
	}
	ret.target = g.b.CurrentLoc()
}

// literal is a shortcut for pushing a constant value.
func (g *generator) literal(v paracl.Cell) {
	g.b.Emit(isa.PushConst, int64(g.consts.literal(v)))
}
