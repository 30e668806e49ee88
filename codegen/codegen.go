/*
Package codegen lowers ParaCL syntax trees to chunks of bytecode.

Code generation expects a tree which has passed semantic analysis: every
block and function node carries a scope, every call site is resolved. It
emits the code of the program, followed by a ret instruction, followed by
the code of every function body. Static calls, function addresses and return
addresses are recorded as relocations and patched once all function entries
are known.

Scopes

Entering a scope pushes a zero cell for each variable declared in the scope,
leaving it pops them again. Inner scopes stack on top of outer scopes, so the
slot of a variable is its position in its scope plus the number of slots of
all enclosing scopes of the same function. Variables are addressed relative to
the stack pointer register. Within a function, global variables are addressed
absolutely.

Functions

Every function yields a value: the value of its last statement if that is an
expression statement, otherwise 0. A return statement leaves the function
early with the value of its expression.

Errors

A tree which should have been rejected by semantic analysis (error nodes,
undeclared symbols, missing scopes) causes an *InternalError, signalling a
defect of the compiler rather than of the source program.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package codegen

import (
	"errors"
	"fmt"

	"github.com/ajlekcahdp4/paracl-interpreter-sub000/ast"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/builder"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/chunk"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/isa"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/sema"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paracl.codegen'.
func tracer() tracing.Trace {
	return tracing.Select("paracl.codegen")
}

// internalError is the panic payload for violated invariants during generation.
type internalError string

// InternalError is returned for defects of the compiler, as opposed to errors
// in the source program.
type InternalError struct {
	Msg  string
	Node ast.NodeID // node being generated when the defect was detected
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("codegen: internal error at node #%d: %s", e.Node, e.Msg)
}

// Compile analyses a tree and generates code for it. Source errors are
// returned as sema.Errors.
func Compile(tree *ast.Tree) (*chunk.Chunk, error) {
	info, err := sema.Analyze(tree)
	if err != nil {
		return nil, err
	}
	return Generate(tree, info)
}

// Generate lowers an analysed tree to a chunk.
func Generate(tree *ast.Tree, info *sema.Info) (c *chunk.Chunk, err error) {
	if tree == nil || info == nil {
		return nil, errors.New("codegen: tree and analysis are required")
	}
	g := newGenerator(tree, info)
	defer func() {
		if r := recover(); r != nil {
			msg, ok := r.(internalError)
			if !ok {
				panic(r)
			}
			c, err = nil, &InternalError{Msg: string(msg), Node: g.node}
			tracer().Errorf("%v", err)
		}
	}()
	g.program()
	g.functions()
	g.linker.link(g.b, g.consts)
	c = g.b.Chunk(g.consts.values)
	tracer().Infof("generated %v", c)
	return c, nil
}

type generator struct {
	tree   *ast.Tree
	info   *sema.Info
	b      *builder.Builder
	consts *constantPool
	linker *linker
	frames SlotFrameStack
	node   ast.NodeID // current node, for diagnostics
}

func newGenerator(tree *ast.Tree, info *sema.Info) *generator {
	return &generator{
		tree:   tree,
		info:   info,
		b:      builder.New(),
		consts: newConstantPool(),
		linker: newLinker(),
		node:   ast.NoNode,
	}
}

func (g *generator) program() {
	g.node = g.tree.Root
	g.block(g.tree.Root, "global")
	g.b.Emit(isa.Ret)
}

func (g *generator) functions() {
	for _, fn := range g.info.Funcs {
		g.function(fn)
	}
}

// --- Scopes ----------------------------------------------------------------

func (g *generator) enter(id ast.NodeID, name string) *SlotFrame {
	sf := g.frames.PushNewSlotFrame(name, g.info.Scope(id))
	for i := 0; i < sf.Size(); i++ {
		g.literal(0)
	}
	return sf
}

func (g *generator) leave() {
	sf := g.frames.PopSlotFrame()
	for i := 0; i < sf.Size(); i++ {
		g.b.Emit(isa.Pop)
	}
}

func (g *generator) block(id ast.NodeID, name string) {
	g.enter(id, name)
	for _, stmt := range g.tree.Node(id).Kids {
		g.stmt(stmt)
	}
	g.leave()
}

// --- Functions -------------------------------------------------------------

func (g *generator) function(fn *sema.Function) {
	g.node = fn.Node
	if fn.Scope == nil {
		panic(internalError(fmt.Sprintf("function %v has no scope", fn)))
	}
	g.linker.entries[fn.ID] = g.b.CurrentLoc()
	tracer().Debugf("function %v at 0x%04x", fn, int(g.b.CurrentLoc()))
	g.frames.PushNewSlotFrame("global", g.info.Global)
	g.frames.PushParamFrame(fn.String(), fn.Scope)
	body := g.tree.Node(fn.Node).Kid(0)
	g.enter(body, fmt.Sprintf("body#%d", body))
	stmts := g.tree.Node(body).Kids
	for i, stmt := range stmts {
		if i == len(stmts)-1 && g.tree.Node(stmt).Kind == ast.ExprStmt {
			g.expr(g.tree.Node(stmt).Kid(0), true)
			break
		}
		g.stmt(stmt)
		if i == len(stmts)-1 {
			g.literal(0)
		}
	}
	if len(stmts) == 0 {
		g.literal(0)
	}
	g.epilogue()
	g.frames.PopSlotFrame() // body, slots popped by epilogue
	g.frames.PopSlotFrame() // parameters
	g.frames.PopSlotFrame() // global
}

// epilogue returns from a function with the value on top of the stack.
func (g *generator) epilogue() {
	params := g.frames.FunctionFrame()
	if params == nil {
		panic(internalError("return outside of function"))
	}
	n := params.Scope.Symbols().Size()
	g.b.Emit(isa.MovLocalRel, int64(-(n + 3)))
	for i := g.frames.Depth() + n; i > 0; i-- {
		g.b.Emit(isa.Pop)
	}
	g.b.Emit(isa.PopSP)
	g.b.Emit(isa.JmpDynamic)
}

// --- Statements ------------------------------------------------------------

func (g *generator) stmt(id ast.NodeID) {
	g.node = id
	n := g.tree.Node(id)
	switch n.Kind {
	case ast.Block:
		g.block(id, fmt.Sprintf("block#%d", id))
	case ast.ExprStmt:
		g.expr(n.Kid(0), false)
	case ast.Print:
		g.expr(n.Kid(0), true)
		g.b.Emit(isa.Print)
	case ast.If:
		g.ifStmt(id, n)
	case ast.While:
		g.whileStmt(id, n)
	case ast.Return:
		g.expr(n.Kid(0), true)
		g.epilogue()
	default:
		panic(internalError(fmt.Sprintf("cannot generate statement %v", n)))
	}
}

func (g *generator) ifStmt(id ast.NodeID, n *ast.Node) {
	g.expr(n.Kid(0), true)
	jf := g.b.Emit(isa.JmpFalse, 0)
	g.block(n.Kid(1), fmt.Sprintf("then#%d", id))
	if els := n.Kid(2); els != ast.NoNode {
		j := g.b.Emit(isa.Jmp, 0)
		g.b.GetAs(isa.JmpFalse, jf).Set(0, int64(g.b.CurrentLoc()))
		g.block(els, fmt.Sprintf("else#%d", id))
		g.b.GetAs(isa.Jmp, j).Set(0, int64(g.b.CurrentLoc()))
		return
	}
	g.b.GetAs(isa.JmpFalse, jf).Set(0, int64(g.b.CurrentLoc()))
}

func (g *generator) whileStmt(id ast.NodeID, n *ast.Node) {
	start := g.b.CurrentLoc()
	g.expr(n.Kid(0), true)
	jf := g.b.Emit(isa.JmpFalse, 0)
	g.block(n.Kid(1), fmt.Sprintf("while#%d", id))
	g.b.Emit(isa.Jmp, int64(start))
	g.b.GetAs(isa.JmpFalse, jf).Set(0, int64(g.b.CurrentLoc()))
}
