package vm

import (
	"fmt"
	"sync"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/isa"
)

// Action executes a decoded instruction on an execution context. When an action
// is called, the instruction pointer already points to the following instruction.
type Action func(*Context, isa.Instruction) error

// Definition pairs an instruction descriptor with its executable action.
type Definition struct {
	Desc *isa.Descriptor
	Exec Action
}

// InstructionSet is a dispatch table for the virtual machine, indexed by
// opcode byte.
type InstructionSet struct {
	table   *isa.Table
	actions [256]Action
}

// NewInstructionSet creates a dispatch table from a list of definitions.
// It is an error to register two instructions with the same opcode, an instruction
// with an empty name, or an instruction without an action.
func NewInstructionSet(defs ...Definition) (*InstructionSet, error) {
	descs := make([]*isa.Descriptor, len(defs))
	for i, def := range defs {
		descs[i] = def.Desc
	}
	table, err := isa.NewTable(descs...)
	if err != nil {
		return nil, err
	}
	set := &InstructionSet{table: table}
	for _, def := range defs {
		if def.Exec == nil {
			return nil, fmt.Errorf("vm: instruction %q has no action", def.Desc.Name())
		}
		set.actions[def.Desc.Opcode()] = def.Exec
	}
	return set, nil
}

// Table returns the descriptor table of the instruction set, suitable for
// disassembling code for it.
func (set *InstructionSet) Table() *isa.Table {
	return set.table
}

func (set *InstructionSet) lookup(opcode byte) (*isa.Descriptor, Action) {
	d, err := set.table.Lookup(opcode)
	if err != nil {
		return nil, nil
	}
	return d, set.actions[opcode]
}

var paraclSet *InstructionSet
var paraclOnce sync.Once // monitors one-time creation of the ParaCL instruction set

// ParaCL returns the instruction set of the ParaCL machine. It is created once
// and is read-only afterwards.
func ParaCL() *InstructionSet {
	paraclOnce.Do(func() {
		var err error
		paraclSet, err = NewInstructionSet(paraclDefinitions()...)
		if err != nil {
			panic("cannot create ParaCL instruction set: " + err.Error())
		}
	})
	return paraclSet
}

func paraclDefinitions() []Definition {
	return []Definition{
		{isa.PushConst, pushConst},
		{isa.Pop, pop},
		{isa.PushLocal, pushLocal},
		{isa.MovLocal, movLocal},
		{isa.PushLocalRel, pushLocalRel},
		{isa.MovLocalRel, movLocalRel},
		{isa.PushSP, pushSP},
		{isa.PopSP, popSP},
		{isa.SetupFrame, setupFrame},
		{isa.Add, binary(func(a, b paracl.Cell) (paracl.Cell, error) { return a + b, nil })},
		{isa.Sub, binary(func(a, b paracl.Cell) (paracl.Cell, error) { return a - b, nil })},
		{isa.Mul, binary(func(a, b paracl.Cell) (paracl.Cell, error) { return a * b, nil })},
		{isa.Div, binary(divide)},
		{isa.Mod, binary(modulo)},
		{isa.Neg, unary(func(a paracl.Cell) paracl.Cell { return -a })},
		{isa.CmpEq, compare(func(a, b paracl.Cell) bool { return a == b })},
		{isa.CmpNe, compare(func(a, b paracl.Cell) bool { return a != b })},
		{isa.CmpGt, compare(func(a, b paracl.Cell) bool { return a > b })},
		{isa.CmpLs, compare(func(a, b paracl.Cell) bool { return a < b })},
		{isa.CmpGe, compare(func(a, b paracl.Cell) bool { return a >= b })},
		{isa.CmpLe, compare(func(a, b paracl.Cell) bool { return a <= b })},
		{isa.And, compare(func(a, b paracl.Cell) bool { return a != 0 && b != 0 })},
		{isa.Or, compare(func(a, b paracl.Cell) bool { return a != 0 || b != 0 })},
		{isa.Not, unary(func(a paracl.Cell) paracl.Cell { return boolCell(a == 0) })},
		{isa.Jmp, jmp},
		{isa.JmpTrue, jmpIf(true)},
		{isa.JmpFalse, jmpIf(false)},
		{isa.JmpDynamic, jmpDynamic},
		{isa.Print, printCell},
		{isa.Read, readCell},
		{isa.Ret, ret},
	}
}

// --- Actions --------------------------------------------------------------

func pushConst(ctx *Context, ins isa.Instruction) error {
	v, err := ctx.Constant(int(ins.Attr(0)))
	if err != nil {
		return err
	}
	ctx.Push(v)
	return nil
}

func pop(ctx *Context, ins isa.Instruction) error {
	_, err := ctx.Pop()
	return err
}

func pushLocal(ctx *Context, ins isa.Instruction) error {
	v, err := ctx.Local(int(ins.Attr(0)))
	if err != nil {
		return err
	}
	ctx.Push(v)
	return nil
}

func movLocal(ctx *Context, ins isa.Instruction) error {
	v, err := ctx.Pop()
	if err != nil {
		return err
	}
	return ctx.SetLocal(int(ins.Attr(0)), v)
}

func pushLocalRel(ctx *Context, ins isa.Instruction) error {
	v, err := ctx.Local(ctx.SP() + int(ins.Attr(0)))
	if err != nil {
		return err
	}
	ctx.Push(v)
	return nil
}

func movLocalRel(ctx *Context, ins isa.Instruction) error {
	v, err := ctx.Pop()
	if err != nil {
		return err
	}
	return ctx.SetLocal(ctx.SP()+int(ins.Attr(0)), v)
}

func pushSP(ctx *Context, ins isa.Instruction) error {
	ctx.Push(paracl.Cell(ctx.SP()))
	return nil
}

func popSP(ctx *Context, ins isa.Instruction) error {
	v, err := ctx.Pop()
	if err != nil {
		return err
	}
	return ctx.SetSP(int(v))
}

// setup_frame k makes the topmost k cells part of the new frame: the frame base
// becomes the stack depth minus k.
func setupFrame(ctx *Context, ins isa.Instruction) error {
	return ctx.SetSP(ctx.Depth() - int(ins.Attr(0)))
}

func binary(op func(a, b paracl.Cell) (paracl.Cell, error)) Action {
	return func(ctx *Context, ins isa.Instruction) error {
		a, b, err := ctx.Pop2()
		if err != nil {
			return err
		}
		r, err := op(a, b)
		if err != nil {
			return err
		}
		ctx.Push(r)
		return nil
	}
}

func compare(pred func(a, b paracl.Cell) bool) Action {
	return binary(func(a, b paracl.Cell) (paracl.Cell, error) {
		return boolCell(pred(a, b)), nil
	})
}

func unary(op func(a paracl.Cell) paracl.Cell) Action {
	return func(ctx *Context, ins isa.Instruction) error {
		a, err := ctx.Pop()
		if err != nil {
			return err
		}
		ctx.Push(op(a))
		return nil
	}
}

func divide(a, b paracl.Cell) (paracl.Cell, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

func modulo(a, b paracl.Cell) (paracl.Cell, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a % b, nil
}

func boolCell(b bool) paracl.Cell {
	if b {
		return 1
	}
	return 0
}

func jmp(ctx *Context, ins isa.Instruction) error {
	return ctx.Jump(int(ins.Attr(0)))
}

func jmpIf(when bool) Action {
	return func(ctx *Context, ins isa.Instruction) error {
		c, err := ctx.Pop()
		if err != nil {
			return err
		}
		if (c != 0) == when {
			return ctx.Jump(int(ins.Attr(0)))
		}
		return nil
	}
}

func jmpDynamic(ctx *Context, ins isa.Instruction) error {
	target, err := ctx.Pop()
	if err != nil {
		return err
	}
	return ctx.Jump(int(target))
}

func printCell(ctx *Context, ins isa.Instruction) error {
	v, err := ctx.Pop()
	if err != nil {
		return err
	}
	return ctx.Print(v)
}

func readCell(ctx *Context, ins isa.Instruction) error {
	v, err := ctx.ReadInt()
	if err != nil {
		return err
	}
	ctx.Push(v)
	return nil
}

func ret(ctx *Context, ins isa.Instruction) error {
	ctx.Halt()
	return nil
}
