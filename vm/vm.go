/*
Package vm implements the ParaCL stack machine.

The machine executes a chunk by iterated fetch, decode and dispatch. Each step
reads the opcode byte at the instruction pointer, finds the instruction's
descriptor and action in an array-indexed dispatch table, decodes the
attributes with the very descriptor the disassembler uses, advances the
instruction pointer and finally executes the action.

The only value type is a signed 32-bit integer cell. Local variables live on
the execution stack and are addressed either absolutely (slot n from the
bottom of the stack) or relative to the stack pointer register, which marks
the base of the current call frame.

Calls

A caller pushes a slot for the return value, the return address (from the
constant pool), its own stack pointer (push_sp) and the arguments. It then
establishes the callee's frame with setup_frame, placing the frame base right
above the arguments, and jumps to the callee (jmp for static targets,
jmp_dynamic for targets computed at run time). Inside a callee with n
parameters, parameter i lives at slot -(n-i) relative to the frame base, the
saved stack pointer at -(n+1), the return address at -(n+2) and the return
value slot at -(n+3). On return, the callee writes its result into the return
value slot, pops its locals and parameters, restores the caller's frame base
with pop_sp and continues at the saved address with jmp_dynamic.

Errors

Every error is fatal to the execution: the machine halts and the error
surfaces as a *RuntimeError, wrapping one of the error kinds of this package.

Global configuration key 'trace-vm-steps' switches on step tracing
(at debug level, trace key 'paracl.vm'), key 'validate-stack' switches on
the check for an empty stack at halt.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/ajlekcahdp4/paracl-interpreter-sub000/chunk"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/isa"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paracl.vm'.
func tracer() tracing.Trace {
	return tracing.Select("paracl.vm")
}

// VM is a virtual machine executing one chunk.
type VM struct {
	ctx      *Context
	set      *InstructionSet
	input    io.Reader
	output   io.Writer
	validate bool // check for an empty stack at halt
	trace    bool // trace every step
	steps    int  // number of instructions executed
}

// Option configures a VM.
type Option func(*VM)

// WithInput sets the source for read instructions. Default is os.Stdin.
func WithInput(r io.Reader) Option {
	return func(m *VM) {
		m.input = r
	}
}

// WithOutput sets the sink for print instructions. Default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(m *VM) {
		m.output = w
	}
}

// ValidateStack switches on a check for an empty execution stack at halt. The
// default is taken from global configuration key 'validate-stack'.
func ValidateStack(b bool) Option {
	return func(m *VM) {
		m.validate = b
	}
}

// TraceSteps switches on tracing of every executed instruction. The default is
// taken from global configuration key 'trace-vm-steps'.
func TraceSteps(b bool) Option {
	return func(m *VM) {
		m.trace = b
	}
}

// WithInstructionSet replaces the ParaCL instruction set.
func WithInstructionSet(set *InstructionSet) Option {
	return func(m *VM) {
		m.set = set
	}
}

// New creates a virtual machine, ready to execute chunk c from location 0.
func New(c *chunk.Chunk, opts ...Option) *VM {
	m := &VM{
		input:    os.Stdin,
		output:   os.Stdout,
		validate: gconf.GetBool("validate-stack"),
		trace:    gconf.GetBool("trace-vm-steps"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.set == nil {
		m.set = ParaCL()
	}
	m.ctx = newContext(c, m.input, m.output)
	return m
}

// Context returns the execution context of the machine.
func (m *VM) Context() *Context {
	return m.ctx
}

// Halted is a predicate: has the machine halted, either regularly or because of
// an error?
func (m *VM) Halted() bool {
	return m.ctx.halted
}

// Steps returns the number of instructions executed so far.
func (m *VM) Steps() int {
	return m.steps
}

// Peek decodes the instruction at the instruction pointer without executing it.
func (m *VM) Peek() (isa.Instruction, error) {
	return m.set.table.DecodeAt(m.ctx.chunk.Code(), m.ctx.ip)
}

// Run executes instructions until the machine halts. If stack validation is
// switched on, halting with cells left on the stack is an error.
func (m *VM) Run() error {
	tracer().Debugf("running %v", m.ctx.chunk)
	for !m.ctx.halted {
		if err := m.Step(); err != nil {
			tracer().Errorf("%v", err)
			return err
		}
	}
	tracer().P("steps", m.steps).Debugf("machine halted")
	return nil
}

// Step executes a single instruction. Stepping a halted machine is an error.
func (m *VM) Step() error {
	ctx := m.ctx
	if ctx.halted {
		return &RuntimeError{IP: ctx.ip, Err: ErrHalted}
	}
	code := ctx.chunk.Code()
	if ctx.ip >= len(code) {
		return m.fail("", ErrCodeOverrun)
	}
	d, action := m.set.lookup(code[ctx.ip])
	if d == nil {
		return m.fail("", fmt.Errorf("%w 0x%02x", ErrUnknownOpcode, code[ctx.ip]))
	}
	ins, err := d.Decode(code, ctx.ip)
	if err != nil {
		return m.fail(d.Name(), err)
	}
	if m.trace {
		tracer().Debugf("%-24s %v", fmt.Sprintf("0x%04x  %v", ins.Loc, ins), ctx)
	}
	ctx.ip = ins.Next()
	m.steps++
	if err = action(ctx, ins); err != nil {
		ctx.ip = ins.Loc
		return m.fail(d.Name(), err)
	}
	if ctx.halted && m.validate && ctx.Depth() != 0 {
		return m.fail(d.Name(), fmt.Errorf("%w: %d cells left", ErrStackNotEmpty, ctx.Depth()))
	}
	return nil
}

func (m *VM) fail(op string, err error) error {
	m.ctx.halted = true
	return &RuntimeError{Op: op, IP: m.ctx.ip, Err: err}
}
