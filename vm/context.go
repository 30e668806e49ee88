package vm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/chunk"
)

// Context is the mutable state of one execution of a chunk: the instruction
// pointer, the execution stack, the stack pointer register (the base of the
// current call frame) and a halted flag.
//
// Instruction actions operate on a context exclusively through its methods,
// which check every access. A context is owned by a single VM and is not safe
// for concurrent use.
type Context struct {
	chunk  *chunk.Chunk
	ip     int
	sp     int
	stack  []paracl.Cell
	halted bool
	in     *bufio.Reader
	out    io.Writer
}

func newContext(c *chunk.Chunk, in io.Reader, out io.Writer) *Context {
	return &Context{
		chunk: c,
		stack: make([]paracl.Cell, 0, 64),
		in:    bufio.NewReader(in),
		out:   out,
	}
}

// IP returns the instruction pointer, i.e. the location of the next instruction.
func (ctx *Context) IP() int {
	return ctx.ip
}

// SP returns the stack pointer register.
func (ctx *Context) SP() int {
	return ctx.sp
}

// Depth returns the number of cells on the execution stack.
func (ctx *Context) Depth() int {
	return len(ctx.stack)
}

// Halted is a predicate: has the machine halted?
func (ctx *Context) Halted() bool {
	return ctx.halted
}

// Halt stops the machine. No further instructions will be executed.
func (ctx *Context) Halt() {
	ctx.halted = true
}

// Stack returns a copy of the execution stack, bottom first.
func (ctx *Context) Stack() []paracl.Cell {
	s := make([]paracl.Cell, len(ctx.stack))
	copy(s, ctx.stack)
	return s
}

// Push pushes a cell onto the execution stack.
func (ctx *Context) Push(v paracl.Cell) {
	ctx.stack = append(ctx.stack, v)
}

// Pop removes the top cell of the execution stack and returns it.
func (ctx *Context) Pop() (paracl.Cell, error) {
	n := len(ctx.stack)
	if n == 0 {
		return 0, ErrStackUnderflow
	}
	v := ctx.stack[n-1]
	ctx.stack = ctx.stack[:n-1]
	return v, nil
}

// Pop2 pops the two topmost cells, returning them in push order.
func (ctx *Context) Pop2() (a, b paracl.Cell, err error) {
	if len(ctx.stack) < 2 {
		return 0, 0, ErrStackUnderflow
	}
	b, _ = ctx.Pop()
	a, _ = ctx.Pop()
	return a, b, nil
}

// Local returns the cell at absolute stack slot n.
func (ctx *Context) Local(n int) (paracl.Cell, error) {
	if n < 0 || n >= len(ctx.stack) {
		return 0, fmt.Errorf("%w: slot %d, depth %d", ErrBadSlot, n, len(ctx.stack))
	}
	return ctx.stack[n], nil
}

// SetLocal overwrites the cell at absolute stack slot n.
func (ctx *Context) SetLocal(n int, v paracl.Cell) error {
	if n < 0 || n >= len(ctx.stack) {
		return fmt.Errorf("%w: slot %d, depth %d", ErrBadSlot, n, len(ctx.stack))
	}
	ctx.stack[n] = v
	return nil
}

// SetSP sets the stack pointer register. The frame base may equal the stack depth
// (an empty frame) but must not exceed it.
func (ctx *Context) SetSP(sp int) error {
	if sp < 0 || sp > len(ctx.stack) {
		return fmt.Errorf("%w: frame base %d, depth %d", ErrBadSlot, sp, len(ctx.stack))
	}
	ctx.sp = sp
	return nil
}

// Jump sets the instruction pointer to target.
func (ctx *Context) Jump(target int) error {
	if target < 0 || target >= ctx.chunk.CodeLen() {
		return fmt.Errorf("%w: 0x%04x, code length is %d", ErrBadJump, target, ctx.chunk.CodeLen())
	}
	ctx.ip = target
	return nil
}

// Constant returns constant i of the chunk being executed.
func (ctx *Context) Constant(i int) (paracl.Cell, error) {
	v, err := ctx.chunk.Constant(i)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadConstant, err)
	}
	return v, nil
}

// Print writes a cell to the output, followed by a newline.
func (ctx *Context) Print(v paracl.Cell) error {
	_, err := fmt.Fprintf(ctx.out, "%d\n", v)
	return err
}

// ReadInt parses one integer from the input.
func (ctx *Context) ReadInt() (paracl.Cell, error) {
	var v paracl.Cell
	if _, err := fmt.Fscan(ctx.in, &v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	return v, nil
}

func (ctx *Context) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ip=0x%04x sp=%d [", ctx.ip, ctx.sp)
	for i, v := range ctx.stack {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i == ctx.sp {
			b.WriteString("| ")
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteByte(']')
	return b.String()
}
