/*
Package chunk implements the unit of compiled ParaCL code: a binary instruction
stream paired with a pool of integer constants.

Chunks are produced once by the code generator (or the assembler) and are
read-only afterwards. The virtual machine, the disassembler and the binary writer
all treat a chunk as an opaque artifact.

Binary Format

A chunk is stored as

    offset 0..5    magic header 0B 00 00 0B 0E 0C
    offset 6..9    uint32 LE  N = number of constants
    offset 10..13  uint32 LE  L = length of code in bytes
    then           N × int32 LE (constant pool)
    then           L bytes of instruction stream

The total size must be exactly 14+4N+L bytes.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package chunk

import (
	"bytes"
	"fmt"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paracl.chunk'.
func tracer() tracing.Trace {
	return tracing.Select("paracl.chunk")
}

// Chunk is an immutable unit of compiled output. Create one with New.
type Chunk struct {
	code      []byte
	constants []paracl.Cell
}

// New creates a chunk from a code buffer and a constant pool. Both slices are
// copied, clients may re-use them afterwards.
func New(code []byte, constants []paracl.Cell) *Chunk {
	c := &Chunk{
		code:      make([]byte, len(code)),
		constants: make([]paracl.Cell, len(constants)),
	}
	copy(c.code, code)
	copy(c.constants, constants)
	return c
}

// Code returns the instruction stream. Clients must not modify the returned slice.
func (c *Chunk) Code() []byte {
	return c.code
}

// CodeLen returns the length of the instruction stream in bytes.
func (c *Chunk) CodeLen() int {
	return len(c.code)
}

// Constants returns a copy of the constant pool.
func (c *Chunk) Constants() []paracl.Cell {
	consts := make([]paracl.Cell, len(c.constants))
	copy(consts, c.constants)
	return consts
}

// ConstantCount returns the number of entries in the constant pool.
func (c *Chunk) ConstantCount() int {
	return len(c.constants)
}

// Constant returns the constant at index i. An index out of range is an error.
func (c *Chunk) Constant(i int) (paracl.Cell, error) {
	if i < 0 || i >= len(c.constants) {
		return 0, fmt.Errorf("constant index %d out of range [0…%d)", i, len(c.constants))
	}
	return c.constants[i], nil
}

// Equal is a predicate: do two chunks carry identical constants and code?
func (c *Chunk) Equal(other *Chunk) bool {
	if c == nil || other == nil {
		return c == other
	}
	if len(c.constants) != len(other.constants) {
		return false
	}
	for i, k := range c.constants {
		if other.constants[i] != k {
			return false
		}
	}
	return bytes.Equal(c.code, other.code)
}

func (c *Chunk) String() string {
	return fmt.Sprintf("<chunk |K|=%d |code|=%d>", len(c.constants), len(c.code))
}
