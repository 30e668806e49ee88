package isa

import (
	"errors"
	"fmt"
)

// ErrUnknownOpcode is returned for opcode bytes without an assigned instruction.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Table maps every possible opcode byte to a descriptor, or to nil for
// unassigned opcodes. Lookup is a plain array access.
type Table struct {
	descs [256]*Descriptor
	count int
}

// NewTable creates an instruction table from a list of descriptors.
// It is an error if two descriptors share an opcode or if a descriptor is
// invalid (nil or unnamed).
func NewTable(descs ...*Descriptor) (*Table, error) {
	t := &Table{}
	for _, d := range descs {
		if d == nil {
			return nil, errors.New("isa: nil descriptor in instruction table")
		}
		if d.name == "" {
			return nil, fmt.Errorf("isa: instruction with opcode 0x%02x has an empty name", d.opcode)
		}
		if d.opcode == 0 {
			return nil, fmt.Errorf("isa: instruction %q uses reserved opcode 0x00", d.name)
		}
		if other := t.descs[d.opcode]; other != nil {
			return nil, fmt.Errorf("isa: instructions %q and %q share opcode 0x%02x",
				other.name, d.name, d.opcode)
		}
		t.descs[d.opcode] = d
		t.count++
	}
	tracer().Debugf("instruction table with %d instructions created", t.count)
	return t, nil
}

// Lookup returns the descriptor for an opcode byte. Opcode 0 and unassigned
// opcodes yield ErrUnknownOpcode.
func (t *Table) Lookup(opcode byte) (*Descriptor, error) {
	if d := t.descs[opcode]; d != nil {
		return d, nil
	}
	return nil, fmt.Errorf("%w 0x%02x", ErrUnknownOpcode, opcode)
}

// ByName finds a descriptor by its name, returning nil if none is found.
// This is a linear search, intended for assemblers and tests.
func (t *Table) ByName(name string) *Descriptor {
	for _, d := range t.descs {
		if d != nil && d.name == name {
			return d
		}
	}
	return nil
}

// Size returns the number of instructions in the table.
func (t *Table) Size() int {
	return t.count
}

// Each calls f for every assigned descriptor, in order of ascending opcode.
func (t *Table) Each(f func(*Descriptor)) {
	for _, d := range t.descs {
		if d != nil {
			f(d)
		}
	}
}

// DecodeAt decodes the instruction starting at code[at], dispatching on the
// opcode byte.
func (t *Table) DecodeAt(code []byte, at int) (Instruction, error) {
	if at < 0 || at >= len(code) {
		return Instruction{Loc: at}, fmt.Errorf("%w: no instruction at offset %d, code length is %d",
			ErrTruncated, at, len(code))
	}
	d := t.descs[code[at]]
	if d == nil {
		return Instruction{Loc: at}, fmt.Errorf("%w 0x%02x at offset %d", ErrUnknownOpcode, code[at], at)
	}
	return d.Decode(code, at)
}
