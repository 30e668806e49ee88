/*
Package isa describes instruction sets for the ParaCL stack machine.

An instruction is an opcode byte followed by a fixed layout of attributes
(operands). Each kind of instruction is declared once as a Descriptor,
carrying the opcode, a human-readable name and the attribute layout.
Descriptors know how to encode, decode and pretty-print their instructions,
making sure that everybody (code generator, virtual machine, disassembler and
assembler) agrees on instruction boundaries.

Descriptors are collected into a Table, which maps each of the 256 possible
opcode values either to a descriptor or to "unassigned". The ParaCL instruction
set is available as ParaCL().

Attributes are encoded with fixed width in little-endian byte order,
independent of the host's byte order.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package isa

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paracl.isa'.
func tracer() tracing.Trace {
	return tracing.Select("paracl.isa")
}

// AttrType is the type of an instruction attribute.
type AttrType uint8

// Attribute types. All of them are encoded little-endian.
const (
	U8  AttrType = iota + 1 // unsigned byte
	U32                     // unsigned 32-bit word: jump targets, constant indices, slots
	I32                     // signed 32-bit word: relative offsets
)

// Width returns the number of bytes an attribute of type a occupies.
func (a AttrType) Width() int {
	switch a {
	case U8:
		return 1
	case U32, I32:
		return 4
	}
	panic(fmt.Sprintf("isa: invalid attribute type %d", a))
}

func (a AttrType) String() string {
	switch a {
	case U8:
		return "u8"
	case U32:
		return "u32"
	case I32:
		return "i32"
	}
	return fmt.Sprintf("AttrType(%d)", a)
}

// MaxAttrs is the maximum number of attributes per instruction. ParaCL instructions
// are either nullary or unary.
const MaxAttrs = 1

// ErrTruncated is returned by Decode if the code ends before all attribute bytes
// of an instruction could be read.
var ErrTruncated = errors.New("truncated instruction")

// Descriptor is the static description of one kind of instruction.
// Descriptors are immutable after construction.
type Descriptor struct {
	opcode byte
	name   string
	attrs  []AttrType
	size   int // binary size: opcode byte + attribute bytes
}

// NewDescriptor creates a descriptor for an instruction. The name must not be
// empty, opcode 0 is reserved for "unknown".
func NewDescriptor(opcode byte, name string, attrs ...AttrType) (*Descriptor, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("isa: instruction with opcode 0x%02x has an empty name", opcode)
	}
	if opcode == 0 {
		return nil, fmt.Errorf("isa: instruction %q uses reserved opcode 0x00", name)
	}
	if len(attrs) > MaxAttrs {
		return nil, fmt.Errorf("isa: instruction %q has %d attributes, at most %d allowed",
			name, len(attrs), MaxAttrs)
	}
	d := &Descriptor{
		opcode: opcode,
		name:   name,
		attrs:  make([]AttrType, len(attrs)),
		size:   1,
	}
	for i, a := range attrs {
		if a < U8 || a > I32 {
			return nil, fmt.Errorf("isa: instruction %q has invalid attribute type %d", name, a)
		}
		d.attrs[i] = a
		d.size += a.Width()
	}
	return d, nil
}

// MustDescriptor is like NewDescriptor, but panics in case of an error.
// Use it for declaring static instruction sets.
func MustDescriptor(opcode byte, name string, attrs ...AttrType) *Descriptor {
	d, err := NewDescriptor(opcode, name, attrs...)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Opcode returns the opcode byte of the instruction.
func (d *Descriptor) Opcode() byte {
	return d.opcode
}

// Name returns the human-readable name of the instruction.
func (d *Descriptor) Name() string {
	return d.name
}

// Attrs returns the attribute layout of the instruction.
func (d *Descriptor) Attrs() []AttrType {
	a := make([]AttrType, len(d.attrs))
	copy(a, d.attrs)
	return a
}

// AttrCount returns the number of attributes following the opcode.
func (d *Descriptor) AttrCount() int {
	return len(d.attrs)
}

// BinarySize is the number of bytes an encoded instruction occupies,
// including the opcode byte.
func (d *Descriptor) BinarySize() int {
	return d.size
}

// AttrOffset returns the byte offset of attribute i, relative to the opcode byte.
func (d *Descriptor) AttrOffset(i int) int {
	offset := 1
	for _, a := range d.attrs[:i] {
		offset += a.Width()
	}
	return offset
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("<%s 0x%02x %v>", d.name, d.opcode, d.attrs)
}

// Encode appends an encoded instruction to code and returns the extended slice.
// Encode panics if the number of attributes does not match the descriptor, as this
// is a programming error of the caller.
func (d *Descriptor) Encode(code []byte, attrs ...int64) []byte {
	if len(attrs) != len(d.attrs) {
		panic(fmt.Sprintf("isa: instruction %s expects %d attributes, got %d",
			d.name, len(d.attrs), len(attrs)))
	}
	code = append(code, d.opcode)
	var word [4]byte
	for i, a := range d.attrs {
		w := word[:a.Width()]
		putAttr(w, a, attrs[i])
		code = append(code, w...)
	}
	return code
}

// PutAttr overwrites attribute i of an already encoded instruction. ins has to start
// with the opcode byte of the instruction.
func (d *Descriptor) PutAttr(ins []byte, i int, value int64) {
	offset := d.AttrOffset(i)
	a := d.attrs[i]
	putAttr(ins[offset:offset+a.Width()], a, value)
}

func putAttr(w []byte, a AttrType, value int64) {
	switch a {
	case U8:
		w[0] = byte(value)
	case U32, I32:
		binary.LittleEndian.PutUint32(w, uint32(value))
	}
}

// Decode decodes the instruction starting at code[at]. If the opcode byte at this
// position is not the descriptor's opcode, Decode fails with ErrUnknownOpcode.
// Decode reads exactly BinarySize() bytes, or fails with ErrTruncated.
func (d *Descriptor) Decode(code []byte, at int) (Instruction, error) {
	ins := Instruction{Desc: d, Loc: at}
	if at < 0 || at >= len(code) {
		return ins, fmt.Errorf("%w: %s at offset %d beyond code of length %d",
			ErrTruncated, d.name, at, len(code))
	}
	if code[at] != d.opcode {
		return ins, fmt.Errorf("%w 0x%02x at offset %d, expected %s",
			ErrUnknownOpcode, code[at], at, d.name)
	}
	if at+d.size > len(code) {
		return ins, fmt.Errorf("%w: %s at offset %d needs %d bytes, %d left",
			ErrTruncated, d.name, at, d.size, len(code)-at)
	}
	pos := at + 1
	for i, a := range d.attrs {
		ins.attrs[i] = getAttr(code[pos:pos+a.Width()], a)
		pos += a.Width()
	}
	return ins, nil
}

func getAttr(w []byte, a AttrType) int64 {
	switch a {
	case U8:
		return int64(w[0])
	case U32:
		return int64(binary.LittleEndian.Uint32(w))
	case I32:
		return int64(int32(binary.LittleEndian.Uint32(w)))
	}
	return 0
}

// Attr reads attribute i of an encoded instruction.
func (d *Descriptor) Attr(ins []byte, i int) int64 {
	offset := d.AttrOffset(i)
	a := d.attrs[i]
	return getAttr(ins[offset:offset+a.Width()], a)
}

// --- Decoded instructions ---------------------------------------------

// Instruction is a decoded instruction: a descriptor, the location of the
// instruction within its code buffer, and the decoded attributes.
type Instruction struct {
	Desc  *Descriptor
	Loc   int
	attrs [MaxAttrs]int64
}

// Attr returns the value of attribute i.
func (ins Instruction) Attr(i int) int64 {
	return ins.attrs[i]
}

// Size returns the number of bytes the instruction occupies in the code.
func (ins Instruction) Size() int {
	return ins.Desc.size
}

// Next returns the location of the instruction following ins.
func (ins Instruction) Next() int {
	return ins.Loc + ins.Desc.size
}

// String pretty-prints an instruction as 'name attr…'.
func (ins Instruction) String() string {
	if ins.Desc == nil {
		return "<nil instruction>"
	}
	if len(ins.Desc.attrs) == 0 {
		return ins.Desc.name
	}
	var b strings.Builder
	b.WriteString(ins.Desc.name)
	for i := range ins.Desc.attrs {
		fmt.Fprintf(&b, " %d", ins.attrs[i])
	}
	return b.String()
}
