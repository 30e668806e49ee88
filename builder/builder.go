/*
Package builder accumulates encoded ParaCL instructions into a code buffer.

Instructions are appended one at a time with Emit, which returns the
location (byte offset) of the emitted instruction. Locations serve as jump
targets and as handles for back-patching: once the target of a forward jump
becomes known, a client retrieves the jump's operands with GetAs and
overwrites the placeholder target.

    b := builder.New()
    jf := b.Emit(isa.JmpFalse, 0)   // target unknown yet
    …                               // emit the body
    b.GetAs(isa.JmpFalse, jf).Set(0, int64(b.CurrentLoc()))
    c := b.Chunk(constants)

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package builder

import (
	"fmt"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/chunk"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/isa"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paracl.builder'.
func tracer() tracing.Trace {
	return tracing.Select("paracl.builder")
}

// Location is a byte offset into a code buffer.
type Location int

// Builder is a growing code buffer. The zero value is ready to use.
type Builder struct {
	code []byte
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{code: make([]byte, 0, 256)}
}

// Emit appends an instruction with the given attributes and returns the location
// the instruction starts at.
func (b *Builder) Emit(d *isa.Descriptor, attrs ...int64) Location {
	loc := Location(len(b.code))
	b.code = d.Encode(b.code, attrs...)
	tracer().Debugf("0x%04x  %s %v", int(loc), d.Name(), attrs)
	return loc
}

// CurrentLoc returns the location the next emitted instruction will occupy.
func (b *Builder) CurrentLoc() Location {
	return Location(len(b.code))
}

// Len returns the number of code bytes emitted so far.
func (b *Builder) Len() int {
	return len(b.code)
}

// GetAs returns a mutable view of the operands of the instruction at loc.
// The instruction stored at loc has to be of kind d, otherwise GetAs panics:
// patching the wrong instruction is an internal error of the caller.
func (b *Builder) GetAs(d *isa.Descriptor, loc Location) Operands {
	at := int(loc)
	if at < 0 || at+d.BinarySize() > len(b.code) {
		panic(fmt.Sprintf("builder: no %s instruction at location 0x%04x, code length is %d",
			d.Name(), at, len(b.code)))
	}
	if b.code[at] != d.Opcode() {
		panic(fmt.Sprintf("builder: expected %s at location 0x%04x, found opcode 0x%02x",
			d.Name(), at, b.code[at]))
	}
	return Operands{b: b, desc: d, at: at}
}

// Chunk finalizes the code emitted so far into an immutable chunk, attaching
// a constant pool. The builder may continue to be used afterwards; the chunk
// does not share memory with it.
func (b *Builder) Chunk(constants []paracl.Cell) *chunk.Chunk {
	tracer().Infof("finalizing chunk with %d code bytes and %d constants", len(b.code), len(constants))
	return chunk.New(b.code, constants)
}

// --- Operands -------------------------------------------------------------

// Operands is a view onto the attributes of an instruction in a builder's code
// buffer. Writes through Set are visible in the builder, even if the builder
// has emitted more code since the view was created.
type Operands struct {
	b    *Builder
	desc *isa.Descriptor
	at   int
}

func (o Operands) ins() []byte {
	return o.b.code[o.at : o.at+o.desc.BinarySize()]
}

// Get returns attribute i.
func (o Operands) Get(i int) int64 {
	return o.desc.Attr(o.ins(), i)
}

// Set overwrites attribute i.
func (o Operands) Set(i int, value int64) {
	tracer().Debugf("patching %s attribute #%d := %d", o.desc.Name(), i, value)
	o.desc.PutAttr(o.ins(), i, value)
}

// Count returns the number of attributes of the instruction.
func (o Operands) Count() int {
	return o.desc.AttrCount()
}
