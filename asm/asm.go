/*
Package asm translates ParaCL assembler text into chunks.

The assembler reads the format produced by package disasm, so that
disassembling a chunk and assembling the listing reproduces the chunk.
In addition, code may use symbolic labels instead of numeric jump targets:

    .constant_pool
        0 = 3
        1 = 1
    .code
    loop:
        push_local 0
        push_const 1
        sub
        mov_local 0
        push_local 0
        jmp_true loop
        ret

A label is defined by 'name:' in front of an instruction and may be used as
the operand of any instruction or as the value of a constant, before or after
its definition. An optional address prefix ('0x0010') in front of an
instruction is checked against the location the instruction is assembled to.
Everything from ';' to the end of the line is a comment.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package asm

import (
	"fmt"
	"io"
	"math"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/builder"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/chunk"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/isa"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paracl.asm'.
func tracer() tracing.Trace {
	return tracing.Select("paracl.asm")
}

// Error is an error in an assembler source.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("asm: line %d: %s", e.Line, e.Msg)
}

// Assemble reads assembler text from r and assembles it into a chunk, using
// the instructions of table. If table is nil, the ParaCL instruction table is
// used.
func Assemble(r io.Reader, table *isa.Table) (*chunk.Chunk, error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if table == nil {
		table = isa.ParaCL()
	}
	scan, err := newScanner(input)
	if err != nil {
		return nil, err
	}
	a := &assembler{
		scan:   scan,
		table:  table,
		b:      builder.New(),
		labels: make(map[string]builder.Location),
	}
	if err = a.source(); err != nil {
		tracer().Errorf("%v", err)
		return nil, err
	}
	if err = a.resolve(); err != nil {
		tracer().Errorf("%v", err)
		return nil, err
	}
	return a.b.Chunk(a.consts), nil
}

type section int8

const (
	noSection section = iota
	constSection
	codeSection
)

// labelRef is a use of a label, patched once all labels are defined.
type labelRef struct {
	label string
	line  int
	desc  *isa.Descriptor  // instruction using the label, nil for constants
	loc   builder.Location // location of the instruction
	slot  int              // constant pool index, if desc is nil
}

type assembler struct {
	scan    *scanner
	tok     token // lookahead
	table   *isa.Table
	b       *builder.Builder
	consts  []paracl.Cell
	labels  map[string]builder.Location
	refs    []labelRef
	section section
}

func (a *assembler) advance() error {
	tok, err := a.scan.next()
	if err != nil {
		return err
	}
	a.tok = tok
	return nil
}

func (a *assembler) errorf(format string, args ...interface{}) error {
	return &Error{Line: a.tok.line, Msg: fmt.Sprintf(format, args...)}
}

func (a *assembler) unexpected(what string) error {
	if a.tok.TokType() == tokEOF || a.tok.TokType() == tokNL {
		return a.errorf("expected %s, found %s", what, tokenName(a.tok.TokType()))
	}
	return a.errorf("expected %s, found %s %q", what, tokenName(a.tok.TokType()), a.tok.Lexeme())
}

// source := { line }
func (a *assembler) source() error {
	if err := a.advance(); err != nil {
		return err
	}
	for a.tok.TokType() != tokEOF {
		if err := a.line(); err != nil {
			return err
		}
	}
	return nil
}

// line := [ directive | constant | code ] NL
func (a *assembler) line() error {
	var err error
	switch {
	case a.tok.TokType() == tokNL:
	case a.tok.TokType() == tokDirective:
		err = a.directive()
	case a.section == constSection:
		err = a.constant()
	case a.section == codeSection:
		err = a.code()
	default:
		err = a.errorf("statement outside of .constant_pool or .code section")
	}
	if err != nil {
		return err
	}
	return a.endOfLine()
}

func (a *assembler) endOfLine() error {
	switch a.tok.TokType() {
	case tokEOF:
		return nil
	case tokNL:
		return a.advance()
	}
	return a.unexpected("end of line")
}

func (a *assembler) directive() error {
	switch d := a.tok.Lexeme(); d {
	case ".constant_pool":
		a.section = constSection
	case ".code":
		a.section = codeSection
	default:
		return a.errorf("unknown directive %s", d)
	}
	return a.advance()
}

// constant := INT '=' ( INT | HEX | IDENT )
func (a *assembler) constant() error {
	if a.tok.TokType() != tokInt {
		return a.unexpected("constant index")
	}
	i, err := a.integer()
	if err != nil {
		return err
	}
	if i != int64(len(a.consts)) {
		return a.errorf("constant index %d out of sequence, expected %d", i, len(a.consts))
	}
	if err = a.advance(); err != nil {
		return err
	}
	if a.tok.TokType() != tokEquals {
		return a.unexpected("'='")
	}
	if err = a.advance(); err != nil {
		return err
	}
	var v int64
	switch a.tok.TokType() {
	case tokInt, tokHex:
		if v, err = a.integer(); err != nil {
			return err
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return a.errorf("constant %d does not fit into a cell", v)
		}
	case tokIdent:
		a.refs = append(a.refs, labelRef{label: a.tok.Lexeme(), line: a.tok.line, slot: len(a.consts)})
	default:
		return a.unexpected("constant value")
	}
	a.consts = append(a.consts, paracl.Cell(v))
	return a.advance()
}

// code := [ HEX ] [ IDENT ':' ] [ IDENT [ operand ] ]
func (a *assembler) code() error {
	if a.tok.TokType() == tokHex {
		addr, err := a.integer()
		if err != nil {
			return err
		}
		if addr != int64(a.b.CurrentLoc()) {
			return a.errorf("address 0x%04x does not match location 0x%04x", addr, int(a.b.CurrentLoc()))
		}
		if err = a.advance(); err != nil {
			return err
		}
	}
	if a.tok.TokType() != tokIdent {
		if a.tok.TokType() == tokNL || a.tok.TokType() == tokEOF {
			return nil
		}
		return a.unexpected("instruction or label")
	}
	name, line := a.tok.Lexeme(), a.tok.line
	if err := a.advance(); err != nil {
		return err
	}
	if a.tok.TokType() == tokColon {
		if _, ok := a.labels[name]; ok {
			return a.errorf("label %s redefined", name)
		}
		a.labels[name] = a.b.CurrentLoc()
		tracer().Debugf("label %s = 0x%04x", name, int(a.b.CurrentLoc()))
		if err := a.advance(); err != nil {
			return err
		}
		if a.tok.TokType() != tokIdent {
			return nil
		}
		name, line = a.tok.Lexeme(), a.tok.line
		if err := a.advance(); err != nil {
			return err
		}
	}
	return a.instruction(name, line)
}

func (a *assembler) instruction(name string, line int) error {
	d := a.table.ByName(name)
	if d == nil {
		return &Error{Line: line, Msg: fmt.Sprintf("unknown instruction %s", name)}
	}
	if d.AttrCount() == 0 {
		a.b.Emit(d)
		return nil
	}
	switch a.tok.TokType() {
	case tokInt, tokHex:
		v, err := a.integer()
		if err != nil {
			return err
		}
		if !fits(d.Attrs()[0], v) {
			return a.errorf("operand %d of %s out of range for %v", v, name, d.Attrs()[0])
		}
		a.b.Emit(d, v)
	case tokIdent:
		loc := a.b.Emit(d, 0)
		a.refs = append(a.refs, labelRef{label: a.tok.Lexeme(), line: a.tok.line, desc: d, loc: loc})
	default:
		return a.unexpected(fmt.Sprintf("operand of %s", name))
	}
	return a.advance()
}

func (a *assembler) integer() (int64, error) {
	v, ok := a.tok.Value().(int64)
	if !ok {
		return 0, a.errorf("invalid number %s", a.tok.Lexeme())
	}
	return v, nil
}

// resolve patches all label uses.
func (a *assembler) resolve() error {
	for _, ref := range a.refs {
		loc, ok := a.labels[ref.label]
		if !ok {
			return &Error{Line: ref.line, Msg: fmt.Sprintf("undefined label %s", ref.label)}
		}
		if ref.desc == nil {
			a.consts[ref.slot] = paracl.Cell(loc)
			continue
		}
		if !fits(ref.desc.Attrs()[0], int64(loc)) {
			return &Error{Line: ref.line, Msg: fmt.Sprintf("label %s out of range for %s", ref.label, ref.desc.Name())}
		}
		a.b.GetAs(ref.desc, ref.loc).Set(0, int64(loc))
	}
	tracer().Infof("resolved %d label reference(s)", len(a.refs))
	return nil
}

// fits is a predicate: can value v be encoded as an attribute of type t?
func fits(t isa.AttrType, v int64) bool {
	switch t {
	case isa.U8:
		return v >= 0 && v <= math.MaxUint8
	case isa.U32:
		return v >= 0 && v <= math.MaxUint32
	case isa.I32:
		return v >= math.MinInt32 && v <= math.MaxInt32
	}
	return false
}
