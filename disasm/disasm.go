/*
Package disasm renders chunks as human-readable text.

The disassembler walks the instruction stream with the same descriptors the
virtual machine uses for decoding, so disassembly and execution never disagree
about instruction boundaries. Output looks like this:

    ; chunk fingerprint 3a7bd3e2360a3d29eea436fcfb7e44c735d117c4
    .constant_pool
        0 = 0
        1 = 42
    .code
    0x0000  push_const 1
    0x0005  jmp_false 16
    0x000a  print
    0x000b  jmp 17
    ; target 0x0010
    0x0010  pop
    ; target 0x0011
    0x0011  ret

Lines starting with ';' are comments. Jump targets are marked with a
comment line in front of the target instruction.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package disasm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ajlekcahdp4/paracl-interpreter-sub000/chunk"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/isa"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'paracl.disasm'.
func tracer() tracing.Trace {
	return tracing.Select("paracl.disasm")
}

type config struct {
	header bool
	labels bool
}

// Option configures the rendering.
type Option func(*config)

// Header switches the fingerprint comment on top of the listing on or off.
func Header(b bool) Option {
	return func(c *config) {
		c.header = b
	}
}

// Labels switches jump-target comments on or off.
func Labels(b bool) Option {
	return func(c *config) {
		c.labels = b
	}
}

// Instructions decodes the complete instruction stream of a chunk. If decoding
// fails, the instructions decoded so far are returned together with the error.
func Instructions(c *chunk.Chunk, table *isa.Table) ([]isa.Instruction, error) {
	code := c.Code()
	var instrs []isa.Instruction
	for at := 0; at < len(code); {
		ins, err := table.DecodeAt(code, at)
		if err != nil {
			return instrs, err
		}
		instrs = append(instrs, ins)
		at = ins.Next()
	}
	return instrs, nil
}

// JumpTargets collects the static targets of all jump instructions, in ascending
// order.
func JumpTargets(instrs []isa.Instruction) []int {
	set := jumpTargets(instrs)
	targets := make([]int, 0, set.Size())
	for _, v := range set.Values() {
		targets = append(targets, v.(int))
	}
	return targets
}

func jumpTargets(instrs []isa.Instruction) *treeset.Set {
	set := treeset.NewWithIntComparator()
	for _, ins := range instrs {
		if isa.IsJump(ins.Desc) {
			set.Add(int(ins.Attr(0)))
		}
	}
	return set
}

// Write renders chunk c to w, decoding instructions with table. If table is nil,
// the ParaCL instruction table is used.
//
// If the code contains undecodable bytes, Write renders the instructions up to
// the defect and returns the decoding error.
func Write(w io.Writer, c *chunk.Chunk, table *isa.Table, opts ...Option) error {
	conf := config{header: true, labels: true}
	for _, opt := range opts {
		opt(&conf)
	}
	if table == nil {
		table = isa.ParaCL()
	}
	bw := bufio.NewWriter(w)
	if conf.header {
		fp, err := c.Fingerprint()
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "; chunk fingerprint %s\n", fp)
	}
	bw.WriteString(".constant_pool\n")
	for i, k := range c.Constants() {
		fmt.Fprintf(bw, "    %d = %d\n", i, k)
	}
	bw.WriteString(".code\n")
	instrs, decodeErr := Instructions(c, table)
	targets := treeset.NewWithIntComparator()
	if conf.labels {
		targets = jumpTargets(instrs)
	}
	for _, ins := range instrs {
		if targets.Contains(ins.Loc) {
			fmt.Fprintf(bw, "; target 0x%04x\n", ins.Loc)
		}
		fmt.Fprintf(bw, "0x%04x  %v\n", ins.Loc, ins)
	}
	if decodeErr != nil {
		fmt.Fprintf(bw, "; %v\n", decodeErr)
		tracer().Errorf("disassembly incomplete: %v", decodeErr)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return decodeErr
}
