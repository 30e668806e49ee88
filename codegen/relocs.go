package codegen

import (
	"fmt"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/builder"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/isa"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/sema"
	"github.com/emirpasic/gods/lists/arraylist"
)

// --- Constant pool ---------------------------------------------------------

// constantPool collects the constants of a chunk. Literals are deduplicated by
// value, reserved slots (function addresses, return addresses) are not.
type constantPool struct {
	values []paracl.Cell
	index  map[paracl.Cell]int
}

func newConstantPool() *constantPool {
	return &constantPool{index: make(map[paracl.Cell]int)}
}

// literal returns the index of a literal value, adding it on first occurrence.
func (cp *constantPool) literal(v paracl.Cell) int {
	if i, ok := cp.index[v]; ok {
		return i
	}
	i := len(cp.values)
	cp.values = append(cp.values, v)
	cp.index[v] = i
	return i
}

// reserve adds a slot whose value will be set by a relocation.
func (cp *constantPool) reserve() int {
	cp.values = append(cp.values, 0)
	return len(cp.values) - 1
}

func (cp *constantPool) set(i int, v paracl.Cell) {
	cp.values[i] = v
}

// --- Relocations -----------------------------------------------------------

type relocKind int8

const (
	relocCall     relocKind = iota // jump operand of a static call := entry of function
	relocFuncAddr                  // constant := entry of function
	relocRetAddr                   // constant := return location of a call site
)

// relocation is a deferred patch request.
type relocation struct {
	kind   relocKind
	site   builder.Location // jmp instruction, for relocCall
	slot   int              // constant pool index, for relocFuncAddr and relocRetAddr
	fn     sema.FuncID      // target function, for relocCall and relocFuncAddr
	target builder.Location // return location, for relocRetAddr; -1 while unknown
}

func (r *relocation) String() string {
	switch r.kind {
	case relocCall:
		return fmt.Sprintf("call@0x%04x -> func #%d", int(r.site), r.fn)
	case relocFuncAddr:
		return fmt.Sprintf("K[%d] := &func #%d", r.slot, r.fn)
	}
	return fmt.Sprintf("K[%d] := 0x%04x", r.slot, int(r.target))
}

// linker keeps relocations until all function entries are known.
type linker struct {
	relocs   *arraylist.List // of *relocation
	entries  map[sema.FuncID]builder.Location
	funcAddr map[sema.FuncID]int // constant slot holding a function's address
}

func newLinker() *linker {
	return &linker{
		relocs:   arraylist.New(),
		entries:  make(map[sema.FuncID]builder.Location),
		funcAddr: make(map[sema.FuncID]int),
	}
}

func (l *linker) add(r *relocation) *relocation {
	l.relocs.Add(r)
	tracer().Debugf("relocation %v", r)
	return r
}

// link patches all relocations into code and constants. Every relocation has to
// be resolvable at this point.
func (l *linker) link(b *builder.Builder, consts *constantPool) {
	it := l.relocs.Iterator()
	for it.Next() {
		r := it.Value().(*relocation)
		switch r.kind {
		case relocCall:
			b.GetAs(isa.Jmp, r.site).Set(0, int64(l.entry(r)))
		case relocFuncAddr:
			consts.set(r.slot, paracl.Cell(l.entry(r)))
		case relocRetAddr:
			if r.target < 0 {
				panic(internalError(fmt.Sprintf("unresolved relocation %v", r)))
			}
			consts.set(r.slot, paracl.Cell(r.target))
		}
	}
	tracer().Infof("linked %d relocation(s)", l.relocs.Size())
}

func (l *linker) entry(r *relocation) builder.Location {
	loc, ok := l.entries[r.fn]
	if !ok {
		panic(internalError(fmt.Sprintf("unresolved relocation %v", r)))
	}
	return loc
}
