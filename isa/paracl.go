package isa

import "sync"

// The ParaCL instruction set. Opcodes are organized into ranges by category.
//
// Stack effects are noted as (before -- after), TOS is the rightmost item.
var (
	// Constants and stack (0x01-0x0F)

	PushConst = MustDescriptor(0x01, "push_const", U32) // ( -- K[i] )
	Pop       = MustDescriptor(0x02, "pop")             // ( x -- )

	// Locals and frames (0x10-0x1F)

	PushLocal    = MustDescriptor(0x10, "push_local", U32)    // ( -- S[n] )    absolute slot
	MovLocal     = MustDescriptor(0x11, "mov_local", U32)     // ( x -- )       S[n] := x
	PushLocalRel = MustDescriptor(0x12, "push_local_rel", I32) // ( -- S[sp+n] ) relative slot
	MovLocalRel  = MustDescriptor(0x13, "mov_local_rel", I32)  // ( x -- )       S[sp+n] := x
	PushSP       = MustDescriptor(0x14, "push_sp")             // ( -- sp )
	PopSP        = MustDescriptor(0x15, "pop_sp")              // ( x -- )       sp := x
	SetupFrame   = MustDescriptor(0x16, "setup_frame", U32)    // ( -- )         sp := depth - n

	// Arithmetic (0x20-0x2F)

	Add = MustDescriptor(0x20, "add") // ( a b -- a+b )
	Sub = MustDescriptor(0x21, "sub") // ( a b -- a-b )
	Mul = MustDescriptor(0x22, "mul") // ( a b -- a*b )
	Div = MustDescriptor(0x23, "div") // ( a b -- a/b )
	Mod = MustDescriptor(0x24, "mod") // ( a b -- a%b )
	Neg = MustDescriptor(0x25, "neg") // ( a -- -a )

	// Comparison (0x30-0x37)

	CmpEq = MustDescriptor(0x30, "cmp_eq") // ( a b -- a==b )
	CmpNe = MustDescriptor(0x31, "cmp_ne") // ( a b -- a!=b )
	CmpGt = MustDescriptor(0x32, "cmp_gt") // ( a b -- a>b )
	CmpLs = MustDescriptor(0x33, "cmp_ls") // ( a b -- a<b )
	CmpGe = MustDescriptor(0x34, "cmp_ge") // ( a b -- a>=b )
	CmpLe = MustDescriptor(0x35, "cmp_le") // ( a b -- a<=b )

	// Logical operations (0x38-0x3F), not short-circuiting

	And = MustDescriptor(0x38, "and") // ( a b -- a&&b )
	Or  = MustDescriptor(0x39, "or")  // ( a b -- a||b )
	Not = MustDescriptor(0x3a, "not") // ( a -- !a )

	// Control flow (0x40-0x4F)

	Jmp        = MustDescriptor(0x40, "jmp", U32)       // ( -- )      ip := n
	JmpTrue    = MustDescriptor(0x41, "jmp_true", U32)  // ( c -- )    ip := n if c != 0
	JmpFalse   = MustDescriptor(0x42, "jmp_false", U32) // ( c -- )    ip := n if c == 0
	JmpDynamic = MustDescriptor(0x43, "jmp_dynamic")    // ( addr -- ) ip := addr

	// Input/output (0x50-0x5F)

	Print = MustDescriptor(0x50, "print") // ( x -- )
	Read  = MustDescriptor(0x51, "read")  // ( -- x )

	// Halt (0x60)

	Ret = MustDescriptor(0x60, "ret") // halts the machine
)

// IsJump is a predicate: does d denote a jump with a static target attribute?
func IsJump(d *Descriptor) bool {
	return d == Jmp || d == JmpTrue || d == JmpFalse
}

var paraclTable *Table
var paraclOnce sync.Once // monitors one-time creation of the ParaCL table

// ParaCL returns the instruction table for the ParaCL machine.
// The table is created once and is read-only afterwards.
func ParaCL() *Table {
	paraclOnce.Do(func() {
		var err error
		paraclTable, err = NewTable(ParaCLDescriptors()...)
		if err != nil {
			panic("cannot create ParaCL instruction table: " + err.Error())
		}
	})
	return paraclTable
}

// ParaCLDescriptors returns all descriptors of the ParaCL instruction set.
func ParaCLDescriptors() []*Descriptor {
	return []*Descriptor{
		PushConst, Pop,
		PushLocal, MovLocal, PushLocalRel, MovLocalRel, PushSP, PopSP, SetupFrame,
		Add, Sub, Mul, Div, Mod, Neg,
		CmpEq, CmpNe, CmpGt, CmpLs, CmpGe, CmpLe,
		And, Or, Not,
		Jmp, JmpTrue, JmpFalse, JmpDynamic,
		Print, Read,
		Ret,
	}
}
