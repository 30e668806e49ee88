package codegen

import (
	"fmt"

	"github.com/ajlekcahdp4/paracl-interpreter-sub000/symtab"
)

// This module implements a stack of slot frames.
// Slot frames map the variables of active scopes to stack slots while code
// for the scopes is generated.

// addressing tells how an instruction reaches a stack slot.
type addressing int8

const (
	relative addressing = iota // slot relative to the stack pointer register
	absolute                   // slot counted from the bottom of the stack
)

// slot is the location of a variable on the execution stack.
type slot struct {
	mode   addressing
	offset int
}

// SlotFrame represents the stack slots of one scope.
type SlotFrame struct {
	Name     string
	Scope    *symtab.Scope
	Base     int  // relative slot of the first variable of the scope
	Function bool // parameter frame of a function
	Parent   *SlotFrame
}

func newSlotFrame(nm string, scope *symtab.Scope, base int) *SlotFrame {
	return &SlotFrame{
		Name:  nm,
		Scope: scope,
		Base:  base,
	}
}

func (sf *SlotFrame) String() string {
	return fmt.Sprintf("<frame %s @%d -> %v>", sf.Name, sf.Base, sf.Scope)
}

// IsRoot is a predicate: is this a root frame?
func (sf *SlotFrame) IsRoot() bool {
	return sf.Parent == nil
}

// Size returns the number of stack slots the frame reserves when entered.
// Parameter frames reserve nothing, the caller pushes the arguments.
func (sf *SlotFrame) Size() int {
	if sf.Function {
		return 0
	}
	return sf.Scope.Symbols().Size()
}

// lookup finds the slot of a variable declared in this frame's scope.
func (sf *SlotFrame) lookup(name string) (slot, bool) {
	sym := sf.Scope.Symbols().Resolve(name)
	if sym == nil {
		return slot{}, false
	}
	if sf.Function {
		n := sf.Scope.Symbols().Size()
		return slot{mode: relative, offset: -(n - sym.Index)}, true
	}
	return slot{mode: relative, offset: sf.Base + sym.Index}, true
}

// ---------------------------------------------------------------------------

// SlotFrameStack is a stack of slot frames, mirroring the scopes entered during
// code generation.
type SlotFrameStack struct {
	frameBase *SlotFrame
	frameTOS  *SlotFrame
}

// Current gets the current slot frame of a stack (TOS).
func (sfst *SlotFrameStack) Current() *SlotFrame {
	if sfst.frameTOS == nil {
		panic(internalError("attempt to access slot frame from empty stack"))
	}
	return sfst.frameTOS
}

// Globals gets the outermost slot frame, containing global variables.
func (sfst *SlotFrameStack) Globals() *SlotFrame {
	if sfst.frameBase == nil {
		panic(internalError("attempt to access global slot frame from empty stack"))
	}
	return sfst.frameBase
}

// Depth returns the number of slots reserved by the frames of the current
// function, or by all frames at top level.
func (sfst *SlotFrameStack) Depth() int {
	d := 0
	for sf := sfst.frameTOS; sf != nil && !sf.Function; sf = sf.Parent {
		d += sf.Size()
	}
	return d
}

// PushNewSlotFrame pushes a frame for a scope, placing its slots right above
// the slots of the current function's active frames.
func (sfst *SlotFrameStack) PushNewSlotFrame(nm string, scope *symtab.Scope) *SlotFrame {
	if scope == nil {
		panic(internalError(fmt.Sprintf("no scope attached to %s", nm)))
	}
	sf := newSlotFrame(nm, scope, sfst.Depth())
	sf.Parent = sfst.frameTOS
	if sf.Parent == nil { // the new frame is the global frame
		sfst.frameBase = sf
	}
	sfst.frameTOS = sf
	tracer().P("frame", sf.Name).Debugf("pushing slot frame at base %d", sf.Base)
	return sf
}

// PushParamFrame pushes the parameter frame of a function. Slots of frames
// pushed afterwards start at the function's frame base.
func (sfst *SlotFrameStack) PushParamFrame(nm string, scope *symtab.Scope) *SlotFrame {
	sf := sfst.PushNewSlotFrame(nm, scope)
	sf.Function = true
	sf.Base = 0
	return sf
}

// PopSlotFrame pops the top-most slot frame. Returns the popped frame.
func (sfst *SlotFrameStack) PopSlotFrame() *SlotFrame {
	if sfst.frameTOS == nil {
		panic(internalError("attempt to pop slot frame from empty stack"))
	}
	sf := sfst.frameTOS
	tracer().Debugf("popping slot frame [%s]", sf.Name)
	sfst.frameTOS = sf.Parent
	return sf
}

// InFunction is a predicate: is code for a function body being generated?
func (sfst *SlotFrameStack) InFunction() bool {
	return sfst.FunctionFrame() != nil
}

// FunctionFrame returns the parameter frame of the current function, or nil.
func (sfst *SlotFrameStack) FunctionFrame() *SlotFrame {
	for sf := sfst.frameTOS; sf != nil; sf = sf.Parent {
		if sf.Function {
			return sf
		}
	}
	return nil
}

// Resolve finds the slot of a variable visible from the current frame. Within
// a function, the search ends at the function's parameter frame and continues
// with the global frame, which is addressed absolutely.
func (sfst *SlotFrameStack) Resolve(name string) (slot, bool) {
	for sf := sfst.frameTOS; sf != nil; sf = sf.Parent {
		if s, ok := sf.lookup(name); ok {
			return s, true
		}
		if sf.Function {
			g := sfst.Globals()
			if s, ok := g.lookup(name); ok {
				s.mode = absolute
				return s, true
			}
			break
		}
	}
	return slot{}, false
}
