package vm

import (
	"errors"
	"fmt"

	"github.com/ajlekcahdp4/paracl-interpreter-sub000/isa"
)

// Error kinds of the virtual machine. Every one of them is fatal to the current
// execution; they surface wrapped into a *RuntimeError.
var (
	ErrUnknownOpcode  = isa.ErrUnknownOpcode
	ErrTruncated      = isa.ErrTruncated
	ErrStackUnderflow = errors.New("stack underflow")
	ErrDivisionByZero = errors.New("division by zero")
	ErrCodeOverrun    = errors.New("instruction pointer ran past end of code")
	ErrBadJump        = errors.New("jump target out of code range")
	ErrBadSlot        = errors.New("stack slot out of range")
	ErrBadConstant    = errors.New("constant index out of range")
	ErrBadInput       = errors.New("malformed integer input")
	ErrHalted         = errors.New("machine is halted")
	ErrStackNotEmpty  = errors.New("execution stack not empty at halt")
)

// RuntimeError is the error type returned by Step and Run. It carries the
// name of the instruction that failed (if known) and the location of the
// instruction.
type RuntimeError struct {
	Op  string
	IP  int
	Err error
}

func (e *RuntimeError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("vm: at 0x%04x: %v", e.IP, e.Err)
	}
	return fmt.Sprintf("vm: %s at 0x%04x: %v", e.Op, e.IP, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
