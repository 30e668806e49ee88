package paracl

import "fmt"

// --- A general purpose interface for tokens --------------------------------

// TokType is a category type for a Token. We do not define any constants here, as
// it is up to scanners to define them.
type TokType int

// Tokens represent input tokens. They are produced by scanners, e.g. the one
// for the textual assembly format.
//
// An example would be a token for an integer operand:
//
//    TokType = Int         // identifier for this kind of tokens (scanner specific)
//    Lexeme  = "0x2a"      // lexeme how it appeared in the input stream
//    Value   = 42          // converted value, if any
//    Span    = 67…71       // occured from position 67 in the input stream
//
type Token interface {
	TokType() TokType
	Lexeme() string
	Value() interface{}
	Span() Span
}

// --- Spans ------------------------------------------------------------

// Span is a small type for capturing a length of input run. Syntax tree nodes
// and tokens track which input positions they cover. A span denotes a start
// position and the position just behind the end.
type Span [2]uint64 // (x…y)

// From returns the start value of a span.
func (s Span) From() uint64 {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() uint64 {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

// IsNull is true for the zero span, i.e. for items without position information.
func (s Span) IsNull() bool {
	return s == Span{}
}

// Extend returns a span covering both s and other.
func (s Span) Extend(other Span) Span {
	if s.IsNull() {
		return other
	}
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}

// Cell is the single runtime value type of the ParaCL machine: a signed 32-bit
// integer. Booleans are represented as 1 and 0.
type Cell = int32
