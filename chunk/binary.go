package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
)

// Magic is the header every binary chunk starts with.
var Magic = [6]byte{0x0B, 0x00, 0x00, 0x0B, 0x0E, 0x0C}

// HeaderSize is the size of the fixed part of a binary chunk: magic and two lengths.
const HeaderSize = len(Magic) + 4 + 4

// Load errors. Read wraps them with positional details.
var (
	ErrMagic     = errors.New("incorrect magic byte header")
	ErrTruncated = errors.New("truncated chunk data")
	ErrSize      = errors.New("chunk size mismatch")
)

// BinarySize returns the number of bytes WriteTo will produce for c.
func (c *Chunk) BinarySize() int {
	return HeaderSize + 4*len(c.constants) + len(c.code)
}

// WriteTo writes c in binary format to w. It implements io.WriterTo.
func (c *Chunk) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 0, c.BinarySize())
	buf = append(buf, Magic[:]...)
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], uint32(len(c.constants)))
	buf = append(buf, word[:]...)
	binary.LittleEndian.PutUint32(word[:], uint32(len(c.code)))
	buf = append(buf, word[:]...)
	for _, k := range c.constants {
		binary.LittleEndian.PutUint32(word[:], uint32(k))
		buf = append(buf, word[:]...)
	}
	buf = append(buf, c.code...)
	n, err := w.Write(buf)
	return int64(n), err
}

// Read reads a binary chunk from r, consuming r completely.
//
// A wrong magic header, truncated input or trailing data are reported as an
// error and no chunk is returned. Read never panics on malformed input.
func Read(r io.Reader) (*Chunk, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		tracer().Errorf("cannot read chunk: %v", err)
		return nil, err
	}
	c, err := Decode(data)
	if err != nil {
		tracer().Errorf("%v", err)
		return nil, err
	}
	return c, nil
}

// Decode decodes a chunk from a byte slice holding exactly one binary chunk.
func Decode(data []byte) (*Chunk, error) {
	if len(data) < len(Magic) {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrTruncated, len(data), HeaderSize)
	}
	for i, b := range Magic {
		if data[i] != b {
			return nil, ErrMagic
		}
	}
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrTruncated, len(data), HeaderSize)
	}
	pos := len(Magic)
	n := int(binary.LittleEndian.Uint32(data[pos:]))
	pos += 4
	l := int(binary.LittleEndian.Uint32(data[pos:]))
	pos += 4
	expected := uint64(HeaderSize) + 4*uint64(n) + uint64(l)
	if uint64(len(data)) < expected {
		return nil, fmt.Errorf("%w: have %d bytes, need %d for %d constants and %d bytes of code",
			ErrTruncated, len(data), expected, n, l)
	}
	if uint64(len(data)) > expected {
		return nil, fmt.Errorf("%w: have %d bytes, expected exactly %d", ErrSize, len(data), expected)
	}
	c := &Chunk{
		constants: make([]paracl.Cell, n),
		code:      make([]byte, l),
	}
	for i := range c.constants {
		c.constants[i] = paracl.Cell(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
	}
	copy(c.code, data[pos:])
	tracer().Debugf("decoded chunk with %d constants and %d bytes of code", n, l)
	return c, nil
}
