package chunk

import (
	"bytes"
	"errors"
	"testing"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func sampleChunk() *Chunk {
	return New([]byte{0x01, 0x01, 0x00, 0x00, 0x00, 0x50, 0x60}, []paracl.Cell{0, 42, -11})
}

func TestBinaryLayout(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.chunk")
	defer teardown()
	//
	var buf bytes.Buffer
	n, err := sampleChunk().WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	expected := []byte{
		0x0B, 0x00, 0x00, 0x0B, 0x0E, 0x0C, // magic
		0x03, 0x00, 0x00, 0x00, // N
		0x07, 0x00, 0x00, 0x00, // L
		0x00, 0x00, 0x00, 0x00, // 0
		0x2a, 0x00, 0x00, 0x00, // 42
		0xf5, 0xff, 0xff, 0xff, // -11
		0x01, 0x01, 0x00, 0x00, 0x00, 0x50, 0x60,
	}
	if int(n) != len(expected) {
		t.Errorf("expected %d bytes to be written, have %d", len(expected), n)
	}
	if diff := cmp.Diff(expected, buf.Bytes()); diff != "" {
		t.Errorf("binary layout mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.chunk")
	defer teardown()
	//
	c := sampleChunk()
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != c.BinarySize() {
		t.Errorf("expected binary size %d, have %d", c.BinarySize(), buf.Len())
	}
	d, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Equal(d) {
		t.Errorf("expected %v to equal %v after round trip", d, c)
	}
	if diff := cmp.Diff(c.Constants(), d.Constants()); diff != "" {
		t.Errorf("constant pool differs (-want +got):\n%s", diff)
	}
}

func TestCorruptedMagic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.chunk")
	defer teardown()
	//
	var buf bytes.Buffer
	sampleChunk().WriteTo(&buf)
	data := buf.Bytes()
	data[0] = 0x0C
	c, err := Read(bytes.NewReader(data))
	if c != nil {
		t.Errorf("expected no chunk for corrupted header, have %v", c)
	}
	if !errors.Is(err, ErrMagic) {
		t.Errorf("expected magic header error, have %v", err)
	}
	if err.Error() != "incorrect magic byte header" {
		t.Errorf("unexpected diagnostic %q", err.Error())
	}
}

func TestMalformedSizes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.chunk")
	defer teardown()
	//
	var buf bytes.Buffer
	sampleChunk().WriteTo(&buf)
	good := buf.Bytes()
	cases := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", []byte{}, ErrTruncated},
		{"header only", good[:HeaderSize-1], ErrTruncated},
		{"truncated constants", good[:HeaderSize+5], ErrTruncated},
		{"truncated code", good[:len(good)-1], ErrTruncated},
		{"trailing byte", append(append([]byte{}, good...), 0x00), ErrSize},
	}
	for _, tc := range cases {
		c, err := Decode(tc.data)
		if c != nil || !errors.Is(err, tc.err) {
			t.Errorf("%s: expected (nil, %v), have (%v, %v)", tc.name, tc.err, c, err)
		}
	}
}

func TestConstantBounds(t *testing.T) {
	c := sampleChunk()
	if k, err := c.Constant(1); err != nil || k != 42 {
		t.Errorf("expected constant #1 to be 42, have %d (%v)", k, err)
	}
	if _, err := c.Constant(3); err == nil {
		t.Errorf("expected error for constant index out of range")
	}
	consts := c.Constants()
	consts[0] = 99
	if k, _ := c.Constant(0); k != 0 {
		t.Errorf("chunk must not be mutable through Constants()")
	}
}
