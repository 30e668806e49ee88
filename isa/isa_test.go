package isa

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestDescriptorRejectsEmptyName(t *testing.T) {
	if _, err := NewDescriptor(0x70, ""); err == nil {
		t.Errorf("expected descriptor with empty name to be rejected")
	}
	if _, err := NewDescriptor(0x70, "  "); err == nil {
		t.Errorf("expected descriptor with blank name to be rejected")
	}
	if _, err := NewDescriptor(0x00, "nop"); err == nil {
		t.Errorf("expected descriptor with opcode 0 to be rejected")
	}
	if _, err := NewDescriptor(0x70, "two", U32, U32); err == nil {
		t.Errorf("expected descriptor with two attributes to be rejected")
	}
}

func TestTableRejectsDuplicates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.isa")
	defer teardown()
	//
	a := MustDescriptor(0x70, "first")
	b := MustDescriptor(0x70, "second", U8)
	if _, err := NewTable(a, b); err == nil {
		t.Errorf("expected duplicate opcode 0x70 to be rejected")
	}
	if _, err := NewTable(a, nil); err == nil {
		t.Errorf("expected nil descriptor to be rejected")
	}
	tab, err := NewTable(a)
	if err != nil {
		t.Fatal(err)
	}
	if tab.Size() != 1 {
		t.Errorf("expected table size 1, have %d", tab.Size())
	}
}

func TestParaCLTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.isa")
	defer teardown()
	//
	tab := ParaCL()
	if tab != ParaCL() {
		t.Errorf("expected ParaCL table to be created once")
	}
	if tab.Size() != len(ParaCLDescriptors()) {
		t.Errorf("expected %d instructions, have %d", len(ParaCLDescriptors()), tab.Size())
	}
	if _, err := tab.Lookup(0); !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("expected opcode 0 to be unknown, have %v", err)
	}
	if _, err := tab.Lookup(0xee); !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("expected opcode 0xee to be unknown, have %v", err)
	}
	if d, err := tab.Lookup(0x23); err != nil || d != Div {
		t.Errorf("expected opcode 0x23 to be div, have %v", d)
	}
	if tab.ByName("jmp_false") != JmpFalse {
		t.Errorf("expected to find jmp_false by name")
	}
}

func TestBinarySizeMatchesEncoding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.isa")
	defer teardown()
	//
	ParaCL().Each(func(d *Descriptor) {
		attrs := make([]int64, d.AttrCount())
		for i := range attrs {
			attrs[i] = 7
		}
		code := d.Encode(nil, attrs...)
		if len(code) != d.BinarySize() {
			t.Errorf("%s: encoded %d bytes, binary size is %d", d.Name(), len(code), d.BinarySize())
		}
		ins, err := ParaCL().DecodeAt(code, 0)
		if err != nil {
			t.Errorf("%s: %v", d.Name(), err)
			return
		}
		if ins.Desc != d || ins.Size() != len(code) || ins.Next() != len(code) {
			t.Errorf("%s: decoded %v with size %d", d.Name(), ins, ins.Size())
		}
	})
}

func TestLittleEndianAttributes(t *testing.T) {
	code := MovLocalRel.Encode(nil, -3)
	expected := []byte{0x13, 0xfd, 0xff, 0xff, 0xff}
	if string(code) != string(expected) {
		t.Errorf("expected % x, have % x", expected, code)
	}
	ins, err := MovLocalRel.Decode(code, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ins.Attr(0) != -3 {
		t.Errorf("expected signed attribute -3, have %d", ins.Attr(0))
	}
	code = Jmp.Encode(nil, 0x01020304)
	if code[1] != 0x04 || code[4] != 0x01 {
		t.Errorf("expected little-endian jump target, have % x", code)
	}
	if ins.String() != "mov_local_rel -3" {
		t.Errorf("unexpected pretty print %q", ins.String())
	}
}

func TestDecodeTruncated(t *testing.T) {
	code := PushConst.Encode(nil, 1)
	_, err := ParaCL().DecodeAt(code[:3], 0)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("expected truncated instruction, have %v", err)
	}
	_, err = ParaCL().DecodeAt(code, len(code))
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("expected error decoding beyond end of code, have %v", err)
	}
	_, err = ParaCL().DecodeAt([]byte{0xab}, 0)
	if !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("expected unknown opcode, have %v", err)
	}
}

func TestDecodeOpcodeMismatch(t *testing.T) {
	code := Pop.Encode(nil)
	if _, err := Jmp.Decode(code, 0); !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("expected decoding pop as jmp to fail with unknown opcode, have %v", err)
	}
	ins, err := Pop.Decode(code, 0)
	if err != nil || ins.Desc != Pop {
		t.Errorf("expected pop to decode, have %v, %v", ins, err)
	}
}

func TestPutAttr(t *testing.T) {
	code := JmpFalse.Encode(nil, 0)
	JmpFalse.PutAttr(code, 0, 300)
	if v := JmpFalse.Attr(code, 0); v != 300 {
		t.Errorf("expected patched target 300, have %d", v)
	}
}
