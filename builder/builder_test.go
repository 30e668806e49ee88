package builder

import (
	"testing"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/ajlekcahdp4/paracl-interpreter-sub000/isa"
	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestEmitLocations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.builder")
	defer teardown()
	//
	b := New()
	if b.CurrentLoc() != 0 {
		t.Errorf("expected empty builder to start at location 0")
	}
	l1 := b.Emit(isa.PushConst, 1)
	l2 := b.Emit(isa.Print)
	l3 := b.Emit(isa.Ret)
	if l1 != 0 || l2 != 5 || l3 != 6 {
		t.Errorf("expected locations 0, 5, 6, have %d, %d, %d", l1, l2, l3)
	}
	if b.CurrentLoc() != 7 {
		t.Errorf("expected next location to be 7, have %d", b.CurrentLoc())
	}
	c := b.Chunk([]paracl.Cell{0, 42})
	expected := []byte{0x01, 0x01, 0x00, 0x00, 0x00, 0x50, 0x60}
	if diff := cmp.Diff(expected, c.Code()); diff != "" {
		t.Errorf("code mismatch (-want +got):\n%s", diff)
	}
	b.Emit(isa.Pop)
	if c.CodeLen() != 7 {
		t.Errorf("chunk must not change when builder continues to emit")
	}
}

func TestBackPatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.builder")
	defer teardown()
	//
	b := New()
	b.Emit(isa.PushConst, 0)
	jf := b.Emit(isa.JmpFalse, 0)
	b.Emit(isa.PushConst, 1)
	b.Emit(isa.Print)
	target := b.CurrentLoc()
	b.Emit(isa.Ret)
	ops := b.GetAs(isa.JmpFalse, jf)
	if ops.Count() != 1 || ops.Get(0) != 0 {
		t.Fatalf("expected placeholder target 0, have %d", ops.Get(0))
	}
	ops.Set(0, int64(target))
	if v := b.GetAs(isa.JmpFalse, jf).Get(0); v != int64(target) {
		t.Errorf("expected patched target %d, have %d", target, v)
	}
	ins, err := isa.ParaCL().DecodeAt(b.Chunk(nil).Code(), int(jf))
	if err != nil {
		t.Fatal(err)
	}
	if ins.Attr(0) != int64(target) {
		t.Errorf("expected decoded target %d, have %d", target, ins.Attr(0))
	}
}

func TestPatchAfterGrowth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.builder")
	defer teardown()
	//
	b := New()
	j := b.Emit(isa.Jmp, 0)
	ops := b.GetAs(isa.Jmp, j)
	for i := 0; i < 1000; i++ { // forces the code buffer to be reallocated
		b.Emit(isa.PushConst, int64(i))
	}
	target := b.Emit(isa.Ret)
	ops.Set(0, int64(target))
	if v := ops.Get(0); v != int64(target) {
		t.Errorf("expected view to read patched target %d, have %d", target, v)
	}
	ins, err := isa.ParaCL().DecodeAt(b.Chunk(nil).Code(), int(j))
	if err != nil {
		t.Fatal(err)
	}
	if v := ins.Attr(0); v != int64(target) {
		t.Errorf("expected patched jump target %d in chunk, have %d", target, v)
	}
}

func TestGetAsMismatchPanics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "paracl.builder")
	defer teardown()
	//
	b := New()
	loc := b.Emit(isa.Jmp, 0)
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected GetAs with wrong descriptor to panic")
		}
	}()
	b.GetAs(isa.JmpFalse, loc)
}

func TestGetAsOutOfRangePanics(t *testing.T) {
	b := New()
	b.Emit(isa.Pop)
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected GetAs beyond code to panic")
		}
	}()
	b.GetAs(isa.Jmp, 0)
}
