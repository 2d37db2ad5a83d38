package dson

import (
	"bytes"
	"testing"
)

func TestRoundTripScalarHostOrder(t *testing.T) {
	d := NewInt32(5, -42)
	buf, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	got, err := FromBuf(buf)
	if err != nil {
		t.Fatalf("FromBuf: %v", err)
	}
	n, err := ToInt32(got)
	if err != nil {
		t.Fatalf("ToInt32: %v", err)
	}
	if n != -42 {
		t.Fatalf("got %d, want -42", n)
	}
	if got.Key() != 5 {
		t.Fatalf("got key %d, want 5", got.Key())
	}
}

func TestRoundTripNetworkOrder(t *testing.T) {
	d := NewUint32(1, 0xdeadbeef)
	var buf bytes.Buffer
	if err := d.CopyToStreamNetworkOrder(&buf); err != nil {
		t.Fatalf("CopyToStreamNetworkOrder: %v", err)
	}
	got, err := FromBuf(buf.Bytes())
	if err != nil {
		t.Fatalf("FromBuf: %v", err)
	}
	if !got.IsNetworkOrder() {
		t.Fatalf("expected value to still be in network order before Map()")
	}
	v, err := ToUint32(got)
	if err != nil {
		t.Fatalf("ToUint32: %v", err)
	}
	if v != 0xdeadbeef {
		t.Fatalf("got %x, want deadbeef", v)
	}
}

func TestContainerRoundTrip(t *testing.T) {
	d := New(100)
	if err := d.Insert(1, NewString(1, "hello")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := d.Insert(2, NewInt32(2, 7)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	buf, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	got, err := FromBuf(buf)
	if err != nil {
		t.Fatalf("FromBuf: %v", err)
	}
	s, ok, err := got.Get(1)
	if err != nil || !ok {
		t.Fatalf("Get(1): ok=%v err=%v", ok, err)
	}
	so, ok := s.(*StringObj)
	if !ok {
		t.Fatalf("expected *StringObj, got %T", s)
	}
	if so.Value() != "hello" {
		t.Fatalf("got %q, want hello", so.Value())
	}

	n, ok, err := got.Get(2)
	if err != nil || !ok {
		t.Fatalf("Get(2): ok=%v err=%v", ok, err)
	}
	v, err := ToInt32(n)
	if err != nil || v != 7 {
		t.Fatalf("got %d err=%v, want 7", v, err)
	}
}

func TestLastWriteWinsOnDuplicateKey(t *testing.T) {
	d := New(1)
	if err := d.Insert(1, NewInt32(1, 10)); err != nil {
		t.Fatal(err)
	}
	if err := d.Insert(1, NewInt32(1, 20)); err != nil {
		t.Fatal(err)
	}
	if d.Len() != 1 {
		t.Fatalf("expected 1 child after duplicate insert, got %d", d.Len())
	}
	got, ok, err := d.Get(1)
	if err != nil || !ok {
		t.Fatal(err)
	}
	v, _ := ToInt32(got)
	if v != 20 {
		t.Fatalf("got %d, want 20 (last write should win)", v)
	}
}

func TestPromotionOnInsert(t *testing.T) {
	d := NewValue(9, TypeInt32, []byte{1, 0, 0, 0})
	if d.Len() != 0 {
		t.Fatalf("fresh OneObjectInBuf should have no children")
	}
	if err := d.Insert(2, NewInt32(2, 55)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if d.DataType() != TypeContainer {
		t.Fatalf("expected promotion to Container, got %v", d.DataType())
	}
	orig, ok, err := d.Get(9)
	if err != nil || !ok {
		t.Fatalf("expected former payload to survive promotion as child 9: ok=%v err=%v", ok, err)
	}
	v, err := ToInt32(orig)
	if err != nil || v != 1 {
		t.Fatalf("got %d err=%v, want 1", v, err)
	}
}

func TestLazyParseNestedContainer(t *testing.T) {
	inner := New(2)
	if err := inner.Insert(1, NewString(1, "nested")); err != nil {
		t.Fatal(err)
	}
	outer := New(1)
	if err := outer.Insert(2, inner); err != nil {
		t.Fatal(err)
	}
	buf, err := outer.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	got, err := FromBuf(buf)
	if err != nil {
		t.Fatal(err)
	}
	child, ok, err := got.Get(2)
	if err != nil || !ok {
		t.Fatalf("Get(2): ok=%v err=%v", ok, err)
	}
	childDson, ok := child.(*Dson)
	if !ok {
		t.Fatalf("expected nested *Dson, got %T", child)
	}
	s, ok, err := childDson.Get(1)
	if err != nil || !ok {
		t.Fatalf("Get(1) in nested container: ok=%v err=%v", ok, err)
	}
	if s.(*StringObj).Value() != "nested" {
		t.Fatalf("got %q", s.(*StringObj).Value())
	}
}

func TestResidualBytesIsFramingError(t *testing.T) {
	d := New(1)
	buf, err := d.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	buf = append(buf, 0x01) // one stray byte, not a complete header
	got, err := FromBuf(buf)
	if err != nil {
		t.Fatalf("FromBuf should accept the outer record itself: %v", err)
	}
	// Force-feed a residual byte directly into a container payload to
	// exercise parseBuf's own residual check.
	got.kind = kindDataBufNeedParse
	got.payload = []byte{0x01}
	if err := got.Map(); err == nil {
		t.Fatalf("expected framing error for residual bytes")
	}
}

func TestAllocationBoundRejected(t *testing.T) {
	prev := MaxRAMSize
	MaxRAMSize = 8
	defer func() { MaxRAMSize = prev }()

	var hdr [headerSize]byte
	h := Header{ByteOrderMark: markHostOrder, DataSize: 1 << 20, Key: 1, DataType: TypeInt32}
	h.encodeInto(hdr[:])
	r := bytes.NewReader(hdr[:])

	var d Dson
	if err := d.LoadFromStream(r); err == nil {
		t.Fatalf("expected allocation-bound error")
	}
}

func TestUint32VecRoundTrip(t *testing.T) {
	d := NewUint32Vec(1, []uint32{1, 2, 3, 4})
	var buf bytes.Buffer
	if err := d.CopyToStreamNetworkOrder(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := FromBuf(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	v, err := ToUint32Vec(got)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{1, 2, 3, 4}
	if len(v) != len(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("got %v, want %v", v, want)
		}
	}
}

func TestContainerRoundTripNetworkOrder(t *testing.T) {
	d := New(100)
	if err := d.Insert(1, NewString(1, "hello")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := d.Insert(2, NewInt32(2, 7)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	var buf bytes.Buffer
	if err := d.CopyToStreamNetworkOrder(&buf); err != nil {
		t.Fatalf("CopyToStreamNetworkOrder: %v", err)
	}

	got, err := FromBuf(buf.Bytes())
	if err != nil {
		t.Fatalf("FromBuf: %v", err)
	}
	if !got.IsNetworkOrder() {
		t.Fatalf("expected outer header to still read as network order before Map()")
	}
	s, ok, err := got.Get(1)
	if err != nil || !ok {
		t.Fatalf("Get(1): ok=%v err=%v", ok, err)
	}
	so, ok := s.(*StringObj)
	if !ok {
		t.Fatalf("expected *StringObj, got %T", s)
	}
	if so.Value() != "hello" {
		t.Fatalf("got %q, want hello", so.Value())
	}

	n, ok, err := got.Get(2)
	if err != nil || !ok {
		t.Fatalf("Get(2): ok=%v err=%v", ok, err)
	}
	v, err := ToInt32(n)
	if err != nil || v != 7 {
		t.Fatalf("got %d err=%v, want 7", v, err)
	}
}

// TestCopyOutOppositeOrderReparses exercises prepareForCopy's lazy-parse
// trigger: a kindDataBufNeedParse container held in host order, copied out
// in network order (the opposite of the order it is currently held in),
// must have its children individually flipped rather than being emitted
// verbatim under a header that disagrees with the payload.
func TestCopyOutOppositeOrderReparses(t *testing.T) {
	d := New(100)
	if err := d.Insert(1, NewString(1, "hello")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := d.Insert(2, NewInt32(2, 7)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	hostBuf, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	held, err := FromBuf(hostBuf)
	if err != nil {
		t.Fatalf("FromBuf: %v", err)
	}
	if held.kind != kindDataBufNeedParse {
		t.Fatalf("expected FromBuf to leave a container as kindDataBufNeedParse, got kind %v", held.kind)
	}
	if !held.IsHostOrder() {
		t.Fatalf("expected held value to still be host order")
	}

	var netBuf bytes.Buffer
	if err := held.CopyToStreamNetworkOrder(&netBuf); err != nil {
		t.Fatalf("CopyToStreamNetworkOrder: %v", err)
	}

	got, err := FromBuf(netBuf.Bytes())
	if err != nil {
		t.Fatalf("FromBuf: %v", err)
	}
	if !got.IsNetworkOrder() {
		t.Fatalf("expected re-emitted buffer to read as network order")
	}
	s, ok, err := got.Get(1)
	if err != nil || !ok {
		t.Fatalf("Get(1): ok=%v err=%v", ok, err)
	}
	if s.(*StringObj).Value() != "hello" {
		t.Fatalf("got %q, want hello", s.(*StringObj).Value())
	}
	n, ok, err := got.Get(2)
	if err != nil || !ok {
		t.Fatalf("Get(2): ok=%v err=%v", ok, err)
	}
	v, err := ToInt32(n)
	if err != nil || v != 7 {
		t.Fatalf("got %d err=%v, want 7", v, err)
	}
}

func TestRemove(t *testing.T) {
	d := New(1)
	if err := d.Insert(1, NewInt32(1, 1)); err != nil {
		t.Fatal(err)
	}
	if err := d.Insert(2, NewInt32(2, 2)); err != nil {
		t.Fatal(err)
	}
	if err := d.Remove(1); err != nil {
		t.Fatal(err)
	}
	if d.Len() != 1 {
		t.Fatalf("got %d children, want 1", d.Len())
	}
	if _, ok, _ := d.Get(1); ok {
		t.Fatalf("expected key 1 to be gone")
	}
}
