package dson

import "testing"

func TestRouteObjRoundTrip(t *testing.T) {
	addr := Address{FromServID: 1, FromCliID: 2, ToServID: 3, ToCliID: 4}
	r := NewRouteObj(11, addr)
	buf, err := r.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	got, err := FromBuf(buf)
	if err != nil {
		t.Fatal(err)
	}
	a, ok := ToAddress(got)
	if !ok {
		t.Fatalf("expected a route address")
	}
	if a != addr {
		t.Fatalf("got %+v, want %+v", a, addr)
	}
}

func TestRouteObjInContainerRoundTrip(t *testing.T) {
	addr := Address{FromServID: 1, FromCliID: 2, ToServID: 3, ToCliID: 4}
	d := New(1)
	if err := d.Insert(5, NewRouteObj(5, addr)); err != nil {
		t.Fatal(err)
	}
	buf, err := d.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	got, err := FromBuf(buf)
	if err != nil {
		t.Fatal(err)
	}
	child, ok, err := got.Get(5)
	if err != nil || !ok {
		t.Fatalf("Get(5): ok=%v err=%v", ok, err)
	}
	ro, ok := child.(*RouteObj)
	if !ok {
		t.Fatalf("expected *RouteObj, got %T", child)
	}
	if ro.Address() != addr {
		t.Fatalf("got %+v, want %+v", ro.Address(), addr)
	}
}

func TestSetReverseAddress(t *testing.T) {
	addr := Address{FromServID: 1, FromCliID: 2, ToServID: 3, ToCliID: 4}
	r := NewRouteObj(1, Address{})
	r.SetReverseAddress(addr)
	want := Address{FromServID: 3, FromCliID: 4, ToServID: 1, ToCliID: 2}
	if r.Address() != want {
		t.Fatalf("got %+v, want %+v", r.Address(), want)
	}
}
