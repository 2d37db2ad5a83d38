package dson

import (
	"math"
	"testing"
)

func TestFloat64RoundTrip(t *testing.T) {
	cases := []float64{0, 1, -1, 3.1415926, -100.0000001, 1e9}
	for _, c := range cases {
		d := NewFloat64(1, c)
		buf, err := d.Bytes()
		if err != nil {
			t.Fatal(err)
		}
		got, err := FromBuf(buf)
		if err != nil {
			t.Fatal(err)
		}
		v, err := ToFloat64(got)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(v-c) > 1e-6 {
			t.Fatalf("got %v, want %v", v, c)
		}
	}
}

func TestFloat64Saturates(t *testing.T) {
	d := NewFloat64(1, math.MaxFloat64)
	v, err := ToFloat64(d)
	if err != nil {
		t.Fatal(err)
	}
	if v <= 0 {
		t.Fatalf("expected a large positive saturated value, got %v", v)
	}
}
