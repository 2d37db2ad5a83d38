package dson

import "encoding/binary"

// NewInt32 creates a value wrapping a single int32.
func NewInt32(key int32, v int32) *Dson {
	buf := make([]byte, 4)
	binary.NativeEndian.PutUint32(buf, uint32(v))
	return NewValue(key, TypeInt32, buf)
}

// NewUint32 creates a value wrapping a single uint32.
func NewUint32(key int32, v uint32) *Dson {
	buf := make([]byte, 4)
	binary.NativeEndian.PutUint32(buf, v)
	return NewValue(key, TypeUint32, buf)
}

// NewInt64 creates a value wrapping a single int64.
func NewInt64(key int32, v int64) *Dson {
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint64(buf, uint64(v))
	return NewValue(key, TypeInt64, buf)
}

// NewUint64 creates a value wrapping a single uint64.
func NewUint64(key int32, v uint64) *Dson {
	buf := make([]byte, 8)
	binary.NativeEndian.PutUint64(buf, v)
	return NewValue(key, TypeUint64, buf)
}

// NewUint32Vec creates a value wrapping a []uint32, convertible element by
// element through the registered TypeUint32Vec converter.
func NewUint32Vec(key int32, v []uint32) *Dson {
	buf := make([]byte, 4*len(v))
	for i, e := range v {
		binary.NativeEndian.PutUint32(buf[i*4:i*4+4], e)
	}
	return NewValue(key, TypeUint32Vec, buf)
}
