package dson

import (
	"encoding/binary"
	"fmt"
)

// The functions below implement the package's conversion helpers: reading
// a generic Dson's opaque payload back out as a concrete Go value, with the
// narrow set of widenings that make sense for a self-describing format (a
// narrower integer type always widens cleanly; a wider one never narrows
// implicitly).

func payloadOf(obj DsonObj) ([]byte, TypeMarker, error) {
	d, ok := obj.(*Dson)
	if !ok {
		return nil, 0, fmt.Errorf("%w: not a scalar value", ErrMisuse)
	}
	if err := d.Map(); err != nil {
		return nil, 0, err
	}
	if d.kind == kindContainer {
		return nil, 0, fmt.Errorf("%w: value is a container", ErrMisuse)
	}
	return d.payload, d.header.DataType, nil
}

// ToInt32 reads obj as an int32. TypeInt32 matches exactly.
func ToInt32(obj DsonObj) (int32, error) {
	buf, typ, err := payloadOf(obj)
	if err != nil {
		return 0, err
	}
	if typ != TypeInt32 || len(buf) < 4 {
		return 0, fmt.Errorf("%w: not an int32", ErrMisuse)
	}
	return int32(binary.NativeEndian.Uint32(buf)), nil
}

// ToUint32 reads obj as a uint32.
func ToUint32(obj DsonObj) (uint32, error) {
	buf, typ, err := payloadOf(obj)
	if err != nil {
		return 0, err
	}
	if typ != TypeUint32 || len(buf) < 4 {
		return 0, fmt.Errorf("%w: not a uint32", ErrMisuse)
	}
	return binary.NativeEndian.Uint32(buf), nil
}

// ToInt64 reads obj as an int64, widening an int32 payload if that is what
// is actually stored.
func ToInt64(obj DsonObj) (int64, error) {
	buf, typ, err := payloadOf(obj)
	if err != nil {
		return 0, err
	}
	switch typ {
	case TypeInt64:
		if len(buf) < 8 {
			return 0, fmt.Errorf("%w: truncated int64", ErrMisuse)
		}
		return int64(binary.NativeEndian.Uint64(buf)), nil
	case TypeInt32:
		if len(buf) < 4 {
			return 0, fmt.Errorf("%w: truncated int32", ErrMisuse)
		}
		return int64(int32(binary.NativeEndian.Uint32(buf))), nil
	default:
		return 0, fmt.Errorf("%w: not an int32 or int64", ErrMisuse)
	}
}

// ToUint64 reads obj as a uint64, widening a uint32 payload if that is what
// is actually stored.
func ToUint64(obj DsonObj) (uint64, error) {
	buf, typ, err := payloadOf(obj)
	if err != nil {
		return 0, err
	}
	switch typ {
	case TypeUint64:
		if len(buf) < 8 {
			return 0, fmt.Errorf("%w: truncated uint64", ErrMisuse)
		}
		return binary.NativeEndian.Uint64(buf), nil
	case TypeUint32:
		if len(buf) < 4 {
			return 0, fmt.Errorf("%w: truncated uint32", ErrMisuse)
		}
		return uint64(binary.NativeEndian.Uint32(buf)), nil
	default:
		return 0, fmt.Errorf("%w: not a uint32 or uint64", ErrMisuse)
	}
}

// ToUint32Vec reads obj as a []uint32.
func ToUint32Vec(obj DsonObj) ([]uint32, error) {
	buf, typ, err := payloadOf(obj)
	if err != nil {
		return nil, err
	}
	if typ != TypeUint32Vec {
		return nil, fmt.Errorf("%w: not a uint32 vector", ErrMisuse)
	}
	n := len(buf) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = binary.NativeEndian.Uint32(buf[i*4 : i*4+4])
	}
	return out, nil
}

// ToString renders obj's scalar payload as a human-readable string. It
// never fails: a type it does not recognize is rendered as a byte count.
func ToString(obj DsonObj) string {
	switch v := obj.(type) {
	case *StringObj:
		return v.Value()
	case *RouteObj:
		a := v.Address()
		return fmt.Sprintf("route(%d:%d -> %d:%d)", a.FromServID, a.FromCliID, a.ToServID, a.ToCliID)
	case *Dson:
		switch v.DataType() {
		case TypeInt32:
			n, err := ToInt32(v)
			if err == nil {
				return fmt.Sprintf("%d", n)
			}
		case TypeUint32:
			n, err := ToUint32(v)
			if err == nil {
				return fmt.Sprintf("%d", n)
			}
		case TypeInt64:
			n, err := ToInt64(v)
			if err == nil {
				return fmt.Sprintf("%d", n)
			}
		case TypeUint64:
			n, err := ToUint64(v)
			if err == nil {
				return fmt.Sprintf("%d", n)
			}
		case TypeFloat64:
			f, err := ToFloat64(v)
			if err == nil {
				return fmt.Sprintf("%g", f)
			}
		}
		return fmt.Sprintf("<%d bytes, type %d>", v.DataSize(), v.DataType())
	default:
		return fmt.Sprintf("<%d bytes, type %d>", obj.DataSize(), obj.DataType())
	}
	return ""
}
