package dson

// TypeMarker identifies the shape of a record's payload.
type TypeMarker int32

// Reserved markers. Library semantics are defined for these; a Container
// payload's children are walked and addressed by key, everything else is
// opaque bytes owned by the marker.
const (
	TypeEmpty     TypeMarker = 0
	TypeContainer TypeMarker = 1
	TypeString    TypeMarker = 2
	TypeInt32     TypeMarker = 3
	TypeUint32    TypeMarker = 4
	TypeInt64     TypeMarker = 5
	TypeUint64    TypeMarker = 6
	TypeUint32Vec TypeMarker = 7
)

// markerFloor is the lowest TypeMarker value a caller may register for its
// own types. Everything below it is reserved by the library (room is
// deliberately left above TypeUint32Vec for future library types).
const markerFloor TypeMarker = 50000

// IsReserved reports whether m falls in the library-reserved range.
func IsReserved(m TypeMarker) bool {
	return m < markerFloor
}
