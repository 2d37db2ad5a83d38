package dson

import "sync"

// ConvertFunc flips a payload's byte order in place. buf holds exactly the
// record's data_size payload bytes.
type ConvertFunc func(buf []byte)

// converter pairs the two directions for one TypeMarker.
type converter struct {
	toHost    ConvertFunc
	toNetwork ConvertFunc
}

var (
	convMu    sync.Mutex
	convTable map[TypeMarker]converter
	convInit  bool
)

// RegisterConverter adds (or replaces) the pair of byte-order flip
// functions for a user-defined TypeMarker. It must be called before any
// Dson carrying that marker crosses a byte-order boundary; the table is
// read-only once the process starts converting values, so callers should
// register all of their types during program initialization.
//
// A marker with no registered converter is treated as opaque: its payload
// passes through a byte-order flip unchanged, which is correct for types
// such as strings that have no interior multi-byte fields.
func RegisterConverter(marker TypeMarker, toHost, toNetwork ConvertFunc) {
	convMu.Lock()
	defer convMu.Unlock()
	ensureConvTableLocked()
	convTable[marker] = converter{toHost: toHost, toNetwork: toNetwork}
}

func ensureConvTableLocked() {
	if convInit {
		return
	}
	convTable = make(map[TypeMarker]converter, 16)
	registerLibraryConverters()
	convInit = true
}

// registerLibraryConverters installs the converters the library itself
// owns: the fixed-width reserved numeric types and the uint32 vector. No
// converter is registered for TypeString or TypeContainer: a container's
// children carry their own markers and convert themselves, and string
// bytes have no interior structure to flip.
func registerLibraryConverters() {
	convTable[TypeInt32] = converter{toHost: flip32, toNetwork: flip32}
	convTable[TypeUint32] = converter{toHost: flip32, toNetwork: flip32}
	convTable[TypeInt64] = converter{toHost: flip64, toNetwork: flip64}
	convTable[TypeUint64] = converter{toHost: flip64, toNetwork: flip64}
	convTable[TypeUint32Vec] = converter{toHost: flipUint32Vec, toNetwork: flipUint32Vec}
}

// lookupConverter returns the converter registered for marker, if any.
func lookupConverter(marker TypeMarker) (converter, bool) {
	convMu.Lock()
	defer convMu.Unlock()
	ensureConvTableLocked()
	c, ok := convTable[marker]
	return c, ok
}

// convertPayload flips buf in place for marker, towards network order when
// toNetwork is true and towards host order otherwise. A marker with no
// converter is left alone.
func convertPayload(marker TypeMarker, buf []byte, toNetwork bool) {
	c, ok := lookupConverter(marker)
	if !ok {
		return
	}
	if toNetwork {
		c.toNetwork(buf)
	} else {
		c.toHost(buf)
	}
}

func flip32(buf []byte) {
	if len(buf) < 4 {
		return
	}
	v := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	v = swap32(v)
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}

func flip64(buf []byte) {
	if len(buf) < 8 {
		return
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(buf[i]) << (8 * i)
	}
	v = swap64(v)
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
}

// flipUint32Vec flips every 4-byte element of a []uint32 payload, matching
// the original's per-element ntohl/htonl loop keyed on data_size/4.
func flipUint32Vec(buf []byte) {
	n := len(buf) / 4
	for i := 0; i < n; i++ {
		flip32(buf[i*4 : i*4+4])
	}
}
