package dson

import "encoding/binary"

// markHostOrder is written into byte_order_mark by a sender in its own
// (host) byte order. A reader that sees anything else knows the record
// arrived in the opposite order and byte-swaps the header fields before
// trusting them.
const markHostOrder uint32 = 1

// markNetworkOrder is markHostOrder as it would appear if the sender wrote
// it in the other order.
var markNetworkOrder = swap32(markHostOrder)

// headerSize is the wire size of a header: four uint32/int32 fields.
const headerSize = 16
const headerWords = 4

// MaxRAMSize bounds how many payload bytes a single Dson may allocate
// across load/parse. Exceeding it yields Error rather than an unbounded
// allocation.
var MaxRAMSize int64 = 1 << 30 // 1 GiB

// Header is the 16-byte record prefix: byte order mark, payload size, the
// caller-assigned key and the TypeMarker describing the payload.
type Header struct {
	ByteOrderMark uint32
	DataSize      int32
	Key           int32
	DataType      TypeMarker
}

// isNetworkOrder reports whether h, as currently held, is in network order.
func (h Header) isNetworkOrder() bool {
	return h.ByteOrderMark != markHostOrder
}

// swapped returns h with every field byte-swapped.
func (h Header) swapped() Header {
	return Header{
		ByteOrderMark: swap32(h.ByteOrderMark),
		DataSize:      int32(swap32(uint32(h.DataSize))),
		Key:           int32(swap32(uint32(h.Key))),
		DataType:      TypeMarker(swap32(uint32(h.DataType))),
	}
}

// toHost returns h normalized to host order.
func (h Header) toHost() Header {
	if h.isNetworkOrder() {
		return h.swapped()
	}
	return h
}

// toNetwork returns h normalized to network order.
func (h Header) toNetwork() Header {
	if !h.isNetworkOrder() {
		return h.swapped()
	}
	return h
}

// encodeInto writes h's current field values (in whatever order they are
// currently held) into buf[:headerSize] using the machine's native layout.
func (h Header) encodeInto(buf []byte) {
	_ = buf[headerSize-1]
	binary.NativeEndian.PutUint32(buf[0:4], h.ByteOrderMark)
	binary.NativeEndian.PutUint32(buf[4:8], uint32(h.DataSize))
	binary.NativeEndian.PutUint32(buf[8:12], uint32(h.Key))
	binary.NativeEndian.PutUint32(buf[12:16], uint32(h.DataType))
}

// decodeHeader reads a header out of buf[:headerSize] verbatim (no
// byte-swap); the caller decides whether to normalize based on
// ByteOrderMark.
func decodeHeader(buf []byte) Header {
	_ = buf[headerSize-1]
	return Header{
		ByteOrderMark: binary.NativeEndian.Uint32(buf[0:4]),
		DataSize:      int32(binary.NativeEndian.Uint32(buf[4:8])),
		Key:           int32(binary.NativeEndian.Uint32(buf[8:12])),
		DataType:      TypeMarker(binary.NativeEndian.Uint32(buf[12:16])),
	}
}

func swap32(v uint32) uint32 {
	return (v&0x000000ff)<<24 | (v&0x0000ff00)<<8 | (v&0x00ff0000)>>8 | (v&0xff000000)>>24
}

func swap64(v uint64) uint64 {
	return (v&0x00000000000000ff)<<56 |
		(v&0x000000000000ff00)<<40 |
		(v&0x0000000000ff0000)<<24 |
		(v&0x00000000ff000000)<<8 |
		(v&0x000000ff00000000)>>8 |
		(v&0x0000ff0000000000)>>24 |
		(v&0x00ff000000000000)>>40 |
		(v&0xff00000000000000)>>56
}
