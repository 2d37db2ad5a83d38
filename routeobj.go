package dson

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// TypeRoute is the user-defined marker for RouteObj, registered above
// markerFloor like any other application type.
const TypeRoute TypeMarker = markerFloor + 1

// addressSize is the wire size of an Address: four uint32 fields.
const addressSize = 16

// Address identifies a message's origin and destination in the star
// topology: which service and client it came from, and which service and
// client it is bound for.
type Address struct {
	FromServID uint32
	FromCliID  uint32
	ToServID   uint32
	ToCliID    uint32
}

func (a Address) encode(buf []byte) {
	binary.NativeEndian.PutUint32(buf[0:4], a.FromServID)
	binary.NativeEndian.PutUint32(buf[4:8], a.FromCliID)
	binary.NativeEndian.PutUint32(buf[8:12], a.ToServID)
	binary.NativeEndian.PutUint32(buf[12:16], a.ToCliID)
}

func decodeAddress(buf []byte) Address {
	return Address{
		FromServID: binary.NativeEndian.Uint32(buf[0:4]),
		FromCliID:  binary.NativeEndian.Uint32(buf[4:8]),
		ToServID:   binary.NativeEndian.Uint32(buf[8:12]),
		ToCliID:    binary.NativeEndian.Uint32(buf[12:16]),
	}
}

func (a Address) swapped() Address {
	return Address{
		FromServID: swap32(a.FromServID),
		FromCliID:  swap32(a.FromCliID),
		ToServID:   swap32(a.ToServID),
		ToCliID:    swap32(a.ToCliID),
	}
}

// RouteObj is a fixed-size DsonObj carrying a routing Address. Unlike Dson
// and StringObj, it flips header and payload together as a single buffer,
// since both are fixed-size and there is nothing to lazily parse.
type RouteObj struct {
	host bool // currently in host order
	key  int32
	addr Address

	ioSt  State
	ioBuf [headerSize + addressSize]byte
	ioPos int
}

// NewRouteObj creates a RouteObj addressed by key, carrying addr.
func NewRouteObj(key int32, addr Address) *RouteObj {
	return &RouteObj{host: true, key: key, addr: addr}
}

func routeObjFromParts(h Header, payload []byte) *RouteObj {
	host := !h.isNetworkOrder()
	hh := h.toHost()
	addr := decodeAddress(payload)
	if !host {
		addr = addr.swapped()
	}
	return &RouteObj{host: true, key: hh.Key, addr: addr}
}

// Address returns the carried routing address, forcing host order first.
func (r *RouteObj) Address() Address {
	r.ensureHostOrder()
	return r.addr
}

// SetReverseAddress mirrors from (the address the current message arrived
// with) so a reply can be routed back to its sender.
func (r *RouteObj) SetReverseAddress(from Address) {
	r.addr = Address{
		FromServID: from.ToServID,
		FromCliID:  from.ToCliID,
		ToServID:   from.FromServID,
		ToCliID:    from.FromCliID,
	}
	r.host = true
}

func (r *RouteObj) IsHostOrder() bool    { return r.host }
func (r *RouteObj) IsNetworkOrder() bool { return !r.host }
func (r *RouteObj) DataSize() int32      { return addressSize }
func (r *RouteObj) Key() int32           { return r.key }
func (r *RouteObj) SetKey(key int32)     { r.key = key }
func (r *RouteObj) DataType() TypeMarker { return TypeRoute }

func (r *RouteObj) ensureHostOrder() {
	if !r.host {
		r.addr = r.addr.swapped()
		r.host = true
	}
}

func (r *RouteObj) ensureNetworkOrder() {
	if r.host {
		r.addr = r.addr.swapped()
		r.host = false
	}
}

func (r *RouteObj) encodeFull(buf []byte, network bool) {
	h := Header{ByteOrderMark: markHostOrder, Key: r.key, DataType: TypeRoute, DataSize: addressSize}
	addr := r.addr
	if !r.host {
		addr = addr.swapped()
	}
	if network {
		h = h.toNetwork()
		addr = addr.swapped()
	}
	h.encodeInto(buf[0:headerSize])
	addr.encode(buf[headerSize:])
}

func (r *RouteObj) Bytes() ([]byte, error) {
	var buf [headerSize + addressSize]byte
	r.encodeFull(buf[:], false)
	out := make([]byte, len(buf))
	copy(out, buf[:])
	return out, nil
}

func (r *RouteObj) CopyToStreamHostOrder(w io.Writer) error    { return r.copyToStream(w, false) }
func (r *RouteObj) CopyToStreamNetworkOrder(w io.Writer) error { return r.copyToStream(w, true) }

func (r *RouteObj) copyToStream(w io.Writer, network bool) error {
	var buf [headerSize + addressSize]byte
	r.encodeFull(buf[:], network)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func (r *RouteObj) CopyToFDHostOrder(fd int) (Result, error)    { return r.copyToFD(fd, false) }
func (r *RouteObj) CopyToFDNetworkOrder(fd int) (Result, error) { return r.copyToFD(fd, true) }

func (r *RouteObj) copyToFD(fd int, network bool) (Result, error) {
	if r.ioSt == StateReady {
		r.encodeFull(r.ioBuf[:], network)
		r.ioPos = 0
		r.ioSt = StateCopyingHeader
	}
	for r.ioPos < len(r.ioBuf) {
		n, err := unix.Write(fd, r.ioBuf[r.ioPos:])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return InProcess, nil
			}
			r.ioSt = StateError
			return Error, fmt.Errorf("%w: %v", ErrIO, err)
		}
		if n == 0 {
			return InProcess, nil
		}
		r.ioPos += n
	}
	r.ioSt = StateReady
	return Ready, nil
}

func (r *RouteObj) CopyToBufHostOrder(dst []byte, offset *int) (Result, error) {
	return r.copyToBuf(dst, offset, false)
}
func (r *RouteObj) CopyToBufNetworkOrder(dst []byte, offset *int) (Result, error) {
	return r.copyToBuf(dst, offset, true)
}

func (r *RouteObj) copyToBuf(dst []byte, offset *int, network bool) (Result, error) {
	if r.ioSt == StateReady {
		r.encodeFull(r.ioBuf[:], network)
		r.ioPos = 0
		r.ioSt = StateCopyingHeader
	}
	for r.ioPos < len(r.ioBuf) {
		if *offset >= len(dst) {
			return InProcess, nil
		}
		n := copy(dst[*offset:], r.ioBuf[r.ioPos:])
		*offset += n
		r.ioPos += n
		if n == 0 {
			return InProcess, nil
		}
	}
	r.ioSt = StateReady
	return Ready, nil
}

func (r *RouteObj) State() State { return r.ioSt }
func (r *RouteObj) ResetState() {
	if r.ioSt == StateError {
		r.addr = Address{}
		r.host = true
	}
	r.ioSt = StateReady
	r.ioPos = 0
}

// ToAddress extracts the Address carried by obj, whichever concrete type it
// is: a Dson wrapping a TypeRoute payload, or a RouteObj directly.
func ToAddress(obj DsonObj) (Address, bool) {
	switch v := obj.(type) {
	case *RouteObj:
		return v.Address(), true
	case *Dson:
		if v.DataType() != TypeRoute {
			return Address{}, false
		}
		v.ensureHostOrder()
		if len(v.payload) < addressSize {
			return Address{}, false
		}
		return decodeAddress(v.payload), true
	default:
		return Address{}, false
	}
}
