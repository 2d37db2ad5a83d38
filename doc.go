/*
Package dson implements DSON, a binary, self-describing, key-addressed
serialization format.

 Wire Grammar

 Basic types, each serialized in the sender's own byte order:

 uint32  4 bytes
 int32   4 bytes

 A DSON value is a header followed by a payload:

 record      ::= header payload
 header      ::= byte_order_mark data_size key data_type
 byte_order_mark ::= uint32                  mark_host_order, or its byte-swap
 data_size       ::= int32                   length of payload, in bytes
 key             ::= int32                   caller-assigned address
 data_type       ::= int32                   a TypeMarker
 payload     ::= container
               | opaque
 container   ::= record*                     zero or more complete child records
 opaque      ::= OCTET*                      data_size bytes, meaning owned by data_type

 A value never negotiates byte order with its peer over the wire: the header
 carries mark_host_order (1) verbatim, or byte-swapped, so a reader can tell
 the sender's order from the bytes alone.

 Reserved Type Markers:

 0  Empty
 1  Container
 2  String
 3  int32
 4  uint32
 5  int64
 6  uint64
 7  []uint32

 User-defined markers start at markerFloor (50000) and are resolved
 through the converter table (see converters.go).

Implementation Specific:

 Three Kinds:
	A Dson value is, at any instant, one of three kinds:
	  Container        payload is child records, addressable by key.
	  OneObjectInBuf    payload is a single non-container value.
	  DataBufNeedParse  payload looks like a container but has not been
	                    walked into child records yet.
	Map (the key-lookup operation), Insert and Get trigger the kind
	transitions: a DataBufNeedParse becomes a Container the first time it is
	addressed by key (lazy parse); a OneObjectInBuf becomes a Container
	(wrapping its existing payload as the first child) the first time
	something is inserted into it (promotion).

 Byte Order:
	Every Dson knows whether it is presently in host or network order.
	Reading data_size/key/data_type, and copying a value out, may trigger a
	byte-swap of the header (and, for registered types, the payload) so the
	caller always observes host-order values regardless of which order the
	bytes arrived in.

 Resumability:
	load_from_fd and copy_to_fd style operations are resumable: a short read
	or write (InProcess) never loses progress. State (header offset, which
	child, how far into the payload) is held on the value itself and
	continuing the same call later picks up where it left off.

 Result:
	Non-blocking operations return one of three outcomes: Error (framing
	violated, allocation bound exceeded, or an I/O call failed), Ready (operation
	completed), InProcess (no data available right now, not an error — try
	again later).

 Bounds:
	FromBuf, LoadFromStream and LoadFromFD reject a record whose declared
	data_size exceeds MaxRAMSize (default 1 GiB) before allocating its
	payload. Exceeding it is an Error, not a panic.

 Converters:
	A process-wide, two-phase (library then user), read-only-after-init table
	maps a TypeMarker to a pair of functions that flip a payload's byte order
	in place. A type with no registered converter needs none — opaque bytes
	pass through unchanged.

Typical use:

	d := dson.New(7)
	d.Insert(1, dson.NewString(1, "hello"))
	d.Insert(2, dson.NewInt32(2, 42))
	buf, err := d.Bytes()
	...
	got, err := dson.FromBuf(buf)
	...
	s, ok, err := got.Get(1)
*/
package dson
