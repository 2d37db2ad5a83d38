package dson

import "io"

// DsonObj is the capability set every DSON value implements: Dson itself,
// StringObj and RouteObj. It is the common surface the engine, the
// converters and the example transports program against.
type DsonObj interface {
	// IsHostOrder reports whether the value's header is presently in host
	// byte order.
	IsHostOrder() bool
	// IsNetworkOrder reports whether the value's header is presently in
	// network byte order.
	IsNetworkOrder() bool

	// DataSize returns the payload length in bytes, in host order.
	DataSize() int32
	// Key returns the caller-assigned address, in host order.
	Key() int32
	// SetKey overwrites the caller-assigned address.
	SetKey(key int32)
	// DataType returns the TypeMarker, in host order.
	DataType() TypeMarker

	// CopyToStreamHostOrder writes the value, converted to host order, to
	// w. It blocks until done or w returns an error.
	CopyToStreamHostOrder(w io.Writer) error
	// CopyToStreamNetworkOrder writes the value, converted to network
	// order, to w. It blocks until done or w returns an error.
	CopyToStreamNetworkOrder(w io.Writer) error

	// CopyToFDHostOrder resumes writing the value, in host order, to fd.
	// It never blocks: InProcess means fd stopped accepting bytes before the
	// record was complete; the bytes written so far are kept.
	CopyToFDHostOrder(fd int) (Result, error)
	// CopyToFDNetworkOrder resumes writing the value, in network order, to
	// fd. It never blocks: InProcess means fd stopped accepting bytes before
	// the record was complete; the bytes written so far are kept.
	CopyToFDNetworkOrder(fd int) (Result, error)

	// CopyToBufHostOrder resumes copying the value, in host order, into
	// dst starting at *offset, advancing *offset as bytes are written.
	CopyToBufHostOrder(dst []byte, offset *int) (Result, error)
	// CopyToBufNetworkOrder resumes copying the value, in network order,
	// into dst starting at *offset, advancing *offset as bytes are written.
	CopyToBufNetworkOrder(dst []byte, offset *int) (Result, error)

	// State returns the current position in the resumable I/O state
	// machine.
	State() State
	// ResetState rewinds any in-progress load or copy so it can be
	// restarted from the beginning. If the value was in StateError, it is
	// cleared back to an empty Ready value.
	ResetState()

	// Bytes serializes the value into a freshly allocated buffer in host
	// order.
	Bytes() ([]byte, error)
}
