package dson

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// StringObj is a DsonObj specialized for a single UTF-8 string payload. Its
// payload is the string's bytes directly; there is no per-character
// converter to run, so byte order only ever touches the header.
type StringObj struct {
	header Header
	value  string

	ioSt        State
	ioHeaderBuf [headerSize]byte
	ioHeaderPos int
	ioPayloadPos int
}

// NewString creates a StringObj addressed by key.
func NewString(key int32, value string) *StringObj {
	return &StringObj{
		header: Header{ByteOrderMark: markHostOrder, Key: key, DataType: TypeString, DataSize: int32(len(value))},
		value:  value,
	}
}

func stringObjFromParts(h Header, payload []byte) *StringObj {
	return &StringObj{header: h, value: string(payload)}
}

// Value returns the string, converting the object to host order first.
func (s *StringObj) Value() string {
	s.ensureHostOrder()
	return s.value
}

func (s *StringObj) ensureHostOrder() {
	if s.header.isNetworkOrder() {
		s.header = s.header.toHost()
	}
}

func (s *StringObj) ensureNetworkOrder() {
	if !s.header.isNetworkOrder() {
		s.header = s.header.toNetwork()
	}
}

func (s *StringObj) IsHostOrder() bool    { return !s.header.isNetworkOrder() }
func (s *StringObj) IsNetworkOrder() bool { return s.header.isNetworkOrder() }
func (s *StringObj) DataSize() int32      { return int32(len(s.value)) }
func (s *StringObj) Key() int32           { return s.header.toHost().Key }
func (s *StringObj) SetKey(key int32) {
	h := s.header.toHost()
	h.Key = key
	if s.header.isNetworkOrder() {
		s.header = h.toNetwork()
		return
	}
	s.header = h
}
func (s *StringObj) DataType() TypeMarker { return TypeString }

func (s *StringObj) Bytes() ([]byte, error) {
	buf := make([]byte, headerSize+len(s.value))
	h := s.header.toHost()
	h.DataSize = int32(len(s.value))
	h.encodeInto(buf)
	copy(buf[headerSize:], s.value)
	return buf, nil
}

func (s *StringObj) CopyToStreamHostOrder(w io.Writer) error {
	return s.copyToStream(w, false)
}

func (s *StringObj) CopyToStreamNetworkOrder(w io.Writer) error {
	return s.copyToStream(w, true)
}

func (s *StringObj) copyToStream(w io.Writer, network bool) error {
	h := s.header.toHost()
	h.DataSize = int32(len(s.value))
	if network {
		h = h.toNetwork()
	}
	var hdr [headerSize]byte
	h.encodeInto(hdr[:])
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if _, err := io.WriteString(w, s.value); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func (s *StringObj) CopyToFDHostOrder(fd int) (Result, error)    { return s.copyToFD(fd, false) }
func (s *StringObj) CopyToFDNetworkOrder(fd int) (Result, error) { return s.copyToFD(fd, true) }

func (s *StringObj) copyToFD(fd int, network bool) (Result, error) {
	if s.ioSt == StateReady {
		h := s.header.toHost()
		h.DataSize = int32(len(s.value))
		if network {
			h = h.toNetwork()
		}
		h.encodeInto(s.ioHeaderBuf[:])
		s.ioHeaderPos = 0
		s.ioPayloadPos = 0
		s.ioSt = StateCopyingHeader
	}
	if s.ioSt == StateCopyingHeader {
		for s.ioHeaderPos < headerSize {
			n, err := unix.Write(fd, s.ioHeaderBuf[s.ioHeaderPos:])
			if err != nil {
				if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
					return InProcess, nil
				}
				s.ioSt = StateError
				return Error, fmt.Errorf("%w: %v", ErrIO, err)
			}
			if n == 0 {
				return InProcess, nil
			}
			s.ioHeaderPos += n
		}
		s.ioSt = StateCopyingData
	}
	for s.ioPayloadPos < len(s.value) {
		n, err := unix.Write(fd, []byte(s.value)[s.ioPayloadPos:])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return InProcess, nil
			}
			s.ioSt = StateError
			return Error, fmt.Errorf("%w: %v", ErrIO, err)
		}
		if n == 0 {
			return InProcess, nil
		}
		s.ioPayloadPos += n
	}
	s.ioSt = StateReady
	return Ready, nil
}

func (s *StringObj) CopyToBufHostOrder(dst []byte, offset *int) (Result, error) {
	return s.copyToBuf(dst, offset, false)
}
func (s *StringObj) CopyToBufNetworkOrder(dst []byte, offset *int) (Result, error) {
	return s.copyToBuf(dst, offset, true)
}

func (s *StringObj) copyToBuf(dst []byte, offset *int, network bool) (Result, error) {
	if s.ioSt == StateReady {
		h := s.header.toHost()
		h.DataSize = int32(len(s.value))
		if network {
			h = h.toNetwork()
		}
		h.encodeInto(s.ioHeaderBuf[:])
		s.ioHeaderPos = 0
		s.ioPayloadPos = 0
		s.ioSt = StateCopyingHeader
	}
	if s.ioSt == StateCopyingHeader {
		for s.ioHeaderPos < headerSize {
			if *offset >= len(dst) {
				return InProcess, nil
			}
			n := copy(dst[*offset:], s.ioHeaderBuf[s.ioHeaderPos:])
			*offset += n
			s.ioHeaderPos += n
			if n == 0 {
				return InProcess, nil
			}
		}
		s.ioSt = StateCopyingData
	}
	val := []byte(s.value)
	for s.ioPayloadPos < len(val) {
		if *offset >= len(dst) {
			return InProcess, nil
		}
		n := copy(dst[*offset:], val[s.ioPayloadPos:])
		*offset += n
		s.ioPayloadPos += n
		if n == 0 {
			return InProcess, nil
		}
	}
	s.ioSt = StateReady
	return Ready, nil
}

func (s *StringObj) State() State { return s.ioSt }
func (s *StringObj) ResetState() {
	if s.ioSt == StateError {
		s.value = ""
		s.header = Header{ByteOrderMark: markHostOrder, DataType: TypeString}
	}
	s.ioSt = StateReady
	s.ioHeaderPos = 0
	s.ioPayloadPos = 0
}
