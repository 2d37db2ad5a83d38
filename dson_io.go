package dson

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// Bytes serializes the value into a freshly allocated buffer in host order.
func (d *Dson) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.CopyToStreamHostOrder(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CopyToStreamHostOrder writes the value, in host order, to w. It blocks
// (in the sense that it loops until w accepts everything or errors).
func (d *Dson) CopyToStreamHostOrder(w io.Writer) error {
	return d.copyToStream(w, false)
}

// CopyToStreamNetworkOrder writes the value, in network order, to w.
func (d *Dson) CopyToStreamNetworkOrder(w io.Writer) error {
	return d.copyToStream(w, true)
}

func (d *Dson) copyToStream(w io.Writer, network bool) error {
	h, err := d.prepareForCopy(network)
	if err != nil {
		return err
	}
	var hdr [headerSize]byte
	h.encodeInto(hdr[:])
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if d.kind == kindContainer {
		for _, k := range d.childOrder {
			c := d.children[k]
			var err error
			if network {
				err = c.CopyToStreamNetworkOrder(w)
			} else {
				err = c.CopyToStreamHostOrder(w)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
	if _, err := w.Write(d.payload); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// sizeForHeader computes data_size for the header about to be written: the
// sum of child record sizes for a container, or the raw payload length
// otherwise. Sizes are order-independent byte counts.
func (d *Dson) sizeForHeader(network bool) int32 {
	if d.kind == kindContainer {
		return d.totalChildrenSize()
	}
	return int32(len(d.payload))
}

// CopyToFDHostOrder resumes writing the value, converted to host order, to
// the non-blocking file descriptor fd. InProcess means fd stopped accepting
// bytes (EAGAIN/EWOULDBLOCK or a zero-length write) before the record was
// complete; the bytes written so far are kept and the call should be retried.
func (d *Dson) CopyToFDHostOrder(fd int) (Result, error) {
	return d.copyToFD(fd, false)
}

// CopyToFDNetworkOrder resumes writing the value, converted to network
// order, to the non-blocking file descriptor fd.
func (d *Dson) CopyToFDNetworkOrder(fd int) (Result, error) {
	return d.copyToFD(fd, true)
}

func (d *Dson) copyToFD(fd int, network bool) (Result, error) {
	if d.ioSt == StateReady {
		h, err := d.prepareForCopy(network)
		if err != nil {
			d.ioSt = StateError
			return Error, err
		}
		h.encodeInto(d.ioHeaderBuf[:])
		d.ioHeaderPos = 0
		d.ioPayloadPos = 0
		d.ioChildIdx = 0
		d.ioSt = StateCopyingHeader
	}

	if d.ioSt == StateCopyingHeader {
		for d.ioHeaderPos < headerSize {
			n, err := unix.Write(fd, d.ioHeaderBuf[d.ioHeaderPos:])
			if err != nil {
				if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
					return InProcess, nil
				}
				d.ioSt = StateError
				return Error, fmt.Errorf("%w: %v", ErrIO, err)
			}
			if n == 0 {
				return InProcess, nil
			}
			d.ioHeaderPos += n
		}
		d.ioSt = StateCopyingData
	}

	if d.kind == kindContainer {
		for d.ioChildIdx < len(d.childOrder) {
			c := d.children[d.childOrder[d.ioChildIdx]]
			var res Result
			var err error
			if network {
				res, err = c.CopyToFDNetworkOrder(fd)
			} else {
				res, err = c.CopyToFDHostOrder(fd)
			}
			if err != nil {
				d.ioSt = StateError
				return Error, err
			}
			if res == InProcess {
				return InProcess, nil
			}
			d.ioChildIdx++
		}
		d.ioSt = StateReady
		return Ready, nil
	}

	for d.ioPayloadPos < len(d.payload) {
		n, err := unix.Write(fd, d.payload[d.ioPayloadPos:])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return InProcess, nil
			}
			d.ioSt = StateError
			return Error, fmt.Errorf("%w: %v", ErrIO, err)
		}
		if n == 0 {
			return InProcess, nil
		}
		d.ioPayloadPos += n
	}
	d.ioSt = StateReady
	return Ready, nil
}

// CopyToBufHostOrder resumes copying the value, converted to host order,
// into dst starting at *offset. InProcess means dst filled up before the
// value finished; call again with a fresh dst and the same *offset logic
// reset by the caller, or a larger dst.
func (d *Dson) CopyToBufHostOrder(dst []byte, offset *int) (Result, error) {
	return d.copyToBuf(dst, offset, false)
}

// CopyToBufNetworkOrder resumes copying the value, converted to network
// order, into dst starting at *offset.
func (d *Dson) CopyToBufNetworkOrder(dst []byte, offset *int) (Result, error) {
	return d.copyToBuf(dst, offset, true)
}

func (d *Dson) copyToBuf(dst []byte, offset *int, network bool) (Result, error) {
	if d.ioSt == StateReady {
		h, err := d.prepareForCopy(network)
		if err != nil {
			d.ioSt = StateError
			return Error, err
		}
		h.encodeInto(d.ioHeaderBuf[:])
		d.ioHeaderPos = 0
		d.ioPayloadPos = 0
		d.ioChildIdx = 0
		d.ioSt = StateCopyingHeader
	}

	if d.ioSt == StateCopyingHeader {
		for d.ioHeaderPos < headerSize {
			if *offset >= len(dst) {
				return InProcess, nil
			}
			n := copy(dst[*offset:], d.ioHeaderBuf[d.ioHeaderPos:])
			*offset += n
			d.ioHeaderPos += n
			if n == 0 {
				return InProcess, nil
			}
		}
		d.ioSt = StateCopyingData
	}

	if d.kind == kindContainer {
		for d.ioChildIdx < len(d.childOrder) {
			c := d.children[d.childOrder[d.ioChildIdx]]
			var res Result
			var err error
			if network {
				res, err = c.CopyToBufNetworkOrder(dst, offset)
			} else {
				res, err = c.CopyToBufHostOrder(dst, offset)
			}
			if err != nil {
				d.ioSt = StateError
				return Error, err
			}
			if res == InProcess {
				return InProcess, nil
			}
			d.ioChildIdx++
		}
		d.ioSt = StateReady
		return Ready, nil
	}

	for d.ioPayloadPos < len(d.payload) {
		if *offset >= len(dst) {
			return InProcess, nil
		}
		n := copy(dst[*offset:], d.payload[d.ioPayloadPos:])
		*offset += n
		d.ioPayloadPos += n
		if n == 0 {
			return InProcess, nil
		}
	}
	d.ioSt = StateReady
	return Ready, nil
}

// LoadFromStream blocks until a complete record has been read from r.
func (d *Dson) LoadFromStream(r io.Reader) error {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	h := decodeHeader(hdr[:])
	size := int64(h.toHost().DataSize)
	if size < 0 || size > MaxRAMSize {
		return fmt.Errorf("%w: declared data_size %d exceeds MaxRAMSize", ErrAlloc, size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	d.header = h
	d.payload = payload
	d.classify()
	return nil
}

// LoadFromFD resumes reading one record from the non-blocking file
// descriptor fd. InProcess means a read returned no bytes (EAGAIN/EWOULDBLOCK
// or a zero-length read) before the record was complete; the bytes read so
// far are kept.
func (d *Dson) LoadFromFD(fd int) (Result, error) {
	if d.ioSt == StateReady {
		d.ioHeaderPos = 0
		d.ioPayloadPos = 0
		d.ioSt = StateLoadingHeader
	}

	if d.ioSt == StateLoadingHeader {
		for d.ioHeaderPos < headerSize {
			n, err := unix.Read(fd, d.ioHeaderBuf[d.ioHeaderPos:])
			if err != nil {
				if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
					return InProcess, nil
				}
				d.ioSt = StateError
				return Error, fmt.Errorf("%w: %v", ErrIO, err)
			}
			if n == 0 {
				return InProcess, nil
			}
			d.ioHeaderPos += n
		}
		h := decodeHeader(d.ioHeaderBuf[:])
		size := int64(h.toHost().DataSize)
		if size < 0 || size > MaxRAMSize {
			d.ioSt = StateError
			return Error, fmt.Errorf("%w: declared data_size %d exceeds MaxRAMSize", ErrAlloc, size)
		}
		d.header = h
		d.payload = make([]byte, size)
		d.ioSt = StateLoadingData
	}

	for d.ioPayloadPos < len(d.payload) {
		n, err := unix.Read(fd, d.payload[d.ioPayloadPos:])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return InProcess, nil
			}
			d.ioSt = StateError
			return Error, fmt.Errorf("%w: %v", ErrIO, err)
		}
		if n == 0 {
			return InProcess, nil
		}
		d.ioPayloadPos += n
	}
	d.classify()
	d.ioSt = StateReady
	return Ready, nil
}
