package dson

import "fmt"

// parseBuf walks a kindDataBufNeedParse payload left to right, building the
// children map. Each record contributes 16+data_size bytes; a duplicate key
// overwrites the earlier child's value but keeps its original position.
// Trailing bytes that do not form a complete record are a framing error.
func (d *Dson) parseBuf() error {
	buf := d.payload
	d.children = make(map[int32]DsonObj)
	d.childOrder = nil

	pos := 0
	for pos < len(buf) {
		if len(buf)-pos < headerSize {
			return fmt.Errorf("%w: %d residual bytes, too short for a header", ErrFraming, len(buf)-pos)
		}
		ch := decodeHeader(buf[pos:])
		chHost := ch
		if chHost.isNetworkOrder() {
			chHost = chHost.swapped()
		}
		size := int(chHost.DataSize)
		if size < 0 || pos+headerSize+size > len(buf) {
			return fmt.Errorf("%w: child data_size overruns container payload", ErrFraming)
		}
		childPayload := buf[pos+headerSize : pos+headerSize+size]
		child := buildChild(ch, childPayload)
		d.insertChild(chHost.Key, child)
		pos += headerSize + size
	}
	if pos != len(buf) {
		return fmt.Errorf("%w: %d residual bytes after parse", ErrFraming, len(buf)-pos)
	}
	d.payload = nil
	d.kind = kindContainer
	// header.DataType already reads back as TypeContainer (that is what
	// routed this value to parseBuf in the first place); it is already
	// encoded in whichever order the header currently holds, so it must
	// not be overwritten with the bare host-order constant here.
	return nil
}

// buildChild reconstructs the concrete DsonObj for one child record. A
// Container-typed child becomes a nested, still-unparsed Dson (parsing is
// lazy at every level); a String child becomes a StringObj; a marker with a
// registered factory defers to it; everything else is a generic opaque
// Dson.
func buildChild(h Header, payload []byte) DsonObj {
	hostType := h.DataType
	if h.isNetworkOrder() {
		hostType = TypeMarker(swap32(uint32(h.DataType)))
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)

	switch hostType {
	case TypeContainer:
		c := &Dson{header: h, payload: buf}
		c.kind = kindDataBufNeedParse
		return c
	case TypeString:
		return stringObjFromParts(h, buf)
	}
	if f, ok := lookupFactory(hostType); ok {
		return f(h, buf)
	}
	return &Dson{header: h, payload: buf, kind: kindOneObjectInBuf}
}

// prepareForCopy gets d ready to be written out in the requested order and
// returns the host-order-correct wire header to encode.
//
// A pending kindDataBufNeedParse value can be emitted verbatim, without
// ever building child objects, as long as the requested order matches the
// order it is currently held in: the bytes are already a valid concatenation
// of complete child records in that order. But emitting it in the opposite
// order requires flipping every nested field, which means the children have
// to be walked and individually converted — so a copy-out direction that
// disagrees with the currently held order is itself a lazy-parse trigger.
func (d *Dson) prepareForCopy(network bool) (Header, error) {
	if d.kind == kindDataBufNeedParse && network != d.header.isNetworkOrder() {
		if err := d.parseBuf(); err != nil {
			return Header{}, err
		}
	}
	size := d.sizeForHeader(network)
	h := Header{ByteOrderMark: markHostOrder, Key: d.Key(), DataType: d.DataType(), DataSize: size}
	if network {
		d.ensureNetworkOrder()
		h = h.toNetwork()
	} else {
		d.ensureHostOrder()
	}
	return h, nil
}
