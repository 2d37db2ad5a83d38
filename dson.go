package dson

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by the engine's returned errors. Callers compare
// with errors.Is rather than matching message text.
var (
	ErrFraming = errors.New("dson: framing violated")
	ErrIO      = errors.New("dson: io failure")
	ErrAlloc   = errors.New("dson: allocation bound exceeded")
	ErrMisuse  = errors.New("dson: invalid operation for current state")
)

// dsonKind is the engine's internal kind tag. TypeEmpty values are kept as
// kindOneObjectInBuf with a zero-length payload; there is no separate empty
// kind because an empty value behaves exactly like a zero-length opaque one.
type dsonKind int

const (
	kindOneObjectInBuf dsonKind = iota
	kindDataBufNeedParse
	kindContainer
)

// Dson is the hybrid value described by the package doc: depending on kind
// it is simultaneously an owning container, a view over bytes received from
// a peer, or a lazily-parsed buffer waiting to be addressed by key.
type Dson struct {
	header Header
	kind   dsonKind

	// payload holds the raw bytes for kindOneObjectInBuf and
	// kindDataBufNeedParse. It is nil once a value has been parsed or
	// promoted into kindContainer.
	payload []byte

	// children and childOrder back kindContainer. childOrder preserves
	// first-insertion position; overwriting a key (last-write-wins)
	// updates children without moving its position in childOrder.
	children   map[int32]DsonObj
	childOrder []int32

	ioSt       State
	ioHeaderBuf [headerSize]byte
	ioHeaderPos int
	ioPayloadPos int
	ioChildIdx  int
}

// New creates an empty container value addressed by key, ready for Insert.
func New(key int32) *Dson {
	return &Dson{
		header: Header{ByteOrderMark: markHostOrder, Key: key, DataType: TypeContainer},
		kind:   kindContainer,
		children: make(map[int32]DsonObj),
	}
}

// NewValue creates a value wrapping an opaque payload under a user or
// reserved TypeMarker. payload is copied.
func NewValue(key int32, typ TypeMarker, payload []byte) *Dson {
	buf := make([]byte, len(payload))
	copy(buf, payload)
	return &Dson{
		header:  Header{ByteOrderMark: markHostOrder, Key: key, DataType: typ, DataSize: int32(len(buf))},
		kind:    kindOneObjectInBuf,
		payload: buf,
	}
}

// FromBuf copies the complete record in buf (header followed by payload) and
// classifies it without parsing: container payloads are left as
// kindDataBufNeedParse until something addresses them by key.
func FromBuf(buf []byte) (*Dson, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: buffer shorter than header", ErrFraming)
	}
	h := decodeHeader(buf)
	want := int(h.toHost().DataSize)
	if want < 0 || headerSize+want > len(buf) {
		return nil, fmt.Errorf("%w: declared data_size overruns buffer", ErrFraming)
	}
	if int64(want) > MaxRAMSize {
		return nil, fmt.Errorf("%w: declared data_size %d exceeds MaxRAMSize", ErrAlloc, want)
	}
	payload := make([]byte, want)
	copy(payload, buf[headerSize:headerSize+want])
	d := &Dson{header: h, payload: payload}
	d.classify()
	return d, nil
}

// classify sets kind based on the header's data_type, matching pre_parse_buf:
// a Container-typed payload is left unparsed, everything else is opaque.
func (d *Dson) classify() {
	if d.header.toHost().DataType == TypeContainer {
		d.kind = kindDataBufNeedParse
	} else {
		d.kind = kindOneObjectInBuf
	}
}

func (d *Dson) IsHostOrder() bool    { return !d.header.isNetworkOrder() }
func (d *Dson) IsNetworkOrder() bool { return d.header.isNetworkOrder() }

func (d *Dson) DataSize() int32 {
	if d.kind == kindContainer {
		return d.totalChildrenSize()
	}
	return d.header.toHost().DataSize
}

func (d *Dson) Key() int32 { return d.header.toHost().Key }

func (d *Dson) SetKey(key int32) {
	h := d.header.toHost()
	h.Key = key
	if d.header.isNetworkOrder() {
		d.header = h.toNetwork()
		return
	}
	d.header = h
}

func (d *Dson) DataType() TypeMarker { return d.header.toHost().DataType }

// ensureHostOrder normalizes header and payload/children to host order. A
// kindDataBufNeedParse value is left untouched: its payload is converted only
// once it is parsed, so its header keeps naming the order the payload is in.
func (d *Dson) ensureHostOrder() {
	if !d.header.isNetworkOrder() || d.kind == kindDataBufNeedParse {
		return
	}
	marker := d.header.toHost().DataType
	d.header = d.header.toHost()
	switch d.kind {
	case kindContainer:
		for _, k := range d.childOrder {
			switch c := d.children[k].(type) {
			case *Dson:
				c.ensureHostOrder()
			case *StringObj:
				c.ensureHostOrder()
			case *RouteObj:
				c.ensureHostOrder()
			}
		}
	default:
		convertPayload(marker, d.payload, false)
	}
}

// ensureNetworkOrder normalizes header and payload/children to network
// order. A kindDataBufNeedParse value is left untouched, as in
// ensureHostOrder.
func (d *Dson) ensureNetworkOrder() {
	if d.header.isNetworkOrder() || d.kind == kindDataBufNeedParse {
		return
	}
	marker := d.header.DataType
	switch d.kind {
	case kindContainer:
		for _, k := range d.childOrder {
			switch c := d.children[k].(type) {
			case *Dson:
				c.ensureNetworkOrder()
			case *StringObj:
				c.ensureNetworkOrder()
			case *RouteObj:
				c.ensureNetworkOrder()
			}
		}
	default:
		convertPayload(marker, d.payload, true)
	}
	d.header = d.header.toNetwork()
}

func (d *Dson) totalChildrenSize() int32 {
	var total int32
	for _, k := range d.childOrder {
		c := d.children[k]
		total += headerSize + c.DataSize()
	}
	return total
}

// Map ensures the value is addressable by key: a pending DataBufNeedParse
// is parsed into children and the result normalized to host order. A
// kindOneObjectInBuf value is left as-is; it has no children to address.
func (d *Dson) Map() error {
	if d.kind == kindDataBufNeedParse {
		if err := d.parseBuf(); err != nil {
			return err
		}
	}
	d.ensureHostOrder()
	return nil
}

// Insert adds or overwrites child at key. If the value was a single opaque
// object it is promoted to a container first, nesting the previous payload
// as the first child under its own former key.
func (d *Dson) Insert(key int32, child DsonObj) error {
	if err := d.Map(); err != nil {
		return err
	}
	if d.kind == kindOneObjectInBuf {
		d.promote()
	}
	child.SetKey(key)
	d.insertChild(key, child)
	return nil
}

// promote turns a single-object value into a container whose first child
// is the value's previous payload, unchanged except now addressed by the
// key it already carried.
func (d *Dson) promote() {
	prevKey := d.header.Key
	prevType := d.header.DataType
	prevPayload := d.payload
	first := &Dson{
		header:  Header{ByteOrderMark: markHostOrder, Key: prevKey, DataType: prevType, DataSize: int32(len(prevPayload))},
		kind:    kindOneObjectInBuf,
		payload: prevPayload,
	}
	d.payload = nil
	d.kind = kindContainer
	d.children = make(map[int32]DsonObj)
	d.childOrder = nil
	d.header.DataType = TypeContainer
	d.insertChild(prevKey, first)
}

func (d *Dson) insertChild(key int32, child DsonObj) {
	if _, exists := d.children[key]; !exists {
		d.childOrder = append(d.childOrder, key)
	}
	d.children[key] = child
}

// Get addresses a child by key, parsing a pending buffer first if needed.
// ok is false if the value is not (or cannot become) a container, or the
// key is absent.
func (d *Dson) Get(key int32) (DsonObj, bool, error) {
	if err := d.Map(); err != nil {
		return nil, false, err
	}
	if d.kind != kindContainer {
		return nil, false, nil
	}
	c, ok := d.children[key]
	return c, ok, nil
}

// Remove deletes a child by key. Its position in iteration order is freed.
func (d *Dson) Remove(key int32) error {
	if err := d.Map(); err != nil {
		return err
	}
	if d.kind != kindContainer {
		return nil
	}
	if _, ok := d.children[key]; !ok {
		return nil
	}
	delete(d.children, key)
	for i, k := range d.childOrder {
		if k == key {
			d.childOrder = append(d.childOrder[:i], d.childOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports how many children a container currently holds. It is 0 for
// a value that is not a container.
func (d *Dson) Len() int {
	if d.kind != kindContainer {
		return 0
	}
	return len(d.childOrder)
}

// State and ResetState implement the resumable I/O position (dson_io.go
// drives ioSt through the state machine).
func (d *Dson) State() State { return d.ioSt }

func (d *Dson) ResetState() {
	if d.ioSt == StateError {
		d.kind = kindOneObjectInBuf
		d.payload = nil
		d.children = nil
		d.childOrder = nil
		d.header = Header{ByteOrderMark: markHostOrder, DataType: TypeEmpty}
	}
	d.ioSt = StateReady
	d.ioHeaderPos = 0
	d.ioPayloadPos = 0
	d.ioChildIdx = 0
}
