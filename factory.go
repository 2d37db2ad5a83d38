package dson

import "sync"

// ObjectFactory builds the concrete DsonObj a child record should become
// during lazy parse, given its header and raw payload bytes (still in
// whatever order the parent currently holds). The default, used when no
// factory is registered for a marker, wraps the bytes in a generic Dson.
type ObjectFactory func(h Header, payload []byte) DsonObj

var (
	factoryMu    sync.Mutex
	factoryTable map[TypeMarker]ObjectFactory
)

// RegisterObjectFactory installs the constructor used to rehydrate a child
// record of the given marker during parse. TypeString and TypeContainer are
// handled by the engine itself and cannot be overridden.
func RegisterObjectFactory(marker TypeMarker, f ObjectFactory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if factoryTable == nil {
		factoryTable = make(map[TypeMarker]ObjectFactory, 4)
	}
	factoryTable[marker] = f
}

func lookupFactory(marker TypeMarker) (ObjectFactory, bool) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	f, ok := factoryTable[marker]
	return f, ok
}

func init() {
	RegisterObjectFactory(TypeRoute, func(h Header, payload []byte) DsonObj {
		return routeObjFromParts(h, payload)
	})
}
