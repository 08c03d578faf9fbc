package eidos

import "sync"

// StringID is an interned identifier for a property or method name.
// Dispatch is keyed by StringID so names are resolved once, not per call.
type StringID uint32

// IDNone is never assigned to a name.
const IDNone StringID = 0

type stringRegistry struct {
	mu    sync.RWMutex
	ids   map[string]StringID
	names []string
}

var globalStrings = &stringRegistry{
	ids:   make(map[string]StringID),
	names: []string{""},
}

// GlobalStringID returns the interned ID for name, registering it on first use.
// Safe for concurrent use.
func GlobalStringID(name string) StringID {
	globalStrings.mu.RLock()
	id, ok := globalStrings.ids[name]
	globalStrings.mu.RUnlock()
	if ok {
		return id
	}

	globalStrings.mu.Lock()
	defer globalStrings.mu.Unlock()
	if id, ok := globalStrings.ids[name]; ok {
		return id
	}
	id = StringID(len(globalStrings.names))
	globalStrings.names = append(globalStrings.names, name)
	globalStrings.ids[name] = id
	return id
}

// StringForID returns the name registered for id, or "" if unknown.
func StringForID(id StringID) string {
	globalStrings.mu.RLock()
	defer globalStrings.mu.RUnlock()
	if int(id) >= len(globalStrings.names) {
		return ""
	}
	return globalStrings.names[id]
}

// IDs of the base methods every element responds to.
var (
	IDStr      = GlobalStringID("str")
	IDProperty = GlobalStringID("property")
	IDMethod   = GlobalStringID("method")
)
