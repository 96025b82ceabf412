package identity

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Attributes is the user's persisted attribute document: top-level keys
// mapped to raw JSON values. Its shape is opaque to the provider.
type Attributes map[string]json.RawMessage

// Clone returns a copy that shares no backing arrays with a.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = slices.Clone(v)
	}
	return out
}

// Merge returns a copy of a overlaid with b; keys in b win.
func (a Attributes) Merge(b Attributes) Attributes {
	out := a.Clone()
	if out == nil {
		out = make(Attributes, len(b))
	}
	for k, v := range b {
		out[k] = slices.Clone(v)
	}
	return out
}

// Keys returns the document's keys in sorted order.
func (a Attributes) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

// Set encodes v as JSON under key.
func (a Attributes) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode attribute %q: %w", key, err)
	}
	a[key] = data
	return nil
}
