package core

import (
	"bytes"
	"encoding/json"
)

// OrderedStamps is a Target -> Stamp mapping that preserves insertion
// order. BuildSystem relies on that order being stable across save/load:
// dependencies are re-checked in the order they were registered during
// the most recent rebuild, not in an arbitrary map iteration order.
type OrderedStamps struct {
	keys   []Target
	values map[Target]Stamp
}

// NewOrderedStamps returns an empty OrderedStamps ready to use.
func NewOrderedStamps() *OrderedStamps {
	return &OrderedStamps{values: map[Target]Stamp{}}
}

// Set records stamp for dep, appending dep to the iteration order the
// first time it's seen and leaving the order untouched on update.
func (o *OrderedStamps) Set(dep Target, stamp Stamp) {
	if _, ok := o.values[dep]; !ok {
		o.keys = append(o.keys, dep)
	}
	o.values[dep] = stamp
}

// Get returns the stamp recorded for dep and whether it was present.
func (o *OrderedStamps) Get(dep Target) (Stamp, bool) {
	s, ok := o.values[dep]
	return s, ok
}

// Len returns the number of recorded dependencies.
func (o *OrderedStamps) Len() int {
	return len(o.keys)
}

// Each calls fn for every recorded dependency in registration order.
func (o *OrderedStamps) Each(fn func(dep Target, stamp Stamp)) {
	for _, k := range o.keys {
		fn(k, o.values[k])
	}
}

// DepStamp pairs a dependency with the stamp recorded for it.
type DepStamp struct {
	Dep   Target
	Stamp Stamp
}

// Snapshot returns the recorded dependencies, in registration order, as a
// plain slice - useful when the caller needs to short-circuit iteration,
// which a callback-based Each can't express cleanly.
func (o *OrderedStamps) Snapshot() []DepStamp {
	out := make([]DepStamp, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, DepStamp{Dep: k, Stamp: o.values[k]})
	}
	return out
}

// MarshalJSON implements json.Marshaler, emitting a plain JSON object
// ("dep": "stamp", one pair per recorded dependency) with keys written
// in registration order. encoding/json can't be asked to preserve map
// key order on the way out, so the object is built directly.
func (o *OrderedStamps) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, reading the plain JSON
// object MarshalJSON produces back in document order using a token
// scanner, since decoding straight into a map would lose that order. A
// malformed or non-object document is tolerated as empty, consistent
// with BuildDB.Load's overall tolerance policy.
func (o *OrderedStamps) UnmarshalJSON(data []byte) error {
	o.keys = nil
	o.values = map[Target]Stamp{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			o.keys, o.values = nil, map[Target]Stamp{}
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			o.keys, o.values = nil, map[Target]Stamp{}
			return nil
		}
		valTok, err := dec.Token()
		if err != nil {
			o.keys, o.values = nil, map[Target]Stamp{}
			return nil
		}
		val, ok := valTok.(string)
		if !ok {
			o.keys, o.values = nil, map[Target]Stamp{}
			return nil
		}
		o.Set(key, val)
	}
	return nil
}
