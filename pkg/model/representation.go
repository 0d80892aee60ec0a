package model

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// Representation errors.
var (
	ErrNotRepresentation = errors.New("payload is not a representation")
	ErrUnsupportedValue  = errors.New("unsupported property value")
)

// Representation is an ordered property tree.
// The zero value is an empty representation ready to use.
type Representation struct {
	keys   []string
	values map[string]any
	next   []Representation
}

// NewRepresentation creates an empty representation.
func NewRepresentation() Representation {
	return Representation{values: make(map[string]any)}
}

func (r *Representation) set(key string, v any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// SetInt sets an integer property.
func (r *Representation) SetInt(key string, v int64) {
	r.set(key, v)
}

// SetString sets a string property.
func (r *Representation) SetString(key, v string) {
	r.set(key, v)
}

// SetStringArray sets a string array property. The slice is copied.
func (r *Representation) SetStringArray(key string, v []string) {
	r.set(key, slices.Clone(v))
}

// SetObject sets a nested representation. Siblings of v are dropped.
func (r *Representation) SetObject(key string, v Representation) {
	v.next = nil
	r.set(key, v)
}

// SetObjectArray sets an array of nested representations.
func (r *Representation) SetObjectArray(key string, v []Representation) {
	r.set(key, slices.Clone(v))
}

// Append adds a sibling after the last one.
// Siblings of sib are flattened into r.
func (r *Representation) Append(sib Representation) {
	rest := sib.next
	sib.next = nil
	r.next = append(r.next, sib)
	r.next = append(r.next, rest...)
}

// Has reports whether key is set.
func (r Representation) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Get returns the raw value for key.
func (r Representation) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// GetInt returns an integer property.
func (r Representation) GetInt(key string) (int64, bool) {
	v, ok := r.values[key].(int64)
	return v, ok
}

// GetString returns a string property.
func (r Representation) GetString(key string) (string, bool) {
	v, ok := r.values[key].(string)
	return v, ok
}

// GetStringArray returns a string array property.
func (r Representation) GetStringArray(key string) ([]string, bool) {
	v, ok := r.values[key].([]string)
	return v, ok
}

// GetObject returns a nested representation.
func (r Representation) GetObject(key string) (Representation, bool) {
	v, ok := r.values[key].(Representation)
	return v, ok
}

// GetObjectArray returns an array of nested representations.
func (r Representation) GetObjectArray(key string) ([]Representation, bool) {
	v, ok := r.values[key].([]Representation)
	return v, ok
}

// Keys returns the property names in insertion order.
func (r Representation) Keys() []string {
	return slices.Clone(r.keys)
}

// Len returns the number of properties on the head.
func (r Representation) Len() int {
	return len(r.keys)
}

// Siblings returns the representations following the head.
func (r Representation) Siblings() []Representation {
	return slices.Clone(r.next)
}

// Entries returns the head followed by its siblings, each without siblings.
func (r Representation) Entries() []Representation {
	head := r
	head.next = nil
	return append([]Representation{head}, r.next...)
}

// IsEmpty reports whether the representation has no properties and no siblings.
func (r Representation) IsEmpty() bool {
	return len(r.keys) == 0 && len(r.next) == 0
}

// Clone returns a deep copy.
func (r Representation) Clone() Representation {
	c := Representation{
		keys:   slices.Clone(r.keys),
		values: make(map[string]any, len(r.values)),
	}
	for k, v := range r.values {
		switch tv := v.(type) {
		case []string:
			c.values[k] = slices.Clone(tv)
		case Representation:
			c.values[k] = tv.Clone()
		case []Representation:
			arr := make([]Representation, len(tv))
			for i := range tv {
				arr[i] = tv[i].Clone()
			}
			c.values[k] = arr
		default:
			c.values[k] = v
		}
	}
	for _, n := range r.next {
		c.next = append(c.next, n.Clone())
	}
	return c
}

// Map converts the head into nested maps, ignoring siblings.
func (r Representation) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		switch tv := v.(type) {
		case Representation:
			m[k] = tv.Map()
		case []Representation:
			arr := make([]map[string]any, len(tv))
			for i := range tv {
				arr[i] = tv[i].Map()
			}
			m[k] = arr
		default:
			m[k] = v
		}
	}
	return m
}

// MarshalCBOR implements cbor.Marshaler.
func (r Representation) MarshalCBOR() ([]byte, error) {
	if len(r.next) == 0 {
		return wire.Marshal(r.Map())
	}
	entries := r.Entries()
	arr := make([]map[string]any, len(entries))
	for i := range entries {
		arr[i] = entries[i].Map()
	}
	return wire.Marshal(arr)
}

// UnmarshalCBOR implements cbor.Unmarshaler.
// Property order follows sorted key order since CBOR maps carry none.
func (r *Representation) UnmarshalCBOR(data []byte) error {
	var raw any
	if err := wire.Unmarshal(data, &raw); err != nil {
		return err
	}
	rep, err := fromValue(raw)
	if err != nil {
		return err
	}
	*r = rep
	return nil
}

// Encode encodes the representation to CBOR bytes.
func (r Representation) Encode() ([]byte, error) {
	return r.MarshalCBOR()
}

// Decode decodes CBOR bytes into a representation.
func Decode(data []byte) (Representation, error) {
	var r Representation
	if err := r.UnmarshalCBOR(data); err != nil {
		return Representation{}, fmt.Errorf("failed to decode representation: %w", err)
	}
	return r, nil
}

func fromValue(raw any) (Representation, error) {
	switch v := raw.(type) {
	case map[string]any:
		return fromMap(v)
	case []any:
		if len(v) == 0 {
			return NewRepresentation(), nil
		}
		var head Representation
		for i, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				return Representation{}, fmt.Errorf("%w: entry %d is %T", ErrNotRepresentation, i, e)
			}
			rep, err := fromMap(m)
			if err != nil {
				return Representation{}, err
			}
			if i == 0 {
				head = rep
			} else {
				head.Append(rep)
			}
		}
		return head, nil
	default:
		return Representation{}, fmt.Errorf("%w: %T", ErrNotRepresentation, raw)
	}
}

func fromMap(m map[string]any) (Representation, error) {
	r := NewRepresentation()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := m[k].(type) {
		case uint64:
			r.SetInt(k, int64(v))
		case int64:
			r.SetInt(k, v)
		case string:
			r.SetString(k, v)
		case map[string]any:
			obj, err := fromMap(v)
			if err != nil {
				return Representation{}, err
			}
			r.SetObject(k, obj)
		case []any:
			if err := setArray(&r, k, v); err != nil {
				return Representation{}, err
			}
		default:
			return Representation{}, fmt.Errorf("%w: %q is %T", ErrUnsupportedValue, k, v)
		}
	}
	return r, nil
}

func setArray(r *Representation, key string, arr []any) error {
	if len(arr) == 0 {
		r.set(key, []string{})
		return nil
	}
	switch arr[0].(type) {
	case string:
		strs := make([]string, len(arr))
		for i, e := range arr {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("%w: %q mixes strings and %T", ErrUnsupportedValue, key, e)
			}
			strs[i] = s
		}
		r.SetStringArray(key, strs)
	case map[string]any:
		objs := make([]Representation, len(arr))
		for i, e := range arr {
			m, ok := e.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %q mixes objects and %T", ErrUnsupportedValue, key, e)
			}
			obj, err := fromMap(m)
			if err != nil {
				return err
			}
			objs[i] = obj
		}
		r.SetObjectArray(key, objs)
	default:
		return fmt.Errorf("%w: %q holds %T", ErrUnsupportedValue, key, arr[0])
	}
	return nil
}
