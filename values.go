package sim3graph

import (
	"fmt"
	"sort"
)

// Values is a dictionary from Key to the current estimate of that unknown.
// Stored values are manifold elements of arbitrary, possibly heterogeneous
// types; callers retrieve them with the typed At helper.
//
// A Values snapshot must be treated as immutable for the duration of any
// factor evaluation over it. Independent evaluations over disjoint snapshots
// may run in parallel without locking.
type Values struct {
	m map[Key]any
}

// NewValues returns an empty estimate dictionary.
func NewValues() *Values {
	return &Values{m: make(map[Key]any)}
}

// Insert stores value under key, replacing any previous estimate.
func (v *Values) Insert(key Key, value any) {
	v.m[key] = value
}

// Has reports whether an estimate exists for key.
func (v *Values) Has(key Key) bool {
	_, ok := v.m[key]
	return ok
}

// Len returns the number of stored estimates.
func (v *Values) Len() int {
	return len(v.m)
}

// Keys returns all keys in ascending order.
func (v *Values) Keys() []Key {
	keys := make([]Key, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// At retrieves the estimate for key as type T. It returns an error if the
// key is absent or holds a value of a different type.
func At[T any](v *Values, key Key) (T, error) {
	var zero T
	raw, ok := v.m[key]
	if !ok {
		return zero, fmt.Errorf("values: no estimate for key %s", key)
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("values: key %s holds %T, not %T", key, raw, zero)
	}
	return typed, nil
}
