// Package entity holds the feature vectors being explained, their schema,
// and the per-feature value domains used for enumeration.
package entity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Schema is the ordered, fixed feature set of a problem.
type Schema []string

// Entity is an immutable ordered mapping from feature name to value.
type Entity struct {
	names  []string
	values []Value
	index  map[string]int
}

// New creates an entity. names and values are copied.
func New(names []string, values []Value) (Entity, error) {
	if len(names) != len(values) {
		return Entity{}, fmt.Errorf("%w: %d features but %d values",
			ErrSchemaMismatch, len(names), len(values))
	}
	e := Entity{
		names:  make([]string, len(names)),
		values: make([]Value, len(values)),
		index:  make(map[string]int, len(names)),
	}
	copy(e.names, names)
	copy(e.values, values)
	for i, n := range e.names {
		if _, ok := e.index[n]; ok {
			return Entity{}, fmt.Errorf("%w: duplicate feature %q", ErrSchemaMismatch, n)
		}
		e.index[n] = i
	}
	return e, nil
}

// FromMap creates an entity with the column order of the schema.
func FromMap(schema Schema, m map[string]Value) (Entity, error) {
	if len(m) != len(schema) {
		return Entity{}, fmt.Errorf("%w: expected %d features, got %d",
			ErrSchemaMismatch, len(schema), len(m))
	}
	values := make([]Value, len(schema))
	for i, f := range schema {
		v, ok := m[f]
		if !ok {
			return Entity{}, fmt.Errorf("%w: missing feature %q", ErrSchemaMismatch, f)
		}
		values[i] = v
	}
	return New(schema, values)
}

// Features returns the feature names in column order.
func (e Entity) Features() []string {
	return append([]string(nil), e.names...)
}

// Values returns the values in column order.
func (e Entity) Values() []Value {
	out := make([]Value, len(e.values))
	copy(out, e.values)
	return out
}

func (e Entity) Len() int {
	return len(e.names)
}

// Name returns the feature name of column i.
func (e Entity) Name(i int) string {
	return e.names[i]
}

// At returns the value of column i.
func (e Entity) At(i int) Value {
	return e.values[i]
}

func (e Entity) Has(feature string) bool {
	_, ok := e.index[feature]
	return ok
}

func (e Entity) Get(feature string) (Value, bool) {
	i, ok := e.index[feature]
	if !ok {
		return Value{}, false
	}
	return e.values[i], true
}

// With returns a copy of the entity with feature set to v.
func (e Entity) With(feature string, v Value) (Entity, error) {
	i, ok := e.index[feature]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %w %q", ErrSchemaMismatch, ErrUnknownFeature, feature)
	}
	values := e.Values()
	values[i] = v
	return New(e.names, values)
}

// Key is the canonical identity of the entity: its (feature, value) pairs in
// sorted feature order. Column order does not affect it.
func (e Entity) Key() string {
	pairs := make([]string, len(e.names))
	for i, n := range e.names {
		pairs[i] = n + "=" + e.values[i].key()
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\x1f")
}

func (e Entity) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, n := range e.names {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(n)
		sb.WriteString("=")
		sb.WriteString(e.values[i].String())
	}
	sb.WriteString("}")
	return sb.String()
}

// Check returns ErrSchemaMismatch unless e has exactly the schema's features.
func (s Schema) Check(e Entity) error {
	if e.Len() != len(s) {
		return fmt.Errorf("%w: entity has %d features, schema has %d",
			ErrSchemaMismatch, e.Len(), len(s))
	}
	for _, f := range s {
		if !e.Has(f) {
			return fmt.Errorf("%w: entity is missing feature %q", ErrSchemaMismatch, f)
		}
	}
	return nil
}

// CheckFeatures verifies every feature is part of the schema.
func (s Schema) CheckFeatures(features []string) error {
	for _, f := range features {
		if !lo.Contains(s, f) {
			return fmt.Errorf("%w: %w %q", ErrSchemaMismatch, ErrUnknownFeature, f)
		}
	}
	return nil
}
