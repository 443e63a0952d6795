package entity

import (
	"strconv"
	"strings"
)

type Kind uint8

const (
	Numeric Kind = iota
	Categorical
)

// Value is a single feature value. It is either numeric or categorical, and
// is comparable so it can be used as a map key.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Num creates a numeric value.
func Num(f float64) Value {
	return Value{kind: Numeric, num: f}
}

// Cat creates a categorical value.
func Cat(s string) Value {
	return Value{kind: Categorical, str: s}
}

// ParseValue returns a numeric value if s parses as a float, and a
// categorical value otherwise.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Num(f)
	}
	return Cat(s)
}

func (v Value) Kind() Kind {
	return v.kind
}

// Float returns the numeric value, and false for categorical values.
func (v Value) Float() (float64, bool) {
	if v.kind != Numeric {
		return 0, false
	}
	return v.num, true
}

func (v Value) String() string {
	if v.kind == Numeric {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.str
}

// key is the canonical, kind-tagged form used in cache keys. The tag keeps
// Num(1) and Cat("1") apart.
func (v Value) key() string {
	if v.kind == Numeric {
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return "c:" + v.str
}

// Less orders numeric values before categorical ones, then by value.
func (v Value) Less(o Value) bool {
	if v.kind != o.kind {
		return v.kind < o.kind
	}
	if v.kind == Numeric {
		return v.num < o.num
	}
	return v.str < o.str
}
