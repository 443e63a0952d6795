package entity

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestKeyIgnoresColumnOrder(t *testing.T) {
	is := is.New(t)
	a, err := New([]string{"A", "B"}, []Value{Num(0), Cat("x")})
	is.NoErr(err)
	b, err := New([]string{"B", "A"}, []Value{Cat("x"), Num(0)})
	is.NoErr(err)
	is.Equal(a.Key(), b.Key())

	c, err := New([]string{"A", "B"}, []Value{Cat("0"), Cat("x")})
	is.NoErr(err)
	is.True(a.Key() != c.Key()) // numeric 0 and categorical "0" differ
}

func TestNewRejectsBadShapes(t *testing.T) {
	is := is.New(t)
	_, err := New([]string{"A", "B"}, []Value{Num(1)})
	is.True(errors.Is(err, ErrSchemaMismatch))

	_, err = New([]string{"A", "A"}, []Value{Num(1), Num(2)})
	is.True(errors.Is(err, ErrSchemaMismatch))
}

func TestEntityIsImmutable(t *testing.T) {
	is := is.New(t)
	names := []string{"A", "B"}
	vals := []Value{Num(1), Num(2)}
	e, err := New(names, vals)
	is.NoErr(err)
	vals[0] = Num(99)
	names[1] = "Z"
	v, ok := e.Get("A")
	is.True(ok)
	is.Equal(v, Num(1))
	is.True(e.Has("B"))

	e2, err := e.With("B", Num(7))
	is.NoErr(err)
	v, _ = e.Get("B")
	is.Equal(v, Num(2))
	v, _ = e2.Get("B")
	is.Equal(v, Num(7))

	_, err = e.With("C", Num(0))
	is.True(errors.Is(err, ErrUnknownFeature))
	is.True(errors.Is(err, ErrSchemaMismatch))
}

func TestSchemaCheck(t *testing.T) {
	is := is.New(t)
	schema := Schema{"A", "B"}
	type tc struct {
		names []string
		ok    bool
	}
	cases := []tc{
		{[]string{"A", "B"}, true},
		{[]string{"B", "A"}, true},
		{[]string{"A"}, false},
		{[]string{"A", "C"}, false},
		{[]string{"A", "B", "C"}, false},
	}
	for _, c := range cases {
		vals := make([]Value, len(c.names))
		for i := range vals {
			vals[i] = Num(float64(i))
		}
		e, err := New(c.names, vals)
		is.NoErr(err)
		err = schema.Check(e)
		if c.ok {
			is.NoErr(err)
		} else {
			is.True(errors.Is(err, ErrSchemaMismatch))
		}
	}
	is.True(errors.Is(schema.CheckFeatures([]string{"A", "Q"}), ErrUnknownFeature))
	is.NoErr(schema.CheckFeatures([]string{"B"}))
}

func TestFromMap(t *testing.T) {
	is := is.New(t)
	e, err := FromMap(Schema{"A", "B"}, map[string]Value{"B": Num(3), "A": Num(1)})
	is.NoErr(err)
	is.Equal(e.Features(), []string{"A", "B"})
	is.Equal(e.String(), "{A=1 B=3}")

	_, err = FromMap(Schema{"A", "B"}, map[string]Value{"A": Num(1), "C": Num(3)})
	is.True(errors.Is(err, ErrSchemaMismatch))
}

func TestCanonicalFeatureSets(t *testing.T) {
	is := is.New(t)
	is.Equal(SetKey([]string{"B", "A", "B"}), SetKey([]string{"A", "B"}))
	is.Equal(Canonical([]string{"C", "A", "B"}), []string{"A", "B", "C"})
	is.Equal(Schema{"A", "B", "C"}.Complement([]string{"B"}), []string{"A", "C"})
}

func TestDomains(t *testing.T) {
	is := is.New(t)
	d := NewDomains(map[string][]Value{
		"A": {Num(2), Num(0), Num(2)},
		"B": {},
	})
	vals, err := d.Of("A")
	is.NoErr(err)
	is.Equal(vals, []Value{Num(2), Num(0)})

	_, err = d.Of("B")
	is.True(errors.Is(err, ErrDomainExhaustion))
	_, err = d.Of("C")
	is.True(errors.Is(err, ErrDomainExhaustion))
	is.True(errors.Is(d.Validate(Schema{"A", "B"}), ErrDomainExhaustion))

	is.Equal(d.Sorted()["A"], []Value{Num(0), Num(2)})
}

func TestParseValue(t *testing.T) {
	is := is.New(t)
	is.Equal(ParseValue("3"), Num(3))
	is.Equal(ParseValue(" 2.5 "), Num(2.5))
	is.Equal(ParseValue("<3"), Cat("<3"))
	f, ok := Num(4).Float()
	is.True(ok)
	is.Equal(f, 4.0)
	_, ok = Cat("a").Float()
	is.True(!ok)
	is.True(Num(10).Less(Cat("a")))
}
