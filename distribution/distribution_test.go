package distribution

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/Florian-Lackner/score-based-explanations/dataset"
	"github.com/Florian-Lackner/score-based-explanations/entity"
	"github.com/Florian-Lackner/score-based-explanations/stats"
)

func refTable(t *testing.T) *dataset.Table {
	t.Helper()
	in := "A,B\n0,1\n0,1\n1,1\n1,2\n"
	tbl, err := dataset.ReadCSV(strings.NewReader(in), dataset.CSVOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func row(t *testing.T, a, b float64) entity.Entity {
	t.Helper()
	e, err := entity.New([]string{"A", "B"}, []entity.Value{entity.Num(a), entity.Num(b)})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestNew(t *testing.T) {
	is := is.New(t)
	ref := refTable(t)
	for _, name := range []string{UniformName, FullyFactorizedName, EmpiricalName, ExperimentalName} {
		m, err := New(name, ref)
		is.NoErr(err)
		is.True(m != nil)
	}
	_, err := New("gaussian", ref)
	is.True(errors.Is(err, ErrUnknownDistribution))

	_, err = New(EmpiricalName, nil)
	is.True(errors.Is(err, ErrNoReferenceData))
	_, err = New(UniformName, nil)
	is.NoErr(err)
}

func TestUniform(t *testing.T) {
	is := is.New(t)
	is.Equal(Uniform{}.Weight(row(t, 9, 9), nil), 1.0)
}

func TestFullyFactorized(t *testing.T) {
	is := is.New(t)
	d, err := NewFullyFactorized(refTable(t))
	is.NoErr(err)
	is.Equal(d.Frequency("A", entity.Num(0)), 0.5)
	is.Equal(d.Frequency("B", entity.Num(1)), 0.75)

	type tc struct {
		a, b  float64
		fixed []string
		w     float64
	}
	cases := []tc{
		{0, 1, nil, 0.5 * 0.75},
		{0, 1, []string{"A"}, 0.75},
		{1, 2, []string{"B"}, 0.5},
		{0, 1, []string{"A", "B"}, 1},
		{5, 1, nil, 0},
	}
	for _, c := range cases {
		is.True(stats.FuzzyEqual(d.Weight(row(t, c.a, c.b), c.fixed), c.w))
	}
}

func TestEmpirical(t *testing.T) {
	is := is.New(t)
	d, err := NewEmpirical(refTable(t))
	is.NoErr(err)
	is.Equal(d.Support(), 3)
	is.Equal(d.Weight(row(t, 0, 1), nil), 2.0)
	is.Equal(d.Weight(row(t, 1, 2), []string{"A"}), 1.0)
	is.Equal(d.Weight(row(t, 2, 2), nil), 0.0)

	// column order of the scored row does not matter
	swapped, err := entity.New([]string{"B", "A"}, []entity.Value{entity.Num(1), entity.Num(0)})
	is.NoErr(err)
	is.Equal(d.Weight(swapped, nil), 2.0)
}
