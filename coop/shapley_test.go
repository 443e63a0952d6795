package coop

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/Florian-Lackner/score-based-explanations/stats"
)

func TestCoefficientsSumToOne(t *testing.T) {
	is := is.New(t)
	for players := 1; players <= 8; players++ {
		total := 0.0
		for s := 0; s < players; s++ {
			total += float64(combin.Binomial(players-1, s)) * Coefficient(players, s)
		}
		is.True(stats.FuzzyEqual(total, 1))
	}
	is.Equal(Coefficient(3, 3), 0.0)
	is.Equal(Coefficient(0, 0), 0.0)
	is.True(stats.FuzzyEqual(Coefficient(3, 1), 1.0/6))
}

func TestTeams(t *testing.T) {
	is := is.New(t)
	is.Equal(Teams([]string{"A", "B", "C"}, 0), [][]string{{}})
	is.Equal(Teams([]string{"A", "B", "C"}, 2), [][]string{{"A", "B"}, {"A", "C"}, {"B", "C"}})
	is.Equal(len(Teams([]string{"A"}, 2)), 0)
}

// glove game: L1, L2 hold left gloves, R a right glove; a pair is worth 1.
func glove(c []string) (float64, error) {
	left := lo.Contains(c, "L1") || lo.Contains(c, "L2")
	if left && lo.Contains(c, "R") {
		return 1, nil
	}
	return 0, nil
}

func TestGloveGame(t *testing.T) {
	is := is.New(t)
	for _, threads := range []int{1, 4} {
		g := &Game[string]{Players: []string{"L1", "L2", "R"}, V: glove, Threads: threads}
		type tc struct {
			target []string
			want   float64
		}
		cases := []tc{
			{[]string{"L1"}, 1.0 / 6},
			{[]string{"L2"}, 1.0 / 6},
			{[]string{"R"}, 2.0 / 3},
			{nil, 0},
			// L1 and L2 merged face R alone
			{[]string{"L1", "L2"}, 0.5},
		}
		for _, c := range cases {
			got, err := g.Shapley(c.target)
			is.NoErr(err)
			is.True(stats.FuzzyEqual(got, c.want))
		}
	}
}

func TestEfficiency(t *testing.T) {
	is := is.New(t)
	weights := map[string]float64{"a": 0.5, "b": -1, "c": 2, "d": 0.25}
	// non-additive: square of the coalition's weight sum
	v := func(c []string) (float64, error) {
		s := 0.0
		for _, p := range c {
			s += weights[p]
		}
		return s * s, nil
	}
	players := []string{"a", "b", "c", "d"}
	g := &Game[string]{Players: players, V: v}
	total := 0.0
	for _, p := range players {
		phi, err := g.Shapley([]string{p})
		is.NoErr(err)
		total += phi
	}
	grand, _ := v(players)
	empty, _ := v(nil)
	is.True(stats.FuzzyEqual(total, grand-empty))
}

func TestSymmetry(t *testing.T) {
	is := is.New(t)
	// x and y are interchangeable
	v := func(c []int) (float64, error) {
		n := 0.0
		for _, p := range c {
			if p == 1 || p == 2 {
				n++
			}
		}
		if lo.Contains(c, 3) {
			n *= 2
		}
		return n, nil
	}
	g := &Game[int]{Players: []int{1, 2, 3}, V: v}
	x, err := g.Shapley([]int{1})
	is.NoErr(err)
	y, err := g.Shapley([]int{2})
	is.NoErr(err)
	is.Equal(x, y)
}

func TestErrorPropagates(t *testing.T) {
	is := is.New(t)
	boom := errors.New("boom")
	g := &Game[string]{
		Players: []string{"a", "b"},
		V:       func([]string) (float64, error) { return 0, boom },
		Threads: 2,
	}
	_, err := g.Shapley([]string{"a"})
	is.True(errors.Is(err, boom))
}
