// Package coop computes exact Shapley values of cooperative games.
package coop

import (
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/combin"
)

// Value is a characteristic function: the worth of a coalition.
type Value[P comparable] func(coalition []P) (float64, error)

// Game is a cooperative game over a fixed player set.
type Game[P comparable] struct {
	Players []P
	V       Value[P]
	// Threads bounds concurrent evaluations of V. Values <= 1 evaluate
	// sequentially. V must be safe for concurrent use when Threads > 1.
	Threads int
}

// Coefficient is the Shapley weight of a coalition of size members in a
// game with the given number of players: size!(players-size-1)!/players!.
func Coefficient(players, size int) float64 {
	if players <= 0 || size < 0 || size >= players {
		return 0
	}
	return 1 / (float64(players) * float64(combin.Binomial(players-1, size)))
}

// Teams returns every subset of players of the given size, in
// lexicographic index order.
func Teams[P comparable](players []P, size int) [][]P {
	if size < 0 || size > len(players) {
		return nil
	}
	if size == 0 {
		return [][]P{{}}
	}
	var teams [][]P
	gen := combin.NewCombinationGenerator(len(players), size)
	idx := make([]int, size)
	for gen.Next() {
		gen.Combination(idx)
		team := make([]P, size)
		for i, j := range idx {
			team[i] = players[j]
		}
		teams = append(teams, team)
	}
	return teams
}

// Shapley returns the exact Shapley value of the target coalition. The
// target acts as a single merged player, so with m other players each
// team of size s is weighted by Coefficient(m+1, s). For a single target
// player this is the usual formula. An empty target is worth 0.
func (g *Game[P]) Shapley(target []P) (float64, error) {
	target = lo.Uniq(target)
	if len(target) == 0 {
		return 0, nil
	}
	others := lo.Without(g.Players, target...)
	players := len(others) + 1

	var teams [][]P
	var coefs []float64
	for s := 0; s <= len(others); s++ {
		c := Coefficient(players, s)
		for _, team := range Teams(others, s) {
			teams = append(teams, team)
			coefs = append(coefs, c)
		}
	}
	log.Trace().Int("players", players).Int("teams", len(teams)).Msg("shapley-teams")

	contrib := make([]float64, len(teams))
	marginal := func(i int) error {
		without, err := g.V(teams[i])
		if err != nil {
			return err
		}
		with, err := g.V(append(append([]P{}, teams[i]...), target...))
		if err != nil {
			return err
		}
		contrib[i] = coefs[i] * (with - without)
		return nil
	}

	if g.Threads <= 1 {
		for i := range teams {
			if err := marginal(i); err != nil {
				return 0, err
			}
		}
	} else {
		eg := errgroup.Group{}
		eg.SetLimit(g.Threads)
		for i := range teams {
			i := i
			eg.Go(func() error { return marginal(i) })
		}
		if err := eg.Wait(); err != nil {
			return 0, err
		}
	}

	// sum in team order so the result does not depend on scheduling
	total := 0.0
	for _, c := range contrib {
		total += c
	}
	return total, nil
}
