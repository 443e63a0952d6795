// Package distribution provides the weighting schemes used to marginalize
// free features: a row's weight is its relative plausibility given which
// features were held fixed.
package distribution

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"github.com/Florian-Lackner/score-based-explanations/dataset"
	"github.com/Florian-Lackner/score-based-explanations/entity"
)

const (
	UniformName         = "uniform"
	FullyFactorizedName = "fully_factorized"
	EmpiricalName       = "empirical"
	// ExperimentalName is an older name for the empirical distribution.
	ExperimentalName = "experimental"
)

var (
	ErrUnknownDistribution = errors.New("unknown distribution")
	ErrNoReferenceData     = errors.New("distribution needs a non-empty reference dataset")
)

// Model scores one fully specified row. fixed is the set of features that
// were held at the explained entity's values.
type Model interface {
	Weight(row entity.Entity, fixed []string) float64
}

// Names lists the distributions New understands.
func Names() []string {
	return []string{UniformName, FullyFactorizedName, EmpiricalName}
}

// New builds a distribution model by name.
func New(name string, ref *dataset.Table) (Model, error) {
	switch name {
	case UniformName:
		return Uniform{}, nil
	case FullyFactorizedName:
		return NewFullyFactorized(ref)
	case EmpiricalName, ExperimentalName:
		return NewEmpirical(ref)
	}
	return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownDistribution, name, Names())
}

// Uniform weighs every row equally, so the expected value is a plain mean.
type Uniform struct{}

func (Uniform) Weight(entity.Entity, []string) float64 {
	return 1
}

// FullyFactorized treats features as independent: a row's weight is the
// product of the empirical frequencies of its free feature values.
type FullyFactorized struct {
	freq map[string]map[entity.Value]float64
}

func NewFullyFactorized(ref *dataset.Table) (*FullyFactorized, error) {
	if ref == nil || ref.Len() == 0 {
		return nil, ErrNoReferenceData
	}
	n := float64(ref.Len())
	freq := make(map[string]map[entity.Value]float64, len(ref.Schema))
	for _, f := range ref.Schema {
		freq[f] = map[entity.Value]float64{}
	}
	for _, row := range ref.Rows {
		for i := 0; i < row.Len(); i++ {
			freq[row.Name(i)][row.At(i)]++
		}
	}
	for _, counts := range freq {
		for v := range counts {
			counts[v] /= n
		}
	}
	log.Debug().Int("rows", ref.Len()).Msg("built-fully-factorized-distribution")
	return &FullyFactorized{freq: freq}, nil
}

func (d *FullyFactorized) Weight(row entity.Entity, fixed []string) float64 {
	factors := make([]float64, 0, row.Len())
	for i := 0; i < row.Len(); i++ {
		name := row.Name(i)
		if lo.Contains(fixed, name) {
			continue
		}
		// unseen values have frequency 0
		factors = append(factors, d.freq[name][row.At(i)])
	}
	if len(factors) == 0 {
		return 1
	}
	return floats.Prod(factors)
}

// Frequency returns the empirical frequency of value for feature.
func (d *FullyFactorized) Frequency(feature string, v entity.Value) float64 {
	return d.freq[feature][v]
}

// Empirical weighs a row by how often exactly that row occurs in the
// reference dataset; unseen rows weigh 0.
type Empirical struct {
	counts map[string]float64
}

func NewEmpirical(ref *dataset.Table) (*Empirical, error) {
	if ref == nil || ref.Len() == 0 {
		return nil, ErrNoReferenceData
	}
	counts := make(map[string]float64)
	for _, row := range ref.Rows {
		counts[row.Key()]++
	}
	log.Debug().Int("rows", ref.Len()).Int("unique", len(counts)).
		Msg("built-empirical-distribution")
	return &Empirical{counts: counts}, nil
}

func (d *Empirical) Weight(row entity.Entity, _ []string) float64 {
	return d.counts[row.Key()]
}

// Support returns the number of distinct observed rows.
func (d *Empirical) Support() int {
	return len(d.counts)
}
