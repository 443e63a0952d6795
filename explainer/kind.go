package explainer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/Florian-Lackner/score-based-explanations/coop"
	"github.com/Florian-Lackner/score-based-explanations/entity"
)

var (
	ErrUnknownScoreKind = errors.New("unknown score kind")
	ErrFeatureCount     = errors.New("score kind takes exactly one feature")
)

// Kind selects a score.
type Kind int

const (
	KindCounter Kind = iota
	KindCounterPlus
	KindXResp
	KindResp
	KindShap
	KindShapPlus
)

var kindNames = map[Kind]string{
	KindCounter:     "counter",
	KindCounterPlus: "counter_plus",
	KindXResp:       "x_resp",
	KindResp:        "resp",
	KindShap:        "shap",
	KindShapPlus:    "shap_plus",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MultiFeature reports whether the kind scores feature sets rather than
// single features.
func (k Kind) MultiFeature() bool {
	return k == KindCounterPlus || k == KindShapPlus
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindCounter, KindCounterPlus, KindXResp, KindResp, KindShap, KindShapPlus}
}

// ParseKind accepts the snake_case names, ignoring case; "counterplus" and
// "xresp" style spellings are accepted too.
func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, k := range Kinds() {
		if norm == k.String() || norm == strings.ReplaceAll(k.String(), "_", "") {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScoreKind, s)
}

type scoreFunc func(e *Engine, ent entity.Entity, features []string) (float64, error)

func single(f func(e *Engine, ent entity.Entity, feature string) (float64, error)) scoreFunc {
	return func(e *Engine, ent entity.Entity, features []string) (float64, error) {
		if len(features) != 1 {
			return 0, fmt.Errorf("%w: got %d", ErrFeatureCount, len(features))
		}
		return f(e, ent, features[0])
	}
}

var scorers = map[Kind]scoreFunc{
	KindCounter:     single((*Engine).Counter),
	KindCounterPlus: (*Engine).CounterPlus,
	KindXResp: single(func(e *Engine, ent entity.Entity, feature string) (float64, error) {
		r, err := e.XResp(ent, feature, e.maxContingency)
		return r.Weight, err
	}),
	KindResp:     single((*Engine).Resp),
	KindShap:     single((*Engine).Shap),
	KindShapPlus: (*Engine).ShapPlus,
}

// Score computes one score. Single-feature kinds need exactly one feature.
// KindXResp yields the responsibility weight only.
func (e *Engine) Score(kind Kind, ent entity.Entity, features []string) (float64, error) {
	f, ok := scorers[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownScoreKind, kind)
	}
	start := time.Now()
	v, err := f(e, ent, features)
	if err != nil {
		return 0, err
	}
	e.metrics.ScoreSeconds.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
	return v, nil
}

// ScoreAll scores every group, concurrently when the engine has more than
// one thread. Results are in group order.
func (e *Engine) ScoreAll(kind Kind, ent entity.Entity, groups [][]string) ([]float64, error) {
	out := make([]float64, len(groups))
	if e.threads <= 1 {
		for i, g := range groups {
			v, err := e.Score(kind, ent, g)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	eg := errgroup.Group{}
	eg.SetLimit(e.threads)
	for i, g := range groups {
		i, g := i, g
		eg.Go(func() error {
			v, err := e.Score(kind, ent, g)
			out[i] = v
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Singletons wraps each feature in its own group.
func Singletons(features []string) [][]string {
	return lo.Map(features, func(f string, _ int) []string { return []string{f} })
}

// Powerset returns every non-empty subset of features, smallest first.
func Powerset(features []string) [][]string {
	var out [][]string
	for size := 1; size <= len(features); size++ {
		out = append(out, coop.Teams(features, size)...)
	}
	return out
}

// Groups returns the groups a kind is reported over: singletons, or the
// powerset for multi-feature kinds.
func (k Kind) Groups(features []string) [][]string {
	if k.MultiFeature() {
		return Powerset(features)
	}
	return Singletons(features)
}

// GroupName names a feature group in score tables, e.g. "A_B".
func GroupName(group []string) string {
	return strings.Join(group, "_")
}
