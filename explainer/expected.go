package explainer

import (
	"gonum.org/v1/gonum/floats"

	"github.com/Florian-Lackner/score-based-explanations/cache"
	"github.com/Florian-Lackner/score-based-explanations/entity"
)

// ExpectedPrediction is the distribution-weighted mean prediction over the
// partial entities of (ent, fixed). When every completion weighs 0 it falls
// back to ent's own prediction. Results are memoized on ent's content and
// the fixed set, in any order.
func (e *Engine) ExpectedPrediction(ent entity.Entity, fixed []string) (float64, error) {
	if err := e.checkFeatures(ent, fixed); err != nil {
		return 0, err
	}
	return e.expectedPrediction(ent, entity.Canonical(fixed))
}

// expectedPrediction expects a canonical fixed set.
func (e *Engine) expectedPrediction(ent entity.Entity, fixed []string) (float64, error) {
	key := cache.Key(ent.Key(), entity.SetKey(fixed))
	return e.expected.Get(key, func() (float64, error) {
		if len(fixed) == len(e.schema) {
			return e.oracle.Predict(ent)
		}
		rows, err := e.partialEntities(ent, fixed)
		if err != nil {
			return 0, err
		}
		weights := make([]float64, len(rows))
		for i, r := range rows {
			weights[i] = e.dist.Weight(r, fixed)
		}
		total := floats.Sum(weights)
		if total == 0 {
			e.logger.Debug().Str("entity", ent.String()).Strs("fixed", fixed).
				Msg("zero-total-weight-fallback")
			return e.oracle.Predict(ent)
		}
		preds, err := e.oracle.PredictBatch(rows)
		if err != nil {
			return 0, err
		}
		return floats.Dot(weights, preds) / total, nil
	})
}
