package explainer

import (
	"github.com/Florian-Lackner/score-based-explanations/entity"
)

// Counter is the drop from ent's prediction to its expected prediction
// when feature alone is released to its distribution.
func (e *Engine) Counter(ent entity.Entity, feature string) (float64, error) {
	return e.CounterPlus(ent, []string{feature})
}

// CounterPlus releases every feature in features at once.
func (e *Engine) CounterPlus(ent entity.Entity, features []string) (float64, error) {
	if err := e.checkFeatures(ent, features); err != nil {
		return 0, err
	}
	return e.counterPlus(ent, features)
}

func (e *Engine) counterPlus(ent entity.Entity, features []string) (float64, error) {
	pred, err := e.oracle.Predict(ent)
	if err != nil {
		return 0, err
	}
	exp, err := e.expectedPrediction(ent, entity.Canonical(e.schema.Complement(features)))
	if err != nil {
		return 0, err
	}
	return pred - exp, nil
}
