package explainer

import (
	"github.com/Florian-Lackner/score-based-explanations/coop"
	"github.com/Florian-Lackner/score-based-explanations/entity"
)

// game is the expected-prediction game of one entity: a coalition's worth
// is the expected prediction with the coalition's features fixed.
func (e *Engine) game(ent entity.Entity) *coop.Game[string] {
	return &coop.Game[string]{
		Players: e.schema,
		V: func(coalition []string) (float64, error) {
			return e.expectedPrediction(ent, entity.Canonical(coalition))
		},
		Threads: e.threads,
	}
}

// Shap is the exact Shapley value of feature.
func (e *Engine) Shap(ent entity.Entity, feature string) (float64, error) {
	return e.ShapPlus(ent, []string{feature})
}

// ShapPlus is the exact Shapley value of features acting as one player.
func (e *Engine) ShapPlus(ent entity.Entity, features []string) (float64, error) {
	if err := e.checkFeatures(ent, features); err != nil {
		return 0, err
	}
	return e.game(ent).Shapley(entity.Canonical(features))
}
