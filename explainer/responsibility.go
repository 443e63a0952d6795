package explainer

import (
	"strconv"

	"github.com/Florian-Lackner/score-based-explanations/cache"
	"github.com/Florian-Lackner/score-based-explanations/coop"
	"github.com/Florian-Lackner/score-based-explanations/entity"
)

// Responsibility is the result of a contingency search: Weight is
// 1/(1+size) of the smallest contingency set that exposed a positive
// counterfactual, and BestCounter the largest such counterfactual seen at
// that size. Both are 0 when no set up to the size bound does.
type Responsibility struct {
	Weight      float64
	BestCounter float64
}

// Score is the scalar responsibility, Weight * BestCounter.
func (r Responsibility) Score() float64 {
	return r.Weight * r.BestCounter
}

// XResp searches contingency sets of the other features, smallest first,
// up to maxSize members. Each set is released while feature stays fixed;
// completions whose prediction still equals ent's are the witnesses whose
// single-feature counter is measured. A negative maxSize searches every
// size. Results are memoized.
func (e *Engine) XResp(ent entity.Entity, feature string, maxSize int) (Responsibility, error) {
	if err := e.checkFeatures(ent, []string{feature}); err != nil {
		return Responsibility{}, err
	}
	candidates := e.schema.Complement([]string{feature})
	if maxSize < 0 || maxSize > len(candidates) {
		maxSize = len(candidates)
	}
	key := cache.Key(ent.Key(), feature, strconv.Itoa(maxSize))
	return e.resp.Get(key, func() (Responsibility, error) {
		return e.xResp(ent, feature, candidates, maxSize)
	})
}

func (e *Engine) xResp(ent entity.Entity, feature string, candidates []string, maxSize int) (Responsibility, error) {
	target, err := e.oracle.Predict(ent)
	if err != nil {
		return Responsibility{}, err
	}
	best := 0.0
	for size := 0; size <= maxSize; size++ {
		for _, contingency := range coop.Teams(candidates, size) {
			rows, err := e.partialEntities(ent, e.schema.Complement(contingency))
			if err != nil {
				return Responsibility{}, err
			}
			preds, err := e.oracle.PredictBatch(rows)
			if err != nil {
				return Responsibility{}, err
			}
			for i, row := range rows {
				if preds[i] != target {
					continue
				}
				c, err := e.counterPlus(row, []string{feature})
				if err != nil {
					return Responsibility{}, err
				}
				best = max(best, c)
			}
		}
		if best > 0 {
			e.logger.Debug().Str("feature", feature).Int("size", size).
				Float64("best-counter", best).Msg("contingency-found")
			return Responsibility{Weight: 1 / float64(1+size), BestCounter: best}, nil
		}
	}
	return Responsibility{}, nil
}

// Resp is the scalar responsibility of feature, searching contingency sets
// up to the engine's maximum size.
func (e *Engine) Resp(ent entity.Entity, feature string) (float64, error) {
	r, err := e.XResp(ent, feature, e.maxContingency)
	if err != nil {
		return 0, err
	}
	return r.Score(), nil
}
