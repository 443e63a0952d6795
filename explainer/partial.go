package explainer

import (
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/Florian-Lackner/score-based-explanations/entity"
)

// PartialEntities enumerates every completion of ent that keeps the fixed
// features at ent's values and draws each free feature from its domain.
// Rows keep ent's column order; the last free column varies fastest.
func (e *Engine) PartialEntities(ent entity.Entity, fixed []string) ([]entity.Entity, error) {
	if err := e.checkFeatures(ent, fixed); err != nil {
		return nil, err
	}
	return e.partialEntities(ent, fixed)
}

func (e *Engine) partialEntities(ent entity.Entity, fixed []string) ([]entity.Entity, error) {
	var free []int
	var domains [][]entity.Value
	for i := 0; i < ent.Len(); i++ {
		name := ent.Name(i)
		if lo.Contains(fixed, name) {
			continue
		}
		vals, err := e.domains.Of(name)
		if err != nil {
			return nil, err
		}
		free = append(free, i)
		domains = append(domains, vals)
	}
	if len(free) == 0 {
		return []entity.Entity{ent}, nil
	}

	lens := lo.Map(domains, func(d []entity.Value, _ int) int { return len(d) })
	names := ent.Features()
	var rows []entity.Entity
	gen := combin.NewCartesianGenerator(lens)
	pick := make([]int, len(lens))
	for gen.Next() {
		gen.Product(pick)
		values := ent.Values()
		for j, col := range free {
			values[col] = domains[j][pick[j]]
		}
		row, err := entity.New(names, values)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	e.logger.Trace().Int("free", len(free)).Int("rows", len(rows)).Msg("partial-entities")
	return rows, nil
}
