package classifier

import (
	"github.com/Florian-Lackner/score-based-explanations/oracle"
)

// Rule labels each row with a predicate over its named columns.
type Rule struct {
	Name string
	Fn   func(row map[string]float32) int
}

func (c Rule) Predict(m oracle.Matrix) ([]int, error) {
	out := make([]int, m.Rows)
	row := make(map[string]float32, len(m.Columns))
	for i := 0; i < m.Rows; i++ {
		for j, x := range m.Row(i) {
			row[m.Columns[j]] = x
		}
		out[i] = c.Fn(row)
	}
	return out, nil
}

// Sample is the handcrafted two-feature classifier used to sanity check
// scores: 1 iff (A != 0 and B == 3) or (A == 0 and B == 1).
func Sample() Rule {
	return Rule{
		Name: "sample",
		Fn: func(row map[string]float32) int {
			a, b := row["A"], row["B"]
			if (a != 0 && b == 3) || (a == 0 && b == 1) {
				return 1
			}
			return 0
		},
	}
}
