package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Florian-Lackner/score-based-explanations/oracle"
)

// Linear is a thresholded linear model: label 1 iff
// bias + sum(weight * x) > threshold. Columns without a weight contribute
// nothing.
type Linear struct {
	Bias      float64            `yaml:"bias"`
	Threshold float64            `yaml:"threshold"`
	Weights   map[string]float64 `yaml:"weights"`
}

func LoadLinear(path string) (*Linear, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l := &Linear{}
	if err := yaml.Unmarshal(b, l); err != nil {
		return nil, fmt.Errorf("decoding linear model %s: %w", path, err)
	}
	return l, nil
}

func (c *Linear) Score(columns []string, row []float32) float64 {
	s := c.Bias
	for j, x := range row {
		s += c.Weights[columns[j]] * float64(x)
	}
	return s
}

func (c *Linear) Predict(m oracle.Matrix) ([]int, error) {
	out := make([]int, m.Rows)
	for i := 0; i < m.Rows; i++ {
		if c.Score(m.Columns, m.Row(i)) > c.Threshold {
			out[i] = 1
		}
	}
	return out, nil
}
