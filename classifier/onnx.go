package classifier

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/owulveryck/onnx-go"
	"github.com/owulveryck/onnx-go/backend/x/gorgonnx"
	"github.com/rs/zerolog/log"
	"gorgonia.org/tensor"

	"github.com/Florian-Lackner/score-based-explanations/oracle"
)

var errNoOutput = errors.New("onnx model produced no output")

// ONNX runs an exported model with the gorgonia backend. The model takes a
// single (rows, columns) float32 input. A single output column is read as
// a probability of label 1; wider outputs are scores per label.
type ONNX struct {
	// the backend graph is not safe for concurrent runs
	mu      sync.Mutex
	backend *gorgonnx.Graph
	model   *onnx.Model
}

func LoadONNX(path string) (*ONNX, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	backend := gorgonnx.NewGraph()
	model := onnx.NewModel(backend)
	if err := model.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("unmarshalling onnx model %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("loaded-onnx-model")
	return &ONNX{backend: backend, model: model}, nil
}

func (c *ONNX) Predict(m oracle.Matrix) ([]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	in := tensor.New(tensor.WithShape(m.Rows, len(m.Columns)), tensor.WithBacking(m.Data))
	if err := c.model.SetInput(0, in); err != nil {
		return nil, err
	}
	if err := c.backend.Run(); err != nil {
		return nil, fmt.Errorf("running onnx model: %w", err)
	}
	outputs, err := c.model.GetOutputTensors()
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, errNoOutput
	}
	data, ok := outputs[0].Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("onnx output has type %T, want []float32", outputs[0].Data())
	}
	return labelsFromScores(data, m.Rows)
}

// labelsFromScores turns a row-major output into labels.
func labelsFromScores(data []float32, rows int) ([]int, error) {
	if rows == 0 || len(data)%rows != 0 || len(data) == 0 {
		return nil, fmt.Errorf("%w: %d outputs for %d rows", oracle.ErrPredictionCount, len(data), rows)
	}
	width := len(data) / rows
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		row := data[i*width : (i+1)*width]
		if width == 1 {
			if row[0] >= 0.5 {
				out[i] = 1
			}
			continue
		}
		best := 0
		for j := range row {
			if row[j] > row[best] {
				best = j
			}
		}
		out[i] = best
	}
	return out, nil
}
