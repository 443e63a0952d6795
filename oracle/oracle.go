// Package oracle turns a classifier and its preprocessing transform into a
// memoized 0/1 prediction for entities.
package oracle

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Florian-Lackner/score-based-explanations/cache"
	"github.com/Florian-Lackner/score-based-explanations/entity"
	"github.com/Florian-Lackner/score-based-explanations/metrics"
)

var ErrPredictionCount = errors.New("classifier returned wrong number of labels")

// Matrix is a preprocessed batch in row-major order.
type Matrix struct {
	Columns []string
	Rows    int
	Data    []float32
}

// Row returns row i as a slice into Data.
func (m Matrix) Row(i int) []float32 {
	w := len(m.Columns)
	return m.Data[i*w : (i+1)*w]
}

// Preprocessor encodes entities for a classifier.
type Preprocessor interface {
	Preprocess(rows []entity.Entity) (Matrix, error)
}

// Classifier labels every row of a preprocessed batch. It must be
// deterministic.
type Classifier interface {
	Predict(m Matrix) ([]int, error)
}

// Oracle predicts 1 for rows the classifier labels positive and 0 otherwise.
type Oracle struct {
	pre      Preprocessor
	clf      Classifier
	positive int
	memo     *cache.Memo[float64]
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// New builds an oracle. memo must not be shared with other oracles.
func New(pre Preprocessor, clf Classifier, positive int, memo *cache.Memo[float64],
	m *metrics.Metrics) *Oracle {
	return &Oracle{
		pre:      pre,
		clf:      clf,
		positive: positive,
		memo:     memo,
		metrics:  m,
		logger:   log.Logger,
	}
}

func (o *Oracle) SetLogger(l zerolog.Logger) {
	o.logger = l
}

// Predict returns the prediction for one entity, memoized on its content.
func (o *Oracle) Predict(e entity.Entity) (float64, error) {
	return o.memo.Get(e.Key(), func() (float64, error) {
		preds, err := o.PredictBatch([]entity.Entity{e})
		if err != nil {
			return 0, err
		}
		return preds[0], nil
	})
}

// PredictBatch predicts every row in one classifier call. Results are not
// memoized.
func (o *Oracle) PredictBatch(rows []entity.Entity) ([]float64, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	m, err := o.pre.Preprocess(rows)
	if err != nil {
		return nil, fmt.Errorf("preprocessing: %w", err)
	}
	labels, err := o.clf.Predict(m)
	if err != nil {
		return nil, err
	}
	if o.metrics != nil {
		o.metrics.ClassifierCalls.Inc()
		o.metrics.ClassifierRows.Add(float64(len(rows)))
	}
	if len(labels) != len(rows) {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrPredictionCount, len(rows), len(labels))
	}
	out := make([]float64, len(labels))
	for i, l := range labels {
		if l == o.positive {
			out[i] = 1
		}
	}
	o.logger.Trace().Int("rows", len(rows)).Msg("classified-batch")
	return out, nil
}

// Positive is the classifier label that counts as prediction 1.
func (o *Oracle) Positive() int {
	return o.positive
}

func (o *Oracle) Clear() {
	o.memo.Clear()
}
