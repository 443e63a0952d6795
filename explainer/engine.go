// Package explainer computes score-based explanations of a binary
// classifier's predictions: counterfactual scores, responsibility and exact
// Shapley values, all built on a weighted expected prediction over partial
// entities.
//
// An Engine owns its memo tables; nothing is shared between engines.
package explainer

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Florian-Lackner/score-based-explanations/cache"
	"github.com/Florian-Lackner/score-based-explanations/classifier"
	"github.com/Florian-Lackner/score-based-explanations/distribution"
	"github.com/Florian-Lackner/score-based-explanations/entity"
	"github.com/Florian-Lackner/score-based-explanations/metrics"
	"github.com/Florian-Lackner/score-based-explanations/oracle"
)

const (
	predictionCache     = "prediction"
	expectedCache       = "expected"
	responsibilityCache = "responsibility"
)

var errNoClassifier = errors.New("explainer needs a classifier")

// engineSeq names engines that were not given a name.
var engineSeq atomic.Int64

// Params are the collaborators of an engine.
type Params struct {
	Schema     entity.Schema
	Domains    entity.Domains
	Classifier oracle.Classifier
	// Preprocessor defaults to passing numeric features through.
	Preprocessor oracle.Preprocessor
	// Distribution defaults to uniform.
	Distribution  distribution.Model
	PositiveLabel int
}

type Engine struct {
	name    string
	schema  entity.Schema
	domains entity.Domains
	dist    distribution.Model
	oracle  *oracle.Oracle

	predictions *cache.Memo[float64]
	expected    *cache.Memo[float64]
	resp        *cache.Memo[Responsibility]

	threads        int
	maxContingency int
	cacheSize      int

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	shared     bool
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

type Option func(*Engine)

// WithCacheSize bounds every memo table to size entries. 0 (the default)
// leaves them unbounded.
func WithCacheSize(size int) Option {
	return func(e *Engine) { e.cacheSize = size }
}

// WithThreads evaluates independent coalitions and features concurrently.
func WithThreads(n int) Option {
	return func(e *Engine) { e.threads = n }
}

// WithMaxContingencySize sets the maxSize Resp and score dispatch use. A
// negative size (the default) searches every contingency set.
func WithMaxContingencySize(n int) Option {
	return func(e *Engine) { e.maxContingency = n }
}

// WithRegisterer registers the engine's metrics with reg instead of a
// private registry. Collectors carry an engine label holding the engine's
// name, so several engines can share reg as long as their names differ.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registerer = reg
		e.gatherer, _ = reg.(prometheus.Gatherer)
		e.shared = true
	}
}

// WithName names the engine in logs and in the engine label of shared
// registries. Unnamed engines are numbered engine-1, engine-2, ...
func WithName(name string) Option {
	return func(e *Engine) { e.name = name }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func New(p Params, opts ...Option) (*Engine, error) {
	if len(p.Schema) == 0 {
		return nil, entity.ErrSchemaMismatch
	}
	if p.Classifier == nil {
		return nil, errNoClassifier
	}
	if p.Preprocessor == nil {
		p.Preprocessor = classifier.Numeric{Schema: p.Schema}
	}
	if p.Distribution == nil {
		p.Distribution = distribution.Uniform{}
	}
	reg := prometheus.NewRegistry()
	e := &Engine{
		schema:         append(entity.Schema(nil), p.Schema...),
		domains:        p.Domains,
		dist:           p.Distribution,
		threads:        1,
		maxContingency: -1,
		registerer:     reg,
		gatherer:       reg,
		logger:         log.Logger,
	}
	for _, o := range opts {
		o(e)
	}
	if e.name == "" {
		e.name = fmt.Sprintf("engine-%d", engineSeq.Add(1))
	}
	e.logger = e.logger.With().Str("engine", e.name).Logger()
	if e.shared {
		e.registerer = prometheus.WrapRegistererWith(prometheus.Labels{"engine": e.name}, e.registerer)
	}
	e.metrics = metrics.New(e.registerer)

	var err error
	if e.predictions, err = newMemo[float64](predictionCache, e.cacheSize, e.metrics); err != nil {
		return nil, err
	}
	if e.expected, err = newMemo[float64](expectedCache, e.cacheSize, e.metrics); err != nil {
		return nil, err
	}
	if e.resp, err = newMemo[Responsibility](responsibilityCache, e.cacheSize, e.metrics); err != nil {
		return nil, err
	}
	e.oracle = oracle.New(p.Preprocessor, p.Classifier, p.PositiveLabel, e.predictions, e.metrics)
	e.oracle.SetLogger(e.logger)

	e.logger.Debug().Strs("schema", e.schema).Int("threads", e.threads).
		Int("cache-size", e.cacheSize).Int("max-contingency", e.maxContingency).
		Msg("created-explainer")
	return e, nil
}

func newMemo[V any](name string, size int, m *metrics.Metrics) (*cache.Memo[V], error) {
	return cache.New(name, size, cache.WithCounters[V](
		m.CacheHits.WithLabelValues(name), m.CacheMisses.WithLabelValues(name)))
}

// Name returns the engine's name.
func (e *Engine) Name() string {
	return e.name
}

func (e *Engine) Schema() entity.Schema {
	return append(entity.Schema(nil), e.schema...)
}

func (e *Engine) Domains() entity.Domains {
	return e.domains
}

// SetThreads changes the concurrency of later calls.
func (e *Engine) SetThreads(n int) {
	e.threads = n
}

func (e *Engine) SetMaxContingencySize(n int) {
	e.maxContingency = n
}

func (e *Engine) MaxContingencySize() int {
	return e.maxContingency
}

// Prediction returns the memoized 0/1 prediction of the entity.
func (e *Engine) Prediction(ent entity.Entity) (float64, error) {
	if err := e.schema.Check(ent); err != nil {
		return 0, err
	}
	return e.oracle.Predict(ent)
}

// Clear drops every memoized result.
func (e *Engine) Clear() {
	e.predictions.Clear()
	e.expected.Clear()
	e.resp.Clear()
	e.logger.Debug().Msg("cleared-explainer-caches")
}

// CacheStats reports each memo table's counters.
func (e *Engine) CacheStats() []cache.Stats {
	return []cache.Stats{e.predictions.Stats(), e.expected.Stats(), e.resp.Stats()}
}

// Registry returns the gatherer holding the engine's metrics, or nil when
// a registerer without gathering was supplied.
func (e *Engine) Registry() prometheus.Gatherer {
	return e.gatherer
}

func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// checkFeatures validates an entity and the features named alongside it.
func (e *Engine) checkFeatures(ent entity.Entity, features []string) error {
	if err := e.schema.Check(ent); err != nil {
		return err
	}
	return e.schema.CheckFeatures(features)
}
