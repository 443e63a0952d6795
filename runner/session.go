// Package runner assembles an explainer session from configuration and
// scores batches of entities the way the batch CLI and shell report them.
package runner

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/Florian-Lackner/score-based-explanations/cache"
	"github.com/Florian-Lackner/score-based-explanations/classifier"
	"github.com/Florian-Lackner/score-based-explanations/config"
	"github.com/Florian-Lackner/score-based-explanations/dataset"
	"github.com/Florian-Lackner/score-based-explanations/distribution"
	"github.com/Florian-Lackner/score-based-explanations/entity"
	"github.com/Florian-Lackner/score-based-explanations/explainer"
	"github.com/Florian-Lackner/score-based-explanations/oracle"
)

// memoEntryBytes is a rough per-entry footprint used to size memo tables
// from a memory fraction.
const memoEntryBytes = 256

var (
	errNoSchema     = errors.New("no dataset or domains file to take features from")
	errNoModelPath  = errors.New("model kind needs a model-path")
	errUnknownModel = errors.New("unknown model kind")
	errNoEntities   = errors.New("no entities to explain")
)

// Session is an engine together with the data it was built from.
type Session struct {
	cfg      *config.Config
	Data     *dataset.Table
	Schema   entity.Schema
	Domains  entity.Domains
	Entities []entity.Entity
	Engine   *explainer.Engine

	distName  string
	modelKind string
}

// SampleDomains are the domains of the handcrafted sample classifier.
func SampleDomains() entity.Domains {
	vals := []entity.Value{entity.Num(0), entity.Num(1), entity.Num(2), entity.Num(3)}
	return entity.NewDomains(map[string][]entity.Value{"A": vals, "B": vals})
}

func NewSession(cfg *config.Config) (*Session, error) {
	s := &Session{
		cfg:       cfg,
		distName:  cfg.GetString(config.ConfigDistribution),
		modelKind: cfg.GetString(config.ConfigModelKind),
	}
	csvOpts := dataset.CSVOptions{
		Drop:     cfg.GetStringSlice(config.ConfigDropColumns),
		Target:   cfg.GetString(config.ConfigTarget),
		Encoding: cfg.GetString(config.ConfigCSVEncoding),
	}
	if path := cfg.GetString(config.ConfigDataPath); path != "" {
		data, err := dataset.ReadCSVFile(path, csvOpts)
		if err != nil {
			return nil, fmt.Errorf("reading dataset: %w", err)
		}
		s.Data = data
		s.Schema = data.Schema
	}
	if err := s.loadDomains(); err != nil {
		return nil, err
	}

	pre, clf, err := s.loadModel()
	if err != nil {
		return nil, err
	}
	dist, err := distribution.New(s.distName, s.Data)
	if err != nil {
		return nil, err
	}

	cacheSize := cfg.GetInt(config.ConfigCacheSize)
	if frac := cfg.GetFloat64(config.ConfigCacheMemoryFraction); cacheSize == 0 && frac > 0 {
		cacheSize = cache.SizeForMemory(frac, memoEntryBytes)
	}
	s.Engine, err = explainer.New(explainer.Params{
		Schema:        s.Schema,
		Domains:       s.Domains,
		Classifier:    clf,
		Preprocessor:  pre,
		Distribution:  dist,
		PositiveLabel: cfg.GetInt(config.ConfigPositiveLabel),
	},
		explainer.WithCacheSize(cacheSize),
		explainer.WithThreads(cfg.GetInt(config.ConfigThreads)),
		explainer.WithMaxContingencySize(cfg.GetInt(config.ConfigMaxContingencySize)),
	)
	if err != nil {
		return nil, err
	}

	if err := s.loadEntities(csvOpts); err != nil {
		return nil, err
	}
	log.Info().Strs("features", s.Schema).Str("model", s.modelKind).
		Str("distribution", s.distName).Int("entities", len(s.Entities)).
		Msg("session-ready")
	return s, nil
}

func (s *Session) loadDomains() error {
	path := s.cfg.GetString(config.ConfigDomainsPath)
	switch {
	case path != "":
		d, err := dataset.ReadDomainsFile(path)
		if err != nil {
			return err
		}
		s.Domains = d
		if s.Schema == nil {
			s.Schema = lo.Keys(d)
			sort.Strings(s.Schema)
		}
	case s.Data != nil:
		s.Domains = s.Data.Domains()
	case s.modelKind == config.ModelKindSample:
		s.Domains = SampleDomains()
		s.Schema = entity.Schema{"A", "B"}
	default:
		return errNoSchema
	}
	return s.Domains.Validate(s.Schema)
}

func (s *Session) loadModel() (oracle.Preprocessor, oracle.Classifier, error) {
	path := s.cfg.GetString(config.ConfigModelPath)
	switch s.modelKind {
	case config.ModelKindSample:
		return classifier.Numeric{Schema: s.Schema}, classifier.Sample(), nil
	case config.ModelKindLinear, config.ModelKindONNX:
		if path == "" {
			return nil, nil, fmt.Errorf("%w: %s", errNoModelPath, s.modelKind)
		}
		pre, err := classifier.NewOneHot(s.Schema, s.Domains, s.cfg.GetStringSlice(config.ConfigOneHot))
		if err != nil {
			return nil, nil, err
		}
		if s.modelKind == config.ModelKindLinear {
			clf, err := classifier.LoadLinear(path)
			return pre, clf, err
		}
		clf, err := classifier.LoadONNX(path)
		return pre, clf, err
	}
	return nil, nil, fmt.Errorf("%w: %q", errUnknownModel, s.modelKind)
}

// loadEntities reads the entities to explain: an explicit CSV, else the
// distinct dataset rows, else every combination of domain values.
func (s *Session) loadEntities(opts dataset.CSVOptions) error {
	var rows []entity.Entity
	if path := s.cfg.GetString(config.ConfigEntitiesPath); path != "" {
		t, err := dataset.ReadCSVFile(path, opts)
		if err != nil {
			return fmt.Errorf("reading entities: %w", err)
		}
		rows = t.Rows
	} else if s.Data != nil {
		rows = s.Data.Rows
	} else {
		all, err := s.AllEntities()
		if err != nil {
			return err
		}
		rows = all
	}
	s.Entities = lo.UniqBy(rows, func(e entity.Entity) string { return e.Key() })
	for _, e := range s.Entities {
		if err := s.Schema.Check(e); err != nil {
			return err
		}
	}
	return nil
}

// AllEntities enumerates the Cartesian product of the domains.
func (s *Session) AllEntities() ([]entity.Entity, error) {
	m := make(map[string]entity.Value, len(s.Schema))
	for _, f := range s.Schema {
		vals, err := s.Domains.Of(f)
		if err != nil {
			return nil, err
		}
		m[f] = vals[0]
	}
	seed, err := entity.FromMap(s.Schema, m)
	if err != nil {
		return nil, err
	}
	return s.Engine.PartialEntities(seed, nil)
}

// PositiveEntities keeps the entities predicted 1, warning about the rest.
func (s *Session) PositiveEntities(entities []entity.Entity) ([]entity.Entity, error) {
	var out []entity.Entity
	for _, e := range entities {
		p, err := s.Engine.Prediction(e)
		if err != nil {
			return nil, err
		}
		if p != 1 {
			log.Warn().Str("entity", e.String()).Msg("entity-not-predicted-positive-ignored")
			continue
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, errNoEntities
	}
	return out, nil
}

func (s *Session) Distribution() string {
	return s.distName
}

func (s *Session) ModelKind() string {
	return s.modelKind
}

func (s *Session) Config() *config.Config {
	return s.cfg
}
