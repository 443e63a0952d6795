package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Florian-Lackner/score-based-explanations/entity"
	"github.com/Florian-Lackner/score-based-explanations/explainer"
)

// ScoreRow holds the scores of one entity, one per table column.
type ScoreRow struct {
	Entity  entity.Entity
	Scores  []float64
	Runtime time.Duration
}

// ScoreTable is one score kind evaluated over many entities.
type ScoreTable struct {
	Kind    explainer.Kind
	Groups  [][]string
	Columns []string
	Rows    []ScoreRow
}

// ScoreTable scores every entity over features. Single-feature kinds get a
// column per feature; multi-feature kinds a column per non-empty subset.
func (s *Session) ScoreTable(kind explainer.Kind, entities []entity.Entity, features []string) (*ScoreTable, error) {
	if err := s.Schema.CheckFeatures(features); err != nil {
		return nil, err
	}
	groups := kind.Groups(features)
	t := &ScoreTable{Kind: kind, Groups: groups}
	for _, g := range groups {
		t.Columns = append(t.Columns, explainer.GroupName(g))
	}
	for i, e := range entities {
		start := time.Now()
		scores, err := s.Engine.ScoreAll(kind, e, groups)
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", e, err)
		}
		t.Rows = append(t.Rows, ScoreRow{Entity: e, Scores: scores, Runtime: time.Since(start)})
		log.Debug().Int("entity", i).Str("kind", kind.String()).Msg("scored-entity")
	}
	return t, nil
}

// WriteDat writes the table as space-separated text: a header of column
// names and "Runtime", then one line of scores and seconds per entity.
func (t *ScoreTable) WriteDat(w io.Writer) error {
	if _, err := io.WriteString(w, strings.Join(append(append([]string{}, t.Columns...), "Runtime"), " ")+"\n"); err != nil {
		return err
	}
	for _, r := range t.Rows {
		fields := make([]string, 0, len(r.Scores)+1)
		for _, v := range r.Scores {
			fields = append(fields, strconv.FormatFloat(v, 'g', -1, 64))
		}
		fields = append(fields, fmt.Sprintf("%.8f", r.Runtime.Seconds()))
		if _, err := io.WriteString(w, strings.Join(fields, " ")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// DatFileName names a table file the way result directories are laid out:
// single_<dataset>_<distribution>_<kind>.dat or multiple_... .
func DatFileName(dataset, distribution string, kind explainer.Kind) string {
	prefix := "single"
	if kind.MultiFeature() {
		prefix = "multiple"
	}
	return fmt.Sprintf("%s_%s_%s_%s.dat", prefix, dataset, distribution, kind)
}

// SaveDat writes the table into dir, creating it if needed, and returns
// the file path.
func (t *ScoreTable) SaveDat(dir, dataset, distribution string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, DatFileName(dataset, distribution, t.Kind))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := t.WriteDat(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

type yamlRow struct {
	Entity  map[string]string  `yaml:"entity"`
	Scores  map[string]float64 `yaml:"scores"`
	Runtime float64            `yaml:"runtime"`
}

type yamlTable struct {
	Kind    string    `yaml:"kind"`
	Columns []string  `yaml:"columns"`
	Rows    []yamlRow `yaml:"rows"`
}

// WriteYAML writes the table with each entity's values alongside its scores.
func (t *ScoreTable) WriteYAML(w io.Writer) error {
	out := yamlTable{Kind: t.Kind.String(), Columns: t.Columns}
	for _, r := range t.Rows {
		yr := yamlRow{
			Entity:  map[string]string{},
			Scores:  map[string]float64{},
			Runtime: r.Runtime.Seconds(),
		}
		for i := 0; i < r.Entity.Len(); i++ {
			yr.Entity[r.Entity.Name(i)] = r.Entity.At(i).String()
		}
		for i, c := range t.Columns {
			yr.Scores[c] = r.Scores[i]
		}
		out.Rows = append(out.Rows, yr)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(out)
}
