package runner

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/Florian-Lackner/score-based-explanations/config"
	"github.com/Florian-Lackner/score-based-explanations/distribution"
	"github.com/Florian-Lackner/score-based-explanations/entity"
	"github.com/Florian-Lackner/score-based-explanations/explainer"
	"github.com/Florian-Lackner/score-based-explanations/stats"
)

func sampleSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func bloodConfig(t *testing.T, dist string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	err := cfg.Load([]string{
		"--data-path", "../testdata/blood.csv",
		"--target", "Donated",
		"--model-kind", config.ModelKindLinear,
		"--model-path", "../testdata/blood_linear.yaml",
		"--distribution", dist,
	})
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestSampleSession(t *testing.T) {
	is := is.New(t)
	s := sampleSession(t)
	is.Equal(s.Schema, entity.Schema{"A", "B"})
	is.Equal(len(s.Entities), 16)

	pos, err := s.PositiveEntities(s.Entities)
	is.NoErr(err)
	// (0,1) and (a,3) for a != 0
	is.Equal(len(pos), 4)
}

func TestScoreTableDat(t *testing.T) {
	is := is.New(t)
	s := sampleSession(t)
	e, err := ParseEntity(s.Schema, []string{"A=0", "B=1"})
	is.NoErr(err)

	tbl, err := s.ScoreTable(explainer.KindCounter, []entity.Entity{e}, []string{"A", "B"})
	is.NoErr(err)
	is.Equal(tbl.Columns, []string{"A", "B"})
	is.Equal(tbl.Rows[0].Scores, []float64{0.75, 0.75})

	var buf bytes.Buffer
	is.NoErr(tbl.WriteDat(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	is.Equal(lines[0], "A B Runtime")
	is.True(strings.HasPrefix(lines[1], "0.75 0.75 "))

	multi, err := s.ScoreTable(explainer.KindShapPlus, []entity.Entity{e}, []string{"A", "B"})
	is.NoErr(err)
	is.Equal(multi.Columns, []string{"A", "B", "A_B"})
	is.True(stats.FuzzyEqual(multi.Rows[0].Scores[2], 0.75))

	_, err = s.ScoreTable(explainer.KindShap, []entity.Entity{e}, []string{"C"})
	is.True(errors.Is(err, entity.ErrUnknownFeature))
}

func TestSaveDatAndYAML(t *testing.T) {
	is := is.New(t)
	s := sampleSession(t)
	pos, err := s.PositiveEntities(s.Entities)
	is.NoErr(err)
	tbl, err := s.ScoreTable(explainer.KindResp, pos, s.Schema)
	is.NoErr(err)

	dir := t.TempDir()
	path, err := tbl.SaveDat(dir, "sample", s.Distribution())
	is.NoErr(err)
	is.Equal(filepath.Base(path), "single_sample_uniform_resp.dat")
	b, err := os.ReadFile(path)
	is.NoErr(err)
	is.Equal(strings.Count(string(b), "\n"), len(pos)+1)

	is.Equal(DatFileName("blood", "empirical", explainer.KindCounterPlus),
		"multiple_blood_empirical_counter_plus.dat")

	var buf bytes.Buffer
	is.NoErr(tbl.WriteYAML(&buf))
	is.True(strings.Contains(buf.String(), "kind: resp"))

	buf.Reset()
	is.NoErr(tbl.Summary(&buf))
	is.True(strings.Contains(buf.String(), "resp over 4 entities"))
}

func TestBloodSessionShapleyEfficiency(t *testing.T) {
	is := is.New(t)
	for _, dist := range distribution.Names() {
		s, err := NewSession(bloodConfig(t, dist))
		is.NoErr(err)
		is.Equal(len(s.Schema), 4)
		pos, err := s.PositiveEntities(s.Entities)
		is.NoErr(err)

		tbl, err := s.ScoreTable(explainer.KindShap, pos[:2], s.Schema)
		is.NoErr(err)
		for _, r := range tbl.Rows {
			base, err := s.Engine.ExpectedPrediction(r.Entity, nil)
			is.NoErr(err)
			total := 0.0
			for _, v := range r.Scores {
				total += v
			}
			is.True(stats.FuzzyEqual(total, 1-base))
		}
	}
}

func TestSessionErrors(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	is.NoErr(cfg.Load([]string{"--model-kind", "linear"}))
	_, err := NewSession(cfg)
	is.True(errors.Is(err, errNoSchema))

	cfg = config.DefaultConfig()
	is.NoErr(cfg.Load([]string{"--domains-path", "../testdata/sample_domains.yaml", "--model-kind", "linear"}))
	_, err = NewSession(cfg)
	is.True(errors.Is(err, errNoModelPath))

	cfg = config.DefaultConfig()
	is.NoErr(cfg.Load([]string{"--domains-path", "../testdata/sample_domains.yaml", "--model-kind", "forest"}))
	_, err = NewSession(cfg)
	is.True(errors.Is(err, errUnknownModel))

	cfg = config.DefaultConfig()
	is.NoErr(cfg.Load([]string{"--distribution", "gaussian"}))
	_, err = NewSession(cfg)
	is.True(errors.Is(err, distribution.ErrUnknownDistribution))

	// empirical needs reference data
	cfg = config.DefaultConfig()
	is.NoErr(cfg.Load([]string{"--distribution", "empirical"}))
	_, err = NewSession(cfg)
	is.True(errors.Is(err, distribution.ErrNoReferenceData))
}

func TestDomainsFile(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	is.NoErr(cfg.Load([]string{"--domains-path", "../testdata/fake_domains.yaml"}))
	s, err := NewSession(cfg)
	is.NoErr(err)
	is.Equal(s.Schema, entity.Schema{"A", "B", "C"})
	is.Equal(len(s.Entities), 64)
}

func TestParseEntity(t *testing.T) {
	is := is.New(t)
	schema := entity.Schema{"A", "B"}
	e, err := ParseEntity(schema, []string{"B=3", "A=x"})
	is.NoErr(err)
	is.Equal(e.String(), "{A=x B=3}")

	_, err = ParseEntity(schema, []string{"A=1"})
	is.True(errors.Is(err, entity.ErrSchemaMismatch))
	_, err = ParseEntity(schema, []string{"A=1", "Z=2"})
	is.True(errors.Is(err, entity.ErrUnknownFeature))
	_, err = ParseEntity(schema, []string{"A1"})
	is.True(errors.Is(err, errAssignmentSyntax))

	is.Equal(ParseFeatures([]string{"A,B", "C", " ,D"}), []string{"A", "B", "C", "D"})
}
