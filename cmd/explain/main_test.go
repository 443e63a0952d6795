package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/Florian-Lackner/score-based-explanations/explainer"
)

func TestDefaultDatasetName(t *testing.T) {
	is := is.New(t)
	is.Equal(defaultDatasetName(""), "sample")
	is.Equal(defaultDatasetName("../testdata/blood.csv"), "blood")
	is.Equal(defaultDatasetName("/data/adult.data.csv"), "adult.data")
}

func TestParseKinds(t *testing.T) {
	is := is.New(t)
	kinds, err := parseKinds(nil)
	is.NoErr(err)
	is.Equal(kinds, explainer.Kinds())

	kinds, err = parseKinds([]string{"shap_plus", "XResp", "counter"})
	is.NoErr(err)
	is.Equal(kinds, []explainer.Kind{explainer.KindShapPlus, explainer.KindXResp, explainer.KindCounter})

	_, err = parseKinds([]string{"shap", "lime"})
	is.True(errors.Is(err, explainer.ErrUnknownScoreKind))
}

func TestScoresWritesTables(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	root := newRootCmd()
	root.SetArgs([]string{"scores", "counter", "shap_plus", "--results-path", dir})
	is.NoErr(root.Execute())

	dat, err := os.ReadFile(filepath.Join(dir, "single_sample_uniform_counter.dat"))
	is.NoErr(err)
	lines := strings.Split(strings.TrimSpace(string(dat)), "\n")
	is.Equal(lines[0], "A B Runtime")
	// one row per positively labeled sample entity
	is.Equal(len(lines), 5)

	_, err = os.Stat(filepath.Join(dir, "multiple_sample_uniform_shap_plus.dat"))
	is.NoErr(err)

	root = newRootCmd()
	root.SetArgs([]string{"scores", "lime", "--results-path", dir})
	is.True(root.Execute() != nil)
}
