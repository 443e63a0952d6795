package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Florian-Lackner/score-based-explanations/config"
	"github.com/Florian-Lackner/score-based-explanations/dataset"
	"github.com/Florian-Lackner/score-based-explanations/explainer"
	"github.com/Florian-Lackner/score-based-explanations/runner"
)

var (
	GitVersion string

	cfg = config.DefaultConfig()

	// scores flags
	features    []string
	allEntities bool
	datasetName string
	writeYAML   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "explain",
		Short:   "Score-based explanations for classifier predictions",
		Version: GitVersion,
		Long: `Computes counterfactual, responsibility and Shapley scores for the
entities a classifier labels positive, and writes one table per score kind.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.LoadFlags(cmd.Flags()); err != nil {
				return err
			}
			setupLogging(cfg.GetBool(config.ConfigDebug))
			log.Debug().Msgf("Loaded config: %v", cfg.SanitizedSettings())
			return nil
		},
	}
	rootCmd.PersistentFlags().AddFlagSet(config.Flags())

	rootCmd.AddCommand(scoresCmd())
	rootCmd.AddCommand(schemaCmd())
	return rootCmd
}

// parseKinds parses kind arguments; no arguments selects every kind.
func parseKinds(args []string) ([]explainer.Kind, error) {
	if len(args) == 0 {
		return explainer.Kinds(), nil
	}
	kinds := make([]explainer.Kind, 0, len(args))
	for _, a := range args {
		k, err := explainer.ParseKind(a)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// scoresCmd scores the positive entities with every requested kind
func scoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores [kind...]",
		Short: "Write a score table per kind to the results directory",
		Long: fmt.Sprintf(`Scores every entity the classifier labels positive. Kinds are
%s; all of them when none are given. Tables are written as
<results-path>/single_... or multiple_<dataset>_<distribution>_<kind>.dat.`,
			strings.Join(lo.Map(explainer.Kinds(), func(k explainer.Kind, _ int) string { return k.String() }), ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args)
			if err != nil {
				return err
			}

			s, err := runner.NewSession(cfg)
			if err != nil {
				return err
			}
			entities := s.Entities
			if !allEntities {
				if entities, err = s.PositiveEntities(entities); err != nil {
					return err
				}
			}
			feats := runner.ParseFeatures(features)
			if len(feats) == 0 {
				feats = s.Schema
			}
			name := datasetName
			if name == "" {
				name = defaultDatasetName(cfg.GetString(config.ConfigDataPath))
			}
			dir := cfg.GetString(config.ConfigResultsPath)

			for _, kind := range kinds {
				start := time.Now()
				tbl, err := s.ScoreTable(kind, entities, feats)
				if err != nil {
					return err
				}
				path, err := tbl.SaveDat(dir, name, s.Distribution())
				if err != nil {
					return err
				}
				log.Info().Str("kind", kind.String()).Int("entities", len(entities)).
					Str("path", path).Dur("elapsed", time.Since(start)).Msg("wrote-score-table")
				if writeYAML {
					if err := saveYAML(tbl, strings.TrimSuffix(path, ".dat")+".yaml"); err != nil {
						return err
					}
				}
				fmt.Printf("=== %s ===\n", kind)
				if err := tbl.Summary(os.Stdout); err != nil {
					return err
				}
				fmt.Println()
			}
			for _, st := range s.Engine.CacheStats() {
				log.Info().Str("cache", st.Name).Uint64("hits", st.Hits).
					Uint64("misses", st.Misses).Float64("hit-rate", st.HitRate).Msg("cache-stats")
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&features, "features", nil, "features to score; all when empty")
	cmd.Flags().BoolVar(&allEntities, "all-entities", false, "score every entity, not just positively labeled ones")
	cmd.Flags().StringVar(&datasetName, "dataset", "", "dataset name used in table file names; derived from data-path when empty")
	cmd.Flags().BoolVar(&writeYAML, "yaml", false, "also write each table as YAML")
	return cmd
}

// schemaCmd prints the domains in the format accepted by --domains-path
func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the feature domains as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := runner.NewSession(cfg)
			if err != nil {
				return err
			}
			log.Info().Str("model", s.ModelKind()).Str("distribution", s.Distribution()).
				Int("entities", len(s.Entities)).Msg("session")
			return dataset.WriteDomains(os.Stdout, s.Schema, s.Domains)
		},
	}
}

func defaultDatasetName(dataPath string) string {
	if dataPath == "" {
		return "sample"
	}
	base := filepath.Base(dataPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func saveYAML(tbl *runner.ScoreTable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tbl.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
