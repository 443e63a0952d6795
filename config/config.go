// Package config holds the settings shared by the shell and the batch CLI.
// Values come from, in increasing priority: defaults, an optional YAML
// config file, SBE_-prefixed environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug               = "debug"
	ConfigDataPath            = "data-path"
	ConfigDomainsPath         = "domains-path"
	ConfigEntitiesPath        = "entities-path"
	ConfigResultsPath         = "results-path"
	ConfigModelPath           = "model-path"
	ConfigModelKind           = "model-kind"
	ConfigDistribution        = "distribution"
	ConfigPositiveLabel       = "positive-label"
	ConfigOneHot              = "one-hot"
	ConfigTarget              = "target"
	ConfigDropColumns         = "drop-columns"
	ConfigCacheSize           = "cache-size"
	ConfigCacheMemoryFraction = "cache-memory-fraction"
	ConfigThreads             = "threads"
	ConfigMaxContingencySize  = "max-contingency-size"
	ConfigCSVEncoding         = "csv-encoding"
	ConfigConfigFile          = "config-file"
	ConfigCPUProfile          = "cpu-profile"
	ConfigMemProfile          = "mem-profile"
)

const (
	ModelKindSample = "rule-sample"
	ModelKindLinear = "linear"
	ModelKindONNX   = "onnx"
)

const envPrefix = "SBE"

type Config struct {
	*viper.Viper
}

// DefaultConfig returns a config holding only defaults.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	setDefaults(c.Viper)
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigDataPath, "")
	v.SetDefault(ConfigDomainsPath, "")
	v.SetDefault(ConfigEntitiesPath, "")
	v.SetDefault(ConfigResultsPath, "results")
	v.SetDefault(ConfigModelPath, "")
	v.SetDefault(ConfigModelKind, ModelKindSample)
	v.SetDefault(ConfigDistribution, "uniform")
	v.SetDefault(ConfigPositiveLabel, 1)
	v.SetDefault(ConfigOneHot, []string{})
	v.SetDefault(ConfigTarget, "")
	v.SetDefault(ConfigDropColumns, []string{})
	v.SetDefault(ConfigCacheSize, 0)
	v.SetDefault(ConfigCacheMemoryFraction, 0.0)
	v.SetDefault(ConfigThreads, 1)
	v.SetDefault(ConfigMaxContingencySize, -1)
	v.SetDefault(ConfigCSVEncoding, "utf-8")
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
}

// Flags returns the flag set Load parses.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("sbe", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigDataPath, "", "reference dataset (CSV with header)")
	fs.String(ConfigDomainsPath, "", "YAML file of explicit feature domains; inferred from the data when empty")
	fs.String(ConfigEntitiesPath, "", "CSV of entities to explain; the dataset rows when empty")
	fs.String(ConfigResultsPath, "results", "directory score tables are written to")
	fs.String(ConfigModelPath, "", "model file for the linear and onnx model kinds")
	fs.String(ConfigModelKind, ModelKindSample, "rule-sample, linear or onnx")
	fs.String(ConfigDistribution, "uniform", "uniform, fully_factorized or empirical")
	fs.Int(ConfigPositiveLabel, 1, "classifier label that counts as prediction 1")
	fs.StringSlice(ConfigOneHot, nil, "features to one-hot encode (all, when the model needs it and this is empty)")
	fs.String(ConfigTarget, "", "label column of the dataset, dropped before explaining")
	fs.StringSlice(ConfigDropColumns, nil, "dataset columns to ignore, e.g. identifiers")
	fs.Int(ConfigCacheSize, 0, "bound on each memo table; 0 is unbounded")
	fs.Float64(ConfigCacheMemoryFraction, 0, "size memo tables to this fraction of physical memory")
	fs.Int(ConfigThreads, 1, "concurrent coalition and feature evaluations")
	fs.Int(ConfigMaxContingencySize, -1, "largest contingency set searched by resp; negative searches all")
	fs.String(ConfigCSVEncoding, "utf-8", "dataset encoding: utf-8, latin1 or windows-1252")
	fs.String(ConfigConfigFile, "", "YAML config file")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a heap profile to this file on exit")
	return fs
}

// Load parses args as flags and merges the environment and config file.
func (c *Config) Load(args []string) error {
	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.LoadFlags(fs)
}

// LoadFlags merges an already parsed flag set, e.g. one owned by a cobra
// command.
func (c *Config) LoadFlags(fs *pflag.FlagSet) error {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	if path := v.GetString(ConfigConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("read-config-file")
	}
	c.Viper = v
	return nil
}

// SanitizedSettings returns the settings for display.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
