// Package config loads the housing pipeline settings from YAML, a .env file
// and environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/scigo-housing/dataset"
	"github.com/YuminosukeSato/scigo-housing/pipeline"
	"github.com/YuminosukeSato/scigo-housing/pkg/errors"
	"github.com/YuminosukeSato/scigo-housing/pkg/log"
	"github.com/YuminosukeSato/scigo-housing/serving"
)

// Environment variables that override the file values.
const (
	EnvDataPath    = "HOUSING_DATA_PATH"
	EnvArtifactDir = "HOUSING_ARTIFACT_DIR"
	EnvPlotDir     = "HOUSING_PLOT_DIR"
	EnvLogLevel    = "HOUSING_LOG_LEVEL"
	EnvSeed        = "HOUSING_SEED"
	EnvTestSize    = "HOUSING_TEST_SIZE"
	EnvFitScope    = "HOUSING_CODEC_FIT_SCOPE"
	EnvBand        = "HOUSING_BAND"
)

// Config holds all pipeline configuration.
type Config struct {
	DataPath    string `yaml:"data_path"`
	ArtifactDir string `yaml:"artifact_dir"`
	PlotDir     string `yaml:"plot_dir"`
	LogLevel    string `yaml:"log_level"`

	Training TrainingConfig `yaml:"training"`
	Models   ModelsConfig   `yaml:"models"`
	Serving  ServingConfig  `yaml:"serving"`
}

// TrainingConfig controls the split, codec fitting and model selection.
type TrainingConfig struct {
	TestSize      float64 `yaml:"test_size"`
	Seed          int64   `yaml:"seed"`
	CodecFitScope string  `yaml:"codec_fit_scope"` // train or full
	MinTestR2     float64 `yaml:"min_test_r2"`
}

// ModelsConfig holds the candidate hyper-parameters.
type ModelsConfig struct {
	NEstimators int `yaml:"n_estimators"`
	MaxDepth    int `yaml:"max_depth"`
}

// ServingConfig controls prediction output.
type ServingConfig struct {
	Band float64 `yaml:"band"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	p := pipeline.DefaultCandidateParams()
	return &Config{
		DataPath:    "Housing.csv",
		ArtifactDir: "artifacts",
		PlotDir:     "plots",
		LogLevel:    "info",
		Training: TrainingConfig{
			TestSize:      dataset.DefaultTestSize,
			Seed:          dataset.DefaultSeed,
			CodecFitScope: string(pipeline.FitScopeTrain),
			MinTestR2:     pipeline.DefaultMinTestR2,
		},
		Models: ModelsConfig{
			NEstimators: p.NEstimators,
			MaxDepth:    p.MaxDepth,
		},
		Serving: ServingConfig{
			Band: serving.DefaultBand,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			log.GetLoggerWithName("config").Debug("Config file not found, using defaults", log.PathKey, path)
		case err != nil:
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "failed to parse config %s", path)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads variables from the given .env files (".env" when none is given)
// into the process environment. Existing variables win and missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return errors.Wrap(err, "failed to load .env")
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config")
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvDataPath); v != "" {
		c.DataPath = v
	}
	if v := os.Getenv(EnvArtifactDir); v != "" {
		c.ArtifactDir = v
	}
	if v := os.Getenv(EnvPlotDir); v != "" {
		c.PlotDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvFitScope); v != "" {
		c.Training.CodecFitScope = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.NewValidationError(EnvSeed, "must be an integer", v)
		}
		c.Training.Seed = n
	}
	if v := os.Getenv(EnvTestSize); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.NewValidationError(EnvTestSize, "must be a number", v)
		}
		c.Training.TestSize = f
	}
	if v := os.Getenv(EnvBand); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.NewValidationError(EnvBand, "must be a number", v)
		}
		c.Serving.Band = f
	}
	return nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.ArtifactDir == "" {
		return errors.NewValidationError("artifact_dir", "must not be empty", c.ArtifactDir)
	}
	if c.Training.TestSize <= 0 || c.Training.TestSize >= 1 {
		return errors.NewValidationError("training.test_size", "must be in (0, 1)", c.Training.TestSize)
	}
	switch pipeline.FitScope(c.Training.CodecFitScope) {
	case pipeline.FitScopeTrain, pipeline.FitScopeFull:
	default:
		return errors.NewValidationError("training.codec_fit_scope", "must be train or full", c.Training.CodecFitScope)
	}
	if c.Models.NEstimators < 1 {
		return errors.NewValidationError("models.n_estimators", "must be at least 1", c.Models.NEstimators)
	}
	if c.Models.MaxDepth < 1 {
		return errors.NewValidationError("models.max_depth", "must be at least 1", c.Models.MaxDepth)
	}
	if c.Serving.Band < 0 || c.Serving.Band >= 1 {
		return errors.NewValidationError("serving.band", "must be in [0, 1)", c.Serving.Band)
	}
	if _, err := log.ToLogLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("log_level", "must be debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// PipelineOptions maps the training settings onto pipeline.Options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		TestSize:  c.Training.TestSize,
		Seed:      c.Training.Seed,
		FitScope:  pipeline.FitScope(c.Training.CodecFitScope),
		MinTestR2: c.Training.MinTestR2,
		Candidates: pipeline.DefaultCandidates(pipeline.CandidateParams{
			Seed:        c.Training.Seed,
			NEstimators: c.Models.NEstimators,
			MaxDepth:    c.Models.MaxDepth,
		}),
	}
}

// ServingOptions returns the session options for the serving settings.
func (c *Config) ServingOptions() []serving.Option {
	return []serving.Option{serving.WithBand(c.Serving.Band)}
}
