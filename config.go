package sharedclustering

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// PrimaryClusterMethod selects the PrimaryClusterFinder strategy.
type PrimaryClusterMethod string

const (
	PrimaryClustersHalfMatch PrimaryClusterMethod = "half_match"
	PrimaryClustersGrowth    PrimaryClusterMethod = "growth"
)

// Config controls the analysis. Start with [DefaultConfig] and override
// the fields you need, or load a YAML file with [LoadConfig].
type Config struct {
	// MinClusterSize filters statistically insignificant overlaps: fewer
	// shared matches than this are noise. Must be >= 1. Default: 3.
	MinClusterSize int `yaml:"min_cluster_size"`

	// MaxClusterSize caps the neighbors reported per match by the
	// nearest-neighbor finders. Must be >= 1. Default: 100.
	MaxClusterSize int `yaml:"max_cluster_size"`

	// RowLimit is the number of rows after which an output part is
	// finalized and a new one started. Must be >= 1. Default: 100000.
	RowLimit int `yaml:"row_limit"`

	// Metric names the distance metric used to build merge trees.
	// Default: "overlap_weighted_euclidean".
	Metric string `yaml:"metric"`

	// PrimaryClusters selects "half_match" or "growth". Default: "half_match".
	PrimaryClusters PrimaryClusterMethod `yaml:"primary_clusters"`

	// GrowthMaxClusterSize bounds cluster growth for the "growth" method.
	// Must be >= MinClusterSize when used. Default: 50.
	GrowthMaxClusterSize int `yaml:"growth_max_cluster_size"`

	// ImmediateFamily lists match indexes ignored by cross-cluster
	// correlation and favored by the close-weighted metric.
	ImmediateFamily []int `yaml:"immediate_family,omitempty"`

	// Workers controls the goroutines used by parallel stages.
	// 0 means runtime.NumCPU(). Default: 0.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		MinClusterSize:       3,
		MaxClusterSize:       DefaultMaxClusterSize,
		RowLimit:             100000,
		Metric:               MetricOverlapWeightedEuclidean,
		PrimaryClusters:      PrimaryClustersHalfMatch,
		GrowthMaxClusterSize: 50,
	}
}

// LoadConfig reads a YAML config file. Fields absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("sharedclustering: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("sharedclustering: parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.MaxClusterSize == 0 {
		cfg.MaxClusterSize = DefaultMaxClusterSize
	}
	if cfg.RowLimit == 0 {
		cfg.RowLimit = 100000
	}
	if cfg.Metric == "" {
		cfg.Metric = MetricOverlapWeightedEuclidean
	}
	if cfg.PrimaryClusters == "" {
		cfg.PrimaryClusters = PrimaryClustersHalfMatch
	}
	if cfg.GrowthMaxClusterSize == 0 {
		cfg.GrowthMaxClusterSize = 50
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.MinClusterSize < 1 {
		return fmt.Errorf("%w: MinClusterSize must be >= 1, got %d", ErrInvalidConfig, cfg.MinClusterSize)
	}
	if cfg.MaxClusterSize < 1 {
		return fmt.Errorf("%w: MaxClusterSize must be >= 1, got %d", ErrInvalidConfig, cfg.MaxClusterSize)
	}
	if cfg.RowLimit < 1 {
		return fmt.Errorf("%w: RowLimit must be >= 1, got %d", ErrInvalidConfig, cfg.RowLimit)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: Workers must be >= 0, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if _, err := MetricByName(cfg.Metric, cfg.ImmediateFamily); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch cfg.PrimaryClusters {
	case PrimaryClustersHalfMatch:
	case PrimaryClustersGrowth:
		if cfg.GrowthMaxClusterSize < cfg.MinClusterSize {
			return fmt.Errorf("%w: GrowthMaxClusterSize must be >= MinClusterSize (%d), got %d",
				ErrInvalidConfig, cfg.MinClusterSize, cfg.GrowthMaxClusterSize)
		}
	default:
		return fmt.Errorf("%w: PrimaryClusters must be %q or %q, got %q",
			ErrInvalidConfig, PrimaryClustersHalfMatch, PrimaryClustersGrowth, cfg.PrimaryClusters)
	}
	return nil
}

// Validate applies defaults to a copy of cfg and reports whether it is valid.
func (cfg Config) Validate() error {
	applyDefaults(&cfg)
	return validateConfig(&cfg)
}

// DistanceMetric returns the configured metric, falling back to the
// default metric for an unknown name.
func (cfg Config) DistanceMetric() DistanceMetric {
	m, err := MetricByName(cfg.Metric, cfg.ImmediateFamily)
	if err != nil {
		return OverlapWeightedEuclideanMetric{}
	}
	return m
}

// PrimaryClusterFinder returns the configured partitioning strategy.
func (cfg Config) PrimaryClusterFinder() PrimaryClusterFinder {
	if cfg.PrimaryClusters == PrimaryClustersGrowth {
		return GrowthPrimaryClusterFinder{
			MinClusterSize: cfg.MinClusterSize,
			MaxClusterSize: cfg.GrowthMaxClusterSize,
		}
	}
	return HalfMatchPrimaryClusterFinder{}
}
