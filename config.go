package sqle

import (
	"io/ioutil"
	"os"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/src-d/go-errors.v1"
	yaml "gopkg.in/yaml.v2"
)

const parallelismKey = "PLANNER_PARALLELISM"

// ErrInvalidConfig is returned when the engine configuration cannot be read.
var ErrInvalidConfig = errors.NewKind("invalid configuration: %s")

// Config of the Engine.
type Config struct {
	// CaseInsensitive makes identifiers match ignoring case.
	CaseInsensitive bool `yaml:"case_insensitive"`
	// Debug logs every planning step.
	Debug bool `yaml:"debug"`
	// Parallelism is the number of OR branches planned at the same time.
	Parallelism int `yaml:"parallelism"`
	// CurrentDatabase is used to resolve unqualified tables when the
	// context has no database of its own.
	CurrentDatabase string `yaml:"current_database"`
	// PlanCache configures the cache of compiled plans.
	PlanCache PlanCacheConfig `yaml:"plan_cache"`
}

// PlanCacheConfig configures the cache of compiled plans. Durations are
// written the way time.ParseDuration expects them, e.g. "5m".
type PlanCacheConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Expiration      string `yaml:"expiration"`
	CleanupInterval string `yaml:"cleanup_interval"`
}

const (
	defaultExpiration      = 5 * time.Minute
	defaultCleanupInterval = 10 * time.Minute
)

func (c PlanCacheConfig) durations() (expiration, cleanup time.Duration, err error) {
	expiration, cleanup = defaultExpiration, defaultCleanupInterval

	if c.Expiration != "" {
		expiration, err = time.ParseDuration(c.Expiration)
		if err != nil {
			return 0, 0, ErrInvalidConfig.Wrap(err, "plan_cache.expiration")
		}
	}

	if c.CleanupInterval != "" {
		cleanup, err = time.ParseDuration(c.CleanupInterval)
		if err != nil {
			return 0, 0, ErrInvalidConfig.Wrap(err, "plan_cache.cleanup_interval")
		}
	}

	return expiration, cleanup, nil
}

// LoadConfig reads the YAML configuration at the given path. The
// PLANNER_PARALLELISM environment variable overrides the parallelism.
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ErrInvalidConfig.Wrap(err, "malformed yaml")
	}

	if err := cfg.fromEnv(); err != nil {
		return nil, err
	}

	if _, _, err := cfg.PlanCache.durations(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) fromEnv() error {
	v, ok := os.LookupEnv(parallelismKey)
	if !ok {
		return nil
	}

	n, err := cast.ToIntE(v)
	if err != nil {
		return ErrInvalidConfig.Wrap(err, parallelismKey)
	}

	c.Parallelism = n
	return nil
}
