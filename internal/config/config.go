// Package config holds the settings shared by the CLI and the HTTP server.
// Values come from built-in defaults, an optional YAML file and finally
// LYRICEVAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/lyriceval/internal/meteor"
)

// Config is the full runtime configuration.
type Config struct {
	CMUDictPath string        `yaml:"cmudict_path"`
	Cache       CacheConfig   `yaml:"cache"`
	Services    ServiceConfig `yaml:"services"`
	Scorer      meteor.Params `yaml:"scorer"`

	Workers         int           `yaml:"workers"`
	PrefetchWorkers int           `yaml:"prefetch_workers"`
	RetryAttempts   int           `yaml:"retry_attempts"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
}

// CacheConfig locates the on-disk lookup caches.
type CacheConfig struct {
	Phonetics string `yaml:"phonetics"`
	Synonyms  string `yaml:"synonyms"`
}

// ServiceConfig points at the external lookup services.
type ServiceConfig struct {
	AbairURL     string `yaml:"abair_url"`
	ThesaurusURL string `yaml:"thesaurus_url"`
	UDPipeURL    string `yaml:"udpipe_url"`
	UDPipeModel  string `yaml:"udpipe_model"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		CMUDictPath: "data/cmudict.dict",
		Cache: CacheConfig{
			Phonetics: "cache/phonetics_cache.json",
			Synonyms:  "cache/synonyms_cache.json",
		},
		Services: ServiceConfig{
			AbairURL:     "https://synthesis.abair.ie",
			ThesaurusURL: "http://www.potafocal.com",
			UDPipeURL:    "https://lindat.mff.cuni.cz/services/udpipe/api",
			UDPipeModel:  "irish-idt-ud-2.12-230717",
		},
		Scorer:          meteor.DefaultParams(),
		Workers:         4,
		PrefetchWorkers: 10,
		RetryAttempts:   3,
		HTTPTimeout:     30 * time.Second,
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped
// when path is empty) and then with environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"LYRICEVAL_CMUDICT":         &c.CMUDictPath,
		"LYRICEVAL_PHONETICS_CACHE": &c.Cache.Phonetics,
		"LYRICEVAL_SYNONYM_CACHE":   &c.Cache.Synonyms,
		"LYRICEVAL_ABAIR_URL":       &c.Services.AbairURL,
		"LYRICEVAL_THESAURUS_URL":   &c.Services.ThesaurusURL,
		"LYRICEVAL_UDPIPE_URL":      &c.Services.UDPipeURL,
		"LYRICEVAL_UDPIPE_MODEL":    &c.Services.UDPipeModel,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"LYRICEVAL_WORKERS":          &c.Workers,
		"LYRICEVAL_PREFETCH_WORKERS": &c.PrefetchWorkers,
		"LYRICEVAL_RETRY_ATTEMPTS":   &c.RetryAttempts,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}

	floats := map[string]*float64{
		"LYRICEVAL_ALPHA": &c.Scorer.Alpha,
		"LYRICEVAL_BETA":  &c.Scorer.Beta,
		"LYRICEVAL_GAMMA": &c.Scorer.Gamma,
	}
	for key, dst := range floats {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = f
	}

	if v := os.Getenv("LYRICEVAL_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LYRICEVAL_HTTP_TIMEOUT: %w", err)
		}
		c.HTTPTimeout = d
	}

	return nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if err := c.Scorer.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.PrefetchWorkers < 1 {
		errs = append(errs, fmt.Errorf("prefetch_workers must be at least 1, got %d", c.PrefetchWorkers))
	}
	if c.RetryAttempts < 0 {
		errs = append(errs, fmt.Errorf("retry_attempts must be non-negative, got %d", c.RetryAttempts))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout))
	}
	if c.Cache.Phonetics == "" || c.Cache.Synonyms == "" {
		errs = append(errs, errors.New("cache paths must not be empty"))
	}
	return errors.Join(errs...)
}
