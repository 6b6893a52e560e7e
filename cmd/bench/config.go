package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/zonecache/cache"
)

// Config is the bench configuration. Every field can be set from YAML
// (-config.file) or from the flag of the same name.
type Config struct {
	Cache cache.Config `yaml:"cache"`

	Workers  int           `yaml:"workers"`
	Duration time.Duration `yaml:"duration"`
	Ops      int           `yaml:"ops"`
	Seed     int64         `yaml:"seed"`

	// Keys is the size of the Zipf keyspace.
	Keys  int     `yaml:"keys"`
	ZipfS float64 `yaml:"zipf_s"`
	ZipfV float64 `yaml:"zipf_v"`

	// Every ScanEvery operations a worker reads ScanLength never-repeated keys.
	ScanEvery  int `yaml:"scan_every"`
	ScanLength int `yaml:"scan_length"`

	CompareLRU bool `yaml:"compare_lru"`

	PprofAddr   string `yaml:"pprof_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// RegisterFlags registers the bench flags, including the cache ones.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.Cache.RegisterFlagsWithPrefix("", f)

	f.IntVar(&cfg.Workers, "workers", 2*runtime.GOMAXPROCS(0), "Number of worker goroutines.")
	f.DurationVar(&cfg.Duration, "duration", 10*time.Second, "Benchmark duration.")
	f.IntVar(&cfg.Ops, "ops", 0, "Operations per worker (0 = run for -duration).")
	f.Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "Random seed.")
	f.IntVar(&cfg.Keys, "keys", 1_000_000, "Keyspace size of the skewed workload.")
	f.Float64Var(&cfg.ZipfS, "zipf-s", 1.1, "Zipf s > 1 (skew).")
	f.Float64Var(&cfg.ZipfV, "zipf-v", 1.0, "Zipf v >= 1.")
	f.IntVar(&cfg.ScanEvery, "scan-every", 10_000, "Operations between two scans per worker (0 = no scans).")
	f.IntVar(&cfg.ScanLength, "scan-length", 50_000, "Number of one-off keys read by a scan.")
	f.BoolVar(&cfg.CompareLRU, "compare-lru", true, "Replay the same workload against a plain LRU.")
	f.StringVar(&cfg.PprofAddr, "pprof", "", "Serve pprof at addr (e.g. :6060); empty = disabled.")
	f.StringVar(&cfg.MetricsAddr, "http", ":8080", "Serve Prometheus metrics at addr; empty = disabled.")
}

// Validate checks the workload settings. Cache sizing is validated by cache.New.
func (cfg *Config) Validate() error {
	if cfg.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if cfg.Keys <= 1 {
		return errors.New("keys must be greater than 1")
	}
	if cfg.ZipfS <= 1 || cfg.ZipfV < 1 {
		return fmt.Errorf("invalid zipf parameters s=%v v=%v", cfg.ZipfS, cfg.ZipfV)
	}
	if cfg.ScanEvery < 0 || cfg.ScanLength < 0 {
		return errors.New("scan settings must not be negative")
	}
	return nil
}

func loadConfig(filename string, cfg *Config) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	return nil
}
