// Command bench replays a skewed workload with periodic scans against the
// zone cache and a plain LRU, and reports hit rates side by side. It exposes
// optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IvanBrykalov/zonecache/cache"
	pmet "github.com/IvanBrykalov/zonecache/metrics/prom"
)

func main() {
	var (
		cfg        Config
		configFile string
		logLevel   string
	)
	cfg.RegisterFlags(flag.CommandLine)
	flag.StringVar(&configFile, "config.file", "", "YAML file with bench settings; flags given on the command line take precedence.")
	flag.StringVar(&logLevel, "log.level", "info", "Only log messages with the given severity or above. Valid levels: [debug, info, warn, error]")
	flag.Parse()

	if configFile != "" {
		if err := loadConfig(configFile, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		// command line wins over the file
		flag.Parse()
	}

	logger := newLogger(logLevel)
	if err := cfg.Validate(); err != nil {
		level.Error(logger).Log("msg", "invalid config", "err", err)
		os.Exit(1)
	}

	if cfg.PprofAddr != "" {
		go func() {
			level.Info(logger).Log("msg", "serving pprof", "addr", cfg.PprofAddr)
			level.Error(logger).Log("msg", "pprof server stopped", "err", http.ListenAndServe(cfg.PprofAddr, nil))
		}()
	}

	metrics := pmet.New(nil, "zonecache", "bench", nil)
	if cfg.MetricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			level.Info(logger).Log("msg", "serving metrics", "addr", cfg.MetricsAddr)
			level.Error(logger).Log("msg", "metrics server stopped", "err", http.ListenAndServe(cfg.MetricsAddr, nil))
		}()
	}

	c, err := cache.New(cache.Options[string, string]{
		Config:  cfg.Cache,
		Factory: func(k string) string { return "v:" + k },
		Metrics: metrics,
		Logger:  log.With(logger, "component", "cache"),
	})
	if err != nil {
		level.Error(logger).Log("msg", "failed to create cache", "err", err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	targets := []target{zoneTarget{c}}
	if cfg.CompareLRU {
		l, err := newLRUTarget(cfg.Cache.Capacity)
		if err != nil {
			level.Error(logger).Log("msg", "failed to create lru", "err", err)
			os.Exit(1)
		}
		targets = append(targets, l)
	}

	level.Info(logger).Log("msg", "starting workload", "workers", cfg.Workers, "duration", cfg.Duration,
		"keys", cfg.Keys, "scan_every", cfg.ScanEvery, "scan_length", cfg.ScanLength, "seed", cfg.Seed)

	start := time.Now()
	res := run(ctx, cfg, targets)
	elapsed := time.Since(start)

	fmt.Printf("cap=%s workers=%d keys=%s dur=%v seed=%d\n",
		humanize.Comma(int64(cfg.Cache.Capacity)), cfg.Workers, humanize.Comma(int64(cfg.Keys)),
		elapsed.Round(time.Millisecond), cfg.Seed)
	for _, r := range res {
		fmt.Printf("%-6s ops=%s (%s ops/s)  hits=%s  misses=%s  hit-rate=%.2f%%\n",
			r.name,
			humanize.Comma(int64(r.ops)), humanize.SIWithDigits(float64(r.ops)/elapsed.Seconds(), 1, ""),
			humanize.Comma(int64(r.hits)), humanize.Comma(int64(r.ops-r.hits)), r.hitRate())
	}
	st := c.Stats()
	fmt.Printf("zone   len=%s promotions=%s evictions=%s\n",
		humanize.Comma(int64(c.Len())), humanize.Comma(int64(st.Promotions)), humanize.Comma(int64(st.Evictions)))
}

func newLogger(lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}
