package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-amazon-bsr/config"
	"github.com/aluiziolira/go-amazon-bsr/fetcher"
	"github.com/aluiziolira/go-amazon-bsr/report"
	"github.com/aluiziolira/go-amazon-bsr/runner"
	"github.com/aluiziolira/go-amazon-bsr/urlfile"
)

func main() {
	defaultCfg := config.DefaultConfig()
	urlsDefault := defaultCfg.URLFile
	if value, ok := config.EnvString("BSR_URLS"); ok {
		urlsDefault = value
	}
	delayDefault := defaultCfg.Delay
	if value, ok, err := config.EnvDuration("BSR_DELAY"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid BSR_DELAY: %v\n", err)
		os.Exit(1)
	} else if ok {
		delayDefault = value
	}
	csvDefault := defaultCfg.CSVFile
	if value, ok := config.EnvString("BSR_OUTPUT_CSV"); ok {
		csvDefault = value
	}
	jsonDefault := defaultCfg.JSONFile
	if value, ok := config.EnvString("BSR_OUTPUT_JSON"); ok {
		jsonDefault = value
	}
	cacheDefault := defaultCfg.CacheSize
	if value, ok, err := config.EnvInt("BSR_CACHE_SIZE"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid BSR_CACHE_SIZE: %v\n", err)
		os.Exit(1)
	} else if ok {
		cacheDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("BSR_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	urlFile := flag.String("urls", urlsDefault, "File with one Amazon product URL per line")
	delay := flag.Duration("delay", delayDefault, "Delay between requests")
	timeout := flag.Duration("timeout", defaultCfg.Timeout, "Per-request timeout")
	csvFile := flag.String("csv", csvDefault, "CSV output file path")
	jsonFile := flag.String("json", jsonDefault, "JSON output file path")
	outputFormat := flag.String("format", defaultCfg.OutputFormat, "Output format: csv, json, or dual")
	userAgent := flag.String("user-agent", defaultCfg.UserAgent, "User-Agent header value")
	cacheSize := flag.Int("cache-size", cacheDefault, "Page cache capacity")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	fromJSON := flag.String("from-json", "", "Print the summary for a previous JSON export and exit")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if *fromJSON != "" {
		records, err := report.LoadJSON(*fromJSON)
		if err != nil {
			slog.Error("loading export", slog.Any("error", err))
			os.Exit(1)
		}
		report.PrintSummary(os.Stdout, records)
		return
	}

	cfg := defaultCfg
	cfg.URLFile = *urlFile
	cfg.Delay = *delay
	cfg.Timeout = *timeout
	cfg.CSVFile = *csvFile
	cfg.JSONFile = *jsonFile
	cfg.OutputFormat = *outputFormat
	cfg.UserAgent = *userAgent
	cfg.CacheSize = *cacheSize
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	urls, err := urlfile.Load(cfg.URLFile)
	if err != nil {
		fatalURLFile(cfg.URLFile, err)
	}
	slog.Info("loaded product URLs",
		slog.Int("count", len(urls)),
		slog.String("file", cfg.URLFile),
	)

	f, err := fetcher.New(cfg)
	if err != nil {
		slog.Error("initialising fetcher", slog.Any("error", err))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(f.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	r := runner.New(f, cfg.Delay, runner.WithMetrics(f.Metrics))
	result := r.Run(urls)

	writer, err := createWriter(cfg.OutputFormat, cfg.CSVFile, cfg.JSONFile)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Write(result.Records); err != nil {
		slog.Error("writing results", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Close(); err != nil {
		slog.Error("closing writer", slog.Any("error", err))
		os.Exit(1)
	}
	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSavedFiles(cfg)
	slog.Info("batch complete",
		slog.Int("success", result.SuccessCount),
		slog.Int("errors", result.ErrorCount),
		slog.Duration("duration", result.EndTime.Sub(result.StartTime)),
	)
	report.PrintSummary(os.Stdout, result.Records)
}

func createWriter(format, csvFile, jsonFile string) (report.OutputWriter, error) {
	switch format {
	case "csv":
		return report.NewCSVWriter(csvFile)
	case "json":
		return report.NewJSONWriter(jsonFile)
	case "dual":
		return report.NewDualWriter(csvFile, jsonFile)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func printSavedFiles(cfg *config.Config) {
	if cfg.OutputFormat == "csv" || cfg.OutputFormat == "dual" {
		fmt.Printf("\n✓ Results saved to %s\n", cfg.CSVFile)
	}
	if cfg.OutputFormat == "json" || cfg.OutputFormat == "dual" {
		fmt.Printf("✓ Results saved to %s\n", cfg.JSONFile)
	}
}

// fatalURLFile reports a missing or empty URL list with remediation guidance
// and exits before any network activity.
func fatalURLFile(path string, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(os.Stderr, "Error: %s not found!\n", path)
	case errors.Is(err, urlfile.ErrNoURLs):
		fmt.Fprintf(os.Stderr, "Error: No valid URLs found in %s\n", path)
	default:
		fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", path, err)
	}
	fmt.Fprintf(os.Stderr, "Please create %s with one Amazon URL per line.\n", path)
	fmt.Fprintln(os.Stderr, "\nExample content:")
	fmt.Fprintln(os.Stderr, "https://www.amazon.com/dp/B08N5WRWNW")
	fmt.Fprintln(os.Stderr, "https://www.amazon.com/dp/B0BSHF7WHW")
	os.Exit(1)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
