package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aluiziolira/go-scrape-shop/config"
	"github.com/aluiziolira/go-scrape-shop/models"
	"github.com/aluiziolira/go-scrape-shop/scraper"
	"github.com/aluiziolira/go-scrape-shop/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	defaultCfg := config.DefaultConfig()

	baseDefault := defaultCfg.BaseURL
	if value, ok := config.EnvString("SCRAPER_BASE_URL"); ok {
		baseDefault = value
	}
	tokenDefault := defaultCfg.SecretToken
	if value, ok := config.EnvString("SCRAPER_TOKEN"); ok {
		tokenDefault = value
	}
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("SCRAPER_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	pagesDefault := defaultCfg.MaxPages
	if value, ok, err := config.EnvInt("SCRAPER_PAGES"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_PAGES: %v\n", err)
		os.Exit(1)
	} else if ok {
		pagesDefault = value
	}
	concurrentDefault := defaultCfg.Concurrent
	if value, ok, err := config.EnvBool("SCRAPER_CONCURRENT"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_CONCURRENT: %v\n", err)
		os.Exit(1)
	} else if ok {
		concurrentDefault = value
	}

	baseURL := flag.String("base-url", baseDefault, "Base URL of the target site")
	secretToken := flag.String("token", tokenDefault, "Shared secret for the testimonial API")
	pageSize := flag.Int("page-size", defaultCfg.PageSize, "GraphQL page size for the review walk")
	maxPages := flag.Int("pages", pagesDefault, "Safety cap on pages per source")
	delayMs := flag.Int("delay", int(defaultCfg.Delay/time.Millisecond), "Pause between page fetches (milliseconds)")
	timeoutSec := flag.Int("timeout", int(defaultCfg.Timeout/time.Second), "Per-request timeout (seconds)")
	outputFile := flag.String("output", outputDefault, "Output file path")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	concurrent := flag.Bool("concurrent", concurrentDefault, "Run the three sources in parallel")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.BaseURL = *baseURL
	cfg.SecretToken = *secretToken
	cfg.PageSize = *pageSize
	cfg.MaxPages = *maxPages
	cfg.Delay = time.Duration(*delayMs) * time.Millisecond
	cfg.Timeout = time.Duration(*timeoutSec) * time.Second
	cfg.OutputFile = *outputFile
	cfg.MetricsAddr = *metricsAddr
	cfg.Concurrent = *concurrent
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting scrape",
		slog.String("base_url", cfg.BaseURL),
		slog.String("output", cfg.OutputFile),
		slog.Bool("concurrent", cfg.Concurrent),
	)

	runner, err := scraper.NewRunner(cfg)
	if err != nil {
		slog.Error("initialising runner", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, finishing current page")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(runner.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	dataset, report := runner.Run(ctx)

	if err := store.Write(cfg.OutputFile, dataset); err != nil {
		slog.Error("writing dataset failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(report, cfg.OutputFile)

	if report.AllFailed() {
		os.Exit(1)
	}
}

func printSummary(report *models.RunReport, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")
	fmt.Printf("  Products:      %d (%d pages)\n", report.Products.Records, report.Products.Pages)
	fmt.Printf("  Testimonials:  %d (%d pages)\n", report.Testimonials.Records, report.Testimonials.Pages)
	fmt.Printf("  Reviews:       %d (%d pages)\n", report.Reviews.Records, report.Reviews.Pages)
	for _, source := range []struct {
		name string
		sr   models.SourceReport
	}{
		{"products", report.Products},
		{"testimonials", report.Testimonials},
		{"reviews", report.Reviews},
	} {
		if source.sr.Err != nil {
			fmt.Printf("  Failed:        %s: %v\n", source.name, source.sr.Err)
		}
	}
	fmt.Printf("  Duration:      %v\n", report.Duration())
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
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
