// Package scraper implements the three acquisition walks over the demo
// target — catalog listing pages, the token-authenticated testimonial
// API, and the GraphQL reviews connection — and the runner that
// assembles their collections into one dataset.
package scraper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-scrape-shop/config"
	"github.com/aluiziolira/go-scrape-shop/fetch"
	"github.com/aluiziolira/go-scrape-shop/models"
)

const (
	sourceProducts     = "products"
	sourceTestimonials = "testimonials"
	sourceReviews      = "reviews"
)

// Runner drives the three paginators and assembles the output dataset.
// A source that fails is logged and skipped, never fatal to the run:
// the dataset is always assembled from whatever was collected.
type Runner struct {
	cfg     *config.Config
	client  fetch.Client
	gql     *fetch.GraphQL
	Metrics *Metrics
}

// NewRunner builds a runner with real HTTP clients configured from cfg.
func NewRunner(cfg *config.Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fetchCfg := fetch.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
	}
	return &Runner{
		cfg:     cfg,
		client:  fetch.NewCollyClient(fetchCfg),
		gql:     fetch.NewGraphQL(cfg.GraphQLURL(), fetchCfg),
		Metrics: NewMetrics(),
	}, nil
}

// NewRunnerWith builds a runner around caller-supplied clients. Tests
// use this to install mock transports.
func NewRunnerWith(cfg *config.Config, client fetch.Client, gql *fetch.GraphQL) *Runner {
	return &Runner{
		cfg:     cfg,
		client:  client,
		gql:     gql,
		Metrics: NewMetrics(),
	}
}

// Run walks products, testimonials, and reviews, in that order when
// sequential. With cfg.Concurrent the three walks run in parallel;
// each one owns its collection privately until the join, and pages
// within a walk stay sequential either way because each continuation
// token depends on the prior response.
func (r *Runner) Run(ctx context.Context) (*models.Dataset, *models.RunReport) {
	dataset := models.NewDataset()
	report := &models.RunReport{StartTime: time.Now()}

	runProducts := func() {
		slog.Info("scraping products")
		items, pages, err := NewProductScraper(r.cfg, r.client, r.Metrics).Run(ctx)
		dataset.Products = append(dataset.Products, items...)
		report.Products = models.SourceReport{Pages: pages, Records: len(items), Err: err}
		r.finishSource(sourceProducts, report.Products)
	}
	runTestimonials := func() {
		slog.Info("scraping testimonials")
		items, pages, err := NewTestimonialScraper(r.cfg, r.client, r.Metrics).Run(ctx)
		dataset.Testimonials = append(dataset.Testimonials, items...)
		report.Testimonials = models.SourceReport{Pages: pages, Records: len(items), Err: err}
		r.finishSource(sourceTestimonials, report.Testimonials)
	}
	runReviews := func() {
		slog.Info("scraping reviews")
		items, pages, err := NewReviewScraper(r.cfg, r.gql, r.Metrics).Run(ctx)
		dataset.Reviews = append(dataset.Reviews, items...)
		report.Reviews = models.SourceReport{Pages: pages, Records: len(items), Err: err}
		r.finishSource(sourceReviews, report.Reviews)
	}

	if r.cfg.Concurrent {
		var wg sync.WaitGroup
		for _, run := range []func(){runProducts, runTestimonials, runReviews} {
			wg.Add(1)
			go func(run func()) {
				defer wg.Done()
				run()
			}(run)
		}
		wg.Wait()
	} else {
		runProducts()
		runTestimonials()
		runReviews()
	}

	dataset.Meta = models.Meta{
		ProductsURL:     r.cfg.ProductsURL(),
		TestimonialsURL: r.cfg.TestimonialsURL(),
		ReviewsURL:      r.cfg.ReviewsURL(),
	}
	report.EndTime = time.Now()
	return dataset, report
}

func (r *Runner) finishSource(source string, sr models.SourceReport) {
	if sr.Err != nil {
		slog.Error("source failed, continuing with partial results",
			slog.String("source", source),
			slog.Int("records", sr.Records),
			slog.Int("pages", sr.Pages),
			slog.Any("error", sr.Err),
		)
		return
	}
	slog.Info("source complete",
		slog.String("source", source),
		slog.Int("records", sr.Records),
		slog.Int("pages", sr.Pages),
	)
}

// pause sleeps between page fetches to avoid hammering the source. Not
// a correctness requirement, a politeness one.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
