package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-shop/config"
	"github.com/aluiziolira/go-scrape-shop/fetch"
	"github.com/aluiziolira/go-scrape-shop/models"
	"github.com/aluiziolira/go-scrape-shop/parser"
)

// TestimonialScraper walks the token-authenticated fragment API. The
// endpoint answers with an error once the pages run out, so any fetch
// failure is treated as a clean end of the stream rather than a fault:
// the run completes with whatever was collected.
type TestimonialScraper struct {
	cfg     *config.Config
	client  fetch.Client
	metrics *Metrics
}

// NewTestimonialScraper builds a testimonials paginator.
func NewTestimonialScraper(cfg *config.Config, client fetch.Client, metrics *Metrics) *TestimonialScraper {
	return &TestimonialScraper{
		cfg:     cfg,
		client:  client,
		metrics: metrics,
	}
}

// Run fetches fragment pages starting at 1 until a fetch fails or a
// page holds no cards. It never returns an error.
func (s *TestimonialScraper) Run(ctx context.Context) ([]models.Testimonial, int, error) {
	testimonials := make([]models.Testimonial, 0, 64)
	pages := 0

	headers := map[string]string{
		"Referer":        s.cfg.TestimonialsURL(),
		"X-Secret-Token": s.cfg.SecretToken,
	}

	for page := 1; page <= s.cfg.MaxPages; page++ {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		body, err := s.client.Get(ctx, s.cfg.TestimonialsAPIURL(), map[string]string{"page": strconv.Itoa(page)}, headers)
		s.metrics.ObserveDuration(time.Since(start))
		if err != nil {
			slog.Debug("testimonial stream ended",
				slog.Int("page", page),
				slog.Any("error", err),
			)
			break
		}
		pages++
		s.metrics.IncPage(sourceTestimonials)

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			slog.Debug("testimonial fragment unparseable", slog.Int("page", page), slog.Any("error", err))
			break
		}

		cards := doc.Find(".testimonial")
		if cards.Length() == 0 {
			break
		}

		sourceURL := fmt.Sprintf("%s?page=%d", s.cfg.TestimonialsAPIURL(), page)
		cards.Each(func(_ int, card *goquery.Selection) {
			text := card.Text()
			if textEl := card.Find(".text"); textEl.Length() > 0 {
				text = textEl.Text()
			}

			testimonials = append(testimonials, models.Testimonial{
				Text:      parser.CollapseSpace(text),
				Rating:    parser.Stars(card),
				Page:      page,
				SourceURL: sourceURL,
			})
		})
		s.metrics.AddItems(sourceTestimonials, cards.Length())

		pause(ctx, s.cfg.Delay)
	}

	return testimonials, pages, nil
}
