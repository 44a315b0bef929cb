package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-shop/config"
	"github.com/aluiziolira/go-scrape-shop/fetch"
	"github.com/aluiziolira/go-scrape-shop/models"
	"github.com/aluiziolira/go-scrape-shop/parser"
)

// ProductScraper walks sequential catalog listing pages. The listing
// has no last-page signal; a page with zero item anchors ends the walk.
type ProductScraper struct {
	cfg     *config.Config
	client  fetch.Client
	metrics *Metrics
}

// NewProductScraper builds a products paginator.
func NewProductScraper(cfg *config.Config, client fetch.Client, metrics *Metrics) *ProductScraper {
	return &ProductScraper{
		cfg:     cfg,
		client:  client,
		metrics: metrics,
	}
}

// Run fetches listing pages starting at 1 until one yields no anchors.
// A fetch or parse failure is fatal to this walk: the products gathered
// so far are returned alongside the error. It also reports the number
// of pages fetched.
func (s *ProductScraper) Run(ctx context.Context) ([]models.Product, int, error) {
	base, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return nil, 0, fmt.Errorf("parse base url: %w", err)
	}

	products := make([]models.Product, 0, 64)
	pages := 0

	for page := 1; page <= s.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return products, pages, &fetch.TransportError{URL: s.cfg.ProductsURL(), Err: err}
		}

		pageURL := fmt.Sprintf("%s?page=%d", s.cfg.ProductsURL(), page)
		start := time.Now()
		body, err := s.client.Get(ctx, s.cfg.ProductsURL(), map[string]string{"page": strconv.Itoa(page)}, nil)
		s.metrics.ObserveDuration(time.Since(start))
		if err != nil {
			s.metrics.IncError(sourceProducts, errorLabel(err))
			return products, pages, fmt.Errorf("fetch products page %d: %w", page, err)
		}
		pages++
		s.metrics.IncPage(sourceProducts)

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			s.metrics.IncError(sourceProducts, "other")
			return products, pages, fmt.Errorf("parse products page %d: %w", page, err)
		}

		anchors := doc.Find("h3 a")
		if anchors.Length() == 0 {
			break
		}

		found := 0
		anchors.Each(func(_ int, anchor *goquery.Selection) {
			name := strings.TrimSpace(anchor.Text())
			href, _ := anchor.Attr("href")

			productURL := href
			if resolved, err := base.Parse(href); err == nil {
				productURL = resolved.String()
			}

			var price *float64
			if value, ok := parser.Price(parser.CollapseSpace(anchor.Parent().Text())); ok {
				price = &value
			}

			products = append(products, models.Product{
				Name:       name,
				Price:      price,
				ProductURL: productURL,
				PageURL:    pageURL,
			})
			found++
		})
		s.metrics.AddItems(sourceProducts, found)

		pause(ctx, s.cfg.Delay)
	}

	return products, pages, nil
}
