// Package models defines the record and document shapes for the scraper.
package models

import "time"

// Product is one item anchor from a catalog listing page. Price is nil
// when no price could be recovered from the listing text.
type Product struct {
	Name       string   `json:"name"`
	Price      *float64 `json:"price"`
	ProductURL string   `json:"product_url"`
	PageURL    string   `json:"page_url"`
}

// Testimonial is one card from the token-authenticated fragment API.
// Rating is nil when the card has no rating container.
type Testimonial struct {
	Text      string `json:"text"`
	Rating    *int   `json:"rating"`
	Page      int    `json:"page"`
	SourceURL string `json:"source_url"`
}

// Review is one node from the GraphQL reviews connection. DateRaw keeps
// the server's scalar verbatim; DateISO is nil when it did not parse.
// Title is always empty, the source has no title field.
type Review struct {
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	Rating    *float64 `json:"rating"`
	DateRaw   string   `json:"date_raw"`
	DateISO   *string  `json:"date_iso"`
	Page      int      `json:"page"`
	SourceURL string   `json:"source_url"`
}

// Meta records which site URLs the dataset was assembled from.
type Meta struct {
	ProductsURL     string `json:"products_url"`
	TestimonialsURL string `json:"testimonials_url"`
	ReviewsURL      string `json:"reviews_url"`
}

// Dataset is the single output document. Every record carries its full
// declared field set (absent values serialize as explicit nulls) so
// downstream consumers can build tabular views directly.
type Dataset struct {
	Products     []Product     `json:"products"`
	Testimonials []Testimonial `json:"testimonials"`
	Reviews      []Review      `json:"reviews"`
	Meta         Meta          `json:"meta"`
}

// NewDataset returns a dataset with non-nil collections so empty
// sources serialize as [] rather than null.
func NewDataset() *Dataset {
	return &Dataset{
		Products:     []Product{},
		Testimonials: []Testimonial{},
		Reviews:      []Review{},
	}
}

// Normalize replaces nil collections with empty ones. Used after
// decoding a dataset written by an older run.
func (d *Dataset) Normalize() {
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Testimonials == nil {
		d.Testimonials = []Testimonial{}
	}
	if d.Reviews == nil {
		d.Reviews = []Review{}
	}
}

// SourceReport holds the outcome of one paginator's walk.
type SourceReport struct {
	Pages   int
	Records int
	Err     error
}

// RunReport holds the overall result of a scraping run.
type RunReport struct {
	StartTime    time.Time
	EndTime      time.Time
	Products     SourceReport
	Testimonials SourceReport
	Reviews      SourceReport
}

// Duration reports the wall-clock time of the run.
func (r *RunReport) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// AllFailed reports whether every source ended in error.
func (r *RunReport) AllFailed() bool {
	return r.Products.Err != nil && r.Testimonials.Err != nil && r.Reviews.Err != nil
}

// TotalRecords sums the records collected across all sources.
func (r *RunReport) TotalRecords() int {
	return r.Products.Records + r.Testimonials.Records + r.Reviews.Records
}
