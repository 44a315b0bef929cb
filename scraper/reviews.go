package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-scrape-shop/config"
	"github.com/aluiziolira/go-scrape-shop/fetch"
	"github.com/aluiziolira/go-scrape-shop/models"
	"github.com/aluiziolira/go-scrape-shop/parser"
)

const reviewsQuery = `
query ReviewsPage($first: Int!, $after: String) {
  reviews(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        date
        rating
        text
      }
    }
  }
}`

// reviewsPayload models the GraphQL response with the loose typing the
// server actually exhibits: date and rating are raw scalars coerced
// field by field, never trusted to decode into a fixed shape.
type reviewsPayload struct {
	Data struct {
		Reviews struct {
			PageInfo struct {
				HasNextPage bool    `json:"hasNextPage"`
				EndCursor   *string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node struct {
					ID     string          `json:"id"`
					Date   json.RawMessage `json:"date"`
					Rating json.RawMessage `json:"rating"`
					Text   string          `json:"text"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"reviews"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ReviewScraper walks the GraphQL reviews connection following
// endCursor/hasNextPage until the server is exhausted or reports
// errors.
type ReviewScraper struct {
	cfg     *config.Config
	gql     *fetch.GraphQL
	metrics *Metrics
}

// NewReviewScraper builds a reviews paginator.
func NewReviewScraper(cfg *config.Config, gql *fetch.GraphQL, metrics *Metrics) *ReviewScraper {
	return &ReviewScraper{
		cfg:     cfg,
		gql:     gql,
		metrics: metrics,
	}
}

// Run walks the connection from a nil cursor. Each iteration checks,
// in order: a non-empty errors array (stop, keep partial results, a
// ProtocolError surfaces), empty edges (stop), then after processing
// the page, hasNextPage false or a missing endCursor (stop). Transport
// and status failures are fatal to this walk.
func (s *ReviewScraper) Run(ctx context.Context) ([]models.Review, int, error) {
	reviews := make([]models.Review, 0, s.cfg.PageSize)
	pages := 0

	var after *string
	for page := 1; page <= s.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return reviews, pages, &fetch.TransportError{URL: s.gql.Endpoint(), Err: err}
		}

		variables := map[string]any{
			"first": s.cfg.PageSize,
			"after": after,
		}
		start := time.Now()
		body, err := s.gql.Do(ctx, reviewsQuery, variables)
		s.metrics.ObserveDuration(time.Since(start))
		if err != nil {
			s.metrics.IncError(sourceReviews, errorLabel(err))
			return reviews, pages, fmt.Errorf("fetch reviews page %d: %w", page, err)
		}
		pages++
		s.metrics.IncPage(sourceReviews)

		var payload reviewsPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			s.metrics.IncError(sourceReviews, "other")
			return reviews, pages, fmt.Errorf("decode reviews page %d: %w", page, err)
		}

		if len(payload.Errors) > 0 {
			messages := make([]string, 0, len(payload.Errors))
			for _, gqlErr := range payload.Errors {
				messages = append(messages, gqlErr.Message)
			}
			protoErr := &ProtocolError{Messages: messages}
			slog.Error("graphql reported errors, stopping review walk",
				slog.Int("page", page),
				slog.Int("collected", len(reviews)),
				slog.Any("error", protoErr),
			)
			s.metrics.IncError(sourceReviews, errorLabel(protoErr))
			return reviews, pages, protoErr
		}

		connection := payload.Data.Reviews
		if len(connection.Edges) == 0 {
			break
		}

		cursor := ""
		if after != nil {
			cursor = *after
		}
		for _, edge := range connection.Edges {
			node := edge.Node

			dateRaw := parser.Scalar(node.Date)
			var dateISO *string
			if dateRaw != "" {
				if iso, ok := parser.DateISO(dateRaw); ok {
					dateISO = &iso
				}
			}

			var rating *float64
			if value, ok := parser.Rating(node.Rating); ok {
				rating = &value
			}

			reviews = append(reviews, models.Review{
				Title:     "",
				Text:      node.Text,
				Rating:    rating,
				DateRaw:   dateRaw,
				DateISO:   dateISO,
				Page:      page,
				SourceURL: fmt.Sprintf("%s (after=%s) id=%s", s.gql.Endpoint(), cursor, node.ID),
			})
		}
		s.metrics.AddItems(sourceReviews, len(connection.Edges))

		pageInfo := connection.PageInfo
		if !pageInfo.HasNextPage || pageInfo.EndCursor == nil || *pageInfo.EndCursor == "" {
			break
		}
		after = pageInfo.EndCursor

		pause(ctx, s.cfg.Delay)
	}

	return reviews, pages, nil
}
