package products

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sony/gobreaker"

	apperrors "github.com/kbukum/scrollfeed/errors"
	"github.com/kbukum/scrollfeed/httpclient"
	"github.com/kbukum/scrollfeed/logger"
	"github.com/kbukum/scrollfeed/validation"
)

// API route paths served by the feed server.
const (
	RoutePage   = "/api/products"
	RouteCursor = "/api/products/cursor"
)

// APIClient is the client of the feed API routes, used by consumers that
// page through the server rather than the upstream.
type APIClient struct {
	http *httpclient.Client
	cb   *gobreaker.CircuitBreaker
}

// NewAPIClient creates a client for the feed API at cfg.HTTP.BaseURL.
func NewAPIClient(cfg Config, log *logger.Logger) (*APIClient, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := httpclient.New(cfg.HTTP)
	if err != nil {
		return nil, err
	}
	log = logger.OrGlobal(log, "products.api")
	return &APIClient{http: client, cb: newBreaker("feed-api", cfg.Breaker, log)}, nil
}

// Page fetches GET /api/products?page=P&limit=L.
func (c *APIClient) Page(ctx context.Context, page, limit int) ([]Product, error) {
	desc := fmt.Sprintf("%s?page=%d&limit=%d", RoutePage, page, limit)
	out, err := c.cb.Execute(func() (interface{}, error) {
		return httpclient.GetJSON[[]Product](ctx, c.http, RoutePage, map[string]string{
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(limit),
		})
	})
	if err != nil {
		return nil, classify(desc, err)
	}
	items := *out.(*[]Product)
	if items == nil {
		return nil, apperrors.MalformedPage(desc, "expected a JSON array")
	}
	for i := range items {
		if err := validation.Validate(items[i]); err != nil {
			return nil, apperrors.MalformedPage(desc, err.Error())
		}
	}
	return items, nil
}

// Cursor fetches GET /api/products/cursor?cursor=C&limit=L.
func (c *APIClient) Cursor(ctx context.Context, cursor string, limit int) (*CursorPage, error) {
	desc := fmt.Sprintf("%s?cursor=%s&limit=%d", RouteCursor, cursor, limit)
	query := map[string]string{"limit": strconv.Itoa(limit)}
	if cursor != "" {
		query["cursor"] = cursor
	}
	out, err := c.cb.Execute(func() (interface{}, error) {
		return httpclient.GetJSON[CursorPage](ctx, c.http, RouteCursor, query)
	})
	if err != nil {
		return nil, classify(desc, err)
	}
	page := out.(*CursorPage)
	if err := validation.Validate(page); err != nil {
		return nil, apperrors.MalformedPage(desc, err.Error())
	}
	return page, nil
}
