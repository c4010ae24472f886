package products

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/kbukum/scrollfeed/errors"
	"github.com/kbukum/scrollfeed/httpclient"
	"github.com/kbukum/scrollfeed/logger"
	"github.com/kbukum/scrollfeed/observability"
	"github.com/kbukum/scrollfeed/validation"
)

// Upstream is the client of the upstream listing endpoint
// GET /products?limit=L&skip=S&select=title,price.
type Upstream struct {
	http   *httpclient.Client
	cb     *gobreaker.CircuitBreaker
	log    *logger.Logger
	fields string
}

// NewUpstream creates an upstream client.
func NewUpstream(cfg Config, log *logger.Logger) (*Upstream, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := httpclient.New(cfg.HTTP)
	if err != nil {
		return nil, err
	}
	log = logger.OrGlobal(log, "products.upstream")
	return &Upstream{
		http:   client,
		cb:     newBreaker("upstream-products", cfg.Breaker, log),
		log:    log,
		fields: strings.Join(cfg.Select, ","),
	}, nil
}

// List fetches limit products starting at skip. Transport failures are
// FETCH_FAILED, payloads of the wrong shape MALFORMED_PAGE and an open
// breaker SERVICE_UNAVAILABLE.
func (u *Upstream) List(ctx context.Context, skip, limit int) (*ListResponse, error) {
	desc := fmt.Sprintf("/products?skip=%d&limit=%d", skip, limit)
	ctx, span := observability.StartSpan(ctx, observability.SpanUpstream)
	span.SetAttributes(attribute.String(observability.AttrPageKey, desc))
	defer span.End()

	query := map[string]string{
		"limit": strconv.Itoa(limit),
		"skip":  strconv.Itoa(skip),
	}
	if u.fields != "" {
		query["select"] = u.fields
	}

	out, err := u.cb.Execute(func() (interface{}, error) {
		return httpclient.GetJSON[ListResponse](ctx, u.http, "/products", query)
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, classify(desc, err)
	}

	resp := out.(*ListResponse)
	if err := validation.Validate(resp); err != nil {
		return nil, apperrors.MalformedPage(desc, err.Error())
	}
	return resp, nil
}

// PageSkip returns limit*page, the number of items before an offset page.
// Negative inputs and products that do not fit in an int are rejected.
func PageSkip(page, limit int) (int, error) {
	if page < 0 || limit < 0 {
		return 0, apperrors.InvalidInput("page", fmt.Sprintf("page and limit must be non-negative (got %d, %d)", page, limit))
	}
	if limit > 0 && page > math.MaxInt/limit {
		return 0, apperrors.InvalidInput("page", fmt.Sprintf("page %d is out of range for limit %d", page, limit))
	}
	return limit * page, nil
}

// Page fetches the offset page with skip = limit*page.
func (u *Upstream) Page(ctx context.Context, page, limit int) ([]Product, error) {
	skip, err := PageSkip(page, limit)
	if err != nil {
		return nil, err
	}
	resp, err := u.List(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Cursor fetches the page at an opaque cursor.
func (u *Upstream) Cursor(ctx context.Context, cursor string, limit int) (*CursorPage, error) {
	skip, err := DecodeCursor(cursor)
	if err != nil {
		return nil, apperrors.InvalidInput("cursor", err.Error())
	}
	resp, err := u.List(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	return ToCursorPage(resp), nil
}

func newBreaker(name string, cfg BreakerConfig, log *logger.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
		},
		// Only transport failures count against the upstream.
		IsSuccessful: func(err error) bool {
			return err == nil || !httpclient.IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", logger.Fields(
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			))
		},
	})
}

func classify(desc string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return apperrors.ServiceUnavailable("products upstream").WithCause(err)
	case httpclient.IsDecode(err):
		return apperrors.MalformedPage(desc, err.Error())
	default:
		return apperrors.FetchFailed(desc, err)
	}
}
