// Package resilience provides retry with exponential backoff for outbound
// transports. The page cache never retries on its own; only the upstream
// HTTP client wraps its calls with Retry.
//
//	page, err := resilience.Retry(ctx, cfg, func(ctx context.Context) (*Page, error) {
//	    return client.fetch(ctx, key)
//	})
package resilience
