// Package server hosts the product feed HTTP surface on Gin, wrapped in h2c.
//
// It serves the mocked upstream listing (/products), the offset and cursor
// API routes the feed reads from (/api/products, /api/products/cursor) and
// the operational endpoints /health and /version.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - RequestLogger: per-request logging and request metrics
package server
