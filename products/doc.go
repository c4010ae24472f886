// Package products is the product listing domain: the Product record, an
// in-memory Catalog that plays the upstream listing service, HTTP clients for
// the upstream and for the feed API, and the page fetchers that connect them
// to the pagination cache.
package products
