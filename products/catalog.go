package products

import (
	"fmt"
	"math"
)

// DefaultCatalogSize is the number of products in the demo catalog.
const DefaultCatalogSize = 100

// Catalog is an in-memory product list served as the upstream listing.
type Catalog struct {
	products []Product
}

// NewCatalog returns a catalog of n generated products with ids 1..n.
func NewCatalog(n int) *Catalog {
	products := make([]Product, n)
	for i := range products {
		id := int64(i + 1)
		products[i] = Product{
			ID:    id,
			Title: fmt.Sprintf("Product %d", id),
			Price: math.Round((9.99+float64(id)*3.5)*100) / 100,
		}
	}
	return &Catalog{products: products}
}

// NewCatalogFrom returns a catalog over the given products.
func NewCatalogFrom(products []Product) *Catalog {
	return &Catalog{products: append([]Product(nil), products...)}
}

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.products) }

// List returns up to limit products starting at skip. A non-empty fields list
// keeps only the named attributes ("title", "price"); the id is always kept.
func (c *Catalog) List(skip, limit int, fields []string) *ListResponse {
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}
	start := min(skip, len(c.products))
	end := min(start+limit, len(c.products))

	out := make([]Product, 0, end-start)
	for _, p := range c.products[start:end] {
		out = append(out, selectFields(p, fields))
	}
	return &ListResponse{Products: out, Total: len(c.products), Skip: skip, Limit: limit}
}

func selectFields(p Product, fields []string) Product {
	if len(fields) == 0 {
		return p
	}
	out := Product{ID: p.ID}
	for _, f := range fields {
		switch f {
		case "title":
			out.Title = p.Title
		case "price":
			out.Price = p.Price
		}
	}
	return out
}
