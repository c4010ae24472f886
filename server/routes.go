package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/scrollfeed/errors"
	"github.com/kbukum/scrollfeed/products"
	"github.com/kbukum/scrollfeed/validation"
)

const (
	// DefaultAPILimit is the page size of the API routes when limit is absent.
	DefaultAPILimit = 10
	// DefaultListLimit is the page size of /products when limit is absent.
	DefaultListLimit = 30
)

// ProductSource serves the API routes.
type ProductSource interface {
	products.PageSource
	products.CursorSource
}

// RegisterCatalog serves catalog as the upstream listing at GET /products.
func (s *Server) RegisterCatalog(catalog *products.Catalog) {
	maxLimit := s.config.MaxLimit
	s.engine.GET("/products", func(c *gin.Context) {
		limit, err := queryInt(c, "limit", DefaultListLimit)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		skip, err := queryInt(c, "skip", 0)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		if err := validation.New().
			Min("limit", limit, 0).
			Max("limit", limit, maxLimit).
			Min("skip", skip, 0).
			Validate(); err != nil {
			RespondWithError(c, err)
			return
		}
		RespondOK(c, catalog.List(skip, limit, splitFields(c.Query("select"))))
	})
}

// RegisterAPI serves the offset and cursor routes the feed reads from:
// GET /api/products?page=P&limit=L and GET /api/products/cursor?cursor=C&limit=L.
func (s *Server) RegisterAPI(src ProductSource) {
	maxLimit := s.config.MaxLimit

	s.engine.GET(products.RoutePage, func(c *gin.Context) {
		page, err := queryInt(c, "page", 0)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		limit, err := queryInt(c, "limit", DefaultAPILimit)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		if err := validation.New().
			Min("page", page, 0).
			Min("limit", limit, 1).
			Max("limit", limit, maxLimit).
			Validate(); err != nil {
			RespondWithError(c, err)
			return
		}
		if _, err := products.PageSkip(page, limit); err != nil {
			RespondWithError(c, err)
			return
		}

		items, err := src.Page(c.Request.Context(), page, limit)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		if items == nil {
			items = []products.Product{}
		}
		RespondOK(c, items)
	})

	s.engine.GET(products.RouteCursor, func(c *gin.Context) {
		limit, err := queryInt(c, "limit", DefaultAPILimit)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		if err := validation.New().
			Min("limit", limit, 1).
			Max("limit", limit, maxLimit).
			Validate(); err != nil {
			RespondWithError(c, err)
			return
		}

		page, err := src.Cursor(c.Request.Context(), c.Query("cursor"), limit)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		if page.Data == nil {
			page.Data = []products.Product{}
		}
		RespondOK(c, page)
	})
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput(name, "must be an integer")
	}
	return n, nil
}

func splitFields(raw string) []string {
	if raw == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
