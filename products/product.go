package products

// Product is one listed item. Identity is by ID alone.
type Product struct {
	ID    int64   `json:"id" validate:"required,gt=0"`
	Title string  `json:"title,omitempty"`
	Price float64 `json:"price,omitempty" validate:"gte=0"`
}

// ItemID returns the product id.
func (p Product) ItemID() int64 { return p.ID }

// ListResponse is the upstream listing payload.
type ListResponse struct {
	Products []Product `json:"products" validate:"required,dive"`
	Total    int       `json:"total" validate:"gte=0"`
	Skip     int       `json:"skip" validate:"gte=0"`
	Limit    int       `json:"limit" validate:"gte=0"`
}

// CursorPage is the cursor API payload. NextCursor is empty on the last page.
type CursorPage struct {
	Data       []Product `json:"data" validate:"required,dive"`
	NextCursor string    `json:"nextCursor,omitempty"`
}
