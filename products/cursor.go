package products

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

// EncodeCursor encodes the skip of the next page as an opaque token.
func EncodeCursor(skip int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(skip)))
}

// DecodeCursor decodes a token made by EncodeCursor. An empty cursor is the
// first page.
func DecodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("decode cursor: %w", err)
	}
	skip, err := strconv.Atoi(string(b))
	if err != nil || skip < 0 {
		return 0, fmt.Errorf("decode cursor: invalid offset %q", string(b))
	}
	return skip, nil
}

// ToCursorPage converts a listing into a cursor page. The next cursor is set
// while items remain after this page.
func ToCursorPage(resp *ListResponse) *CursorPage {
	page := &CursorPage{Data: resp.Products}
	if page.Data == nil {
		page.Data = []Product{}
	}
	if next := resp.Skip + len(resp.Products); len(resp.Products) > 0 && next < resp.Total {
		page.NextCursor = EncodeCursor(next)
	}
	return page
}
