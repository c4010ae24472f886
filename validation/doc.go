// Package validation validates upstream payloads and request parameters.
//
// Struct tag validation (go-playground/validator) checks the shape of
// decoded page payloads:
//
//	type ListResponse struct {
//	    Products []Product `json:"products" validate:"required,dive"`
//	}
//	err := validation.Validate(resp)
//
// Programmatic validation collects errors for query parameters:
//
//	v := validation.New()
//	v.Min("limit", limit, 1).Max("limit", limit, 100)
//	if err := v.Validate(); err != nil { ... }
package validation
