package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kbukum/scrollfeed/errors"
)

type testItem struct {
	ID    int64   `json:"id" validate:"required,gt=0"`
	Title string  `json:"title"`
	Price float64 `json:"price" validate:"gte=0"`
}

type testList struct {
	Products []testItem `json:"products" validate:"required,dive"`
	Limit    int        `json:"limit" validate:"gte=0"`
}

func TestValidate_Valid(t *testing.T) {
	list := testList{Products: []testItem{{ID: 1, Title: "a", Price: 2}}, Limit: 1}
	if err := Validate(list); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_EmptySliceIsPresent(t *testing.T) {
	list := testList{Products: []testItem{}}
	if err := Validate(list); err != nil {
		t.Fatalf("empty non-nil products should pass required, got %v", err)
	}
}

func TestValidate_MissingProducts(t *testing.T) {
	err := Validate(testList{})
	if err == nil {
		t.Fatal("expected error for nil products")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT AppError, got %v", err)
	}
	if !strings.Contains(appErr.Message, "products: is required") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestValidate_NestedField(t *testing.T) {
	list := testList{Products: []testItem{{ID: 1}, {ID: 0}}}
	err := Validate(list)
	if err == nil {
		t.Fatal("expected error for zero id")
	}
	if !strings.Contains(err.Error(), "products[1].id") {
		t.Errorf("expected nested field path, got %q", err.Error())
	}
}

func TestValidator_Chain(t *testing.T) {
	tests := []struct {
		name    string
		build   func(v *Validator)
		wantErr bool
	}{
		{"min ok", func(v *Validator) { v.Min("limit", 1, 1) }, false},
		{"min fail", func(v *Validator) { v.Min("limit", 0, 1) }, true},
		{"max fail", func(v *Validator) { v.Max("limit", 101, 100) }, true},
		{"oneof ok", func(v *Validator) { v.OneOf("strategy", "cursor", []string{"offset", "cursor"}) }, false},
		{"oneof fail", func(v *Validator) { v.OneOf("strategy", "page", []string{"offset", "cursor"}) }, true},
		{"required blank", func(v *Validator) { v.Required("source", "  ") }, true},
		{"uuid ok", func(v *Validator) { v.RequiredUUID("session", uuid.NewString()) }, false},
		{"uuid bad", func(v *Validator) { v.RequiredUUID("session", "nope") }, true},
		{"custom fail", func(v *Validator) { v.Custom(false, "cursor", "is not decodable") }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New()
			tc.build(v)
			if v.HasErrors() != tc.wantErr {
				t.Errorf("wantErr=%v, errors=%v", tc.wantErr, v.Errors())
			}
			if tc.wantErr && v.Validate() == nil {
				t.Error("expected AppError from Validate")
			}
		})
	}
}
