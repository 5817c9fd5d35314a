package dto

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FieldError is a validation failure tied to a single form field. All
// field errors map to a 400.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func missing(field string) *FieldError {
	return &FieldError{Field: field, Reason: "is required"}
}

// CreateProductInput is the typed result of parsing a product creation
// form. Images travel separately as multipart files.
type CreateProductInput struct {
	Name              string
	Description       string
	Price             float64
	DiscountPrice     *float64
	CategoryId        string // hex, validated by the handler against the store
	IsActive          bool
	IsFeatured        bool
	Quantity          int
	LowStockThreshold int
	TrackQuantity     bool
	Tags              []string
	Specifications    map[string]string
}

// UpdateProductInput carries only the fields present in the request; nil
// means "leave unchanged". Inventory fields are independent of each other.
type UpdateProductInput struct {
	Name              *string
	Description       *string
	Price             *float64
	DiscountPrice     *float64
	CategoryId        *string
	IsActive          *bool
	IsFeatured        *bool
	Quantity          *int
	LowStockThreshold *int
	TrackQuantity     *bool
	Tags              *[]string
	Specifications    *map[string]string
	RemovedImageUrls  []string
}

// ParseCreateProductForm validates and coerces the multipart form fields
// of a creation request. Required: name, description, price, category.
// Booleans are true iff the literal string "true"; absent flags fall back
// to schema defaults (active, tracking quantity, threshold 5).
func ParseCreateProductForm(form url.Values) (CreateProductInput, error) {
	in := CreateProductInput{
		IsActive:          true,
		TrackQuantity:     true,
		LowStockThreshold: 5,
	}

	in.Name = strings.TrimSpace(form.Get("name"))
	if in.Name == "" {
		return in, missing("name")
	}
	in.Description = strings.TrimSpace(form.Get("description"))
	if in.Description == "" {
		return in, missing("description")
	}
	in.CategoryId = strings.TrimSpace(form.Get("category"))
	if in.CategoryId == "" {
		return in, missing("category")
	}

	priceStr := strings.TrimSpace(form.Get("price"))
	if priceStr == "" {
		return in, missing("price")
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return in, &FieldError{Field: "price", Reason: "must be a number"}
	}
	in.Price = price

	if v := strings.TrimSpace(form.Get("discountPrice")); v != "" {
		dp, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return in, &FieldError{Field: "discountPrice", Reason: "must be a number"}
		}
		in.DiscountPrice = &dp
	}

	if form.Has("isActive") {
		in.IsActive = form.Get("isActive") == "true"
	}
	if form.Has("isFeatured") {
		in.IsFeatured = form.Get("isFeatured") == "true"
	}
	if form.Has("trackQuantity") {
		in.TrackQuantity = form.Get("trackQuantity") == "true"
	}

	if v := strings.TrimSpace(form.Get("stock")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return in, &FieldError{Field: "stock", Reason: "must be an integer"}
		}
		in.Quantity = n
	}
	if v := strings.TrimSpace(form.Get("lowStockThreshold")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return in, &FieldError{Field: "lowStockThreshold", Reason: "must be an integer"}
		}
		in.LowStockThreshold = n
	}

	in.Tags = SplitTags(form.Get("tags"))

	specs, err := parseSpecifications(form.Get("specifications"))
	if err != nil {
		return in, err
	}
	in.Specifications = specs

	return in, nil
}

// ParseUpdateProductForm coerces only the fields present in the form.
func ParseUpdateProductForm(form url.Values) (UpdateProductInput, error) {
	var in UpdateProductInput

	if form.Has("name") {
		v := strings.TrimSpace(form.Get("name"))
		if v == "" {
			return in, &FieldError{Field: "name", Reason: "cannot be empty"}
		}
		in.Name = &v
	}
	if form.Has("description") {
		v := strings.TrimSpace(form.Get("description"))
		in.Description = &v
	}
	if form.Has("category") {
		v := strings.TrimSpace(form.Get("category"))
		if v == "" {
			return in, &FieldError{Field: "category", Reason: "cannot be empty"}
		}
		in.CategoryId = &v
	}
	if form.Has("price") {
		price, err := strconv.ParseFloat(strings.TrimSpace(form.Get("price")), 64)
		if err != nil {
			return in, &FieldError{Field: "price", Reason: "must be a number"}
		}
		in.Price = &price
	}
	if form.Has("discountPrice") {
		dp, err := strconv.ParseFloat(strings.TrimSpace(form.Get("discountPrice")), 64)
		if err != nil {
			return in, &FieldError{Field: "discountPrice", Reason: "must be a number"}
		}
		in.DiscountPrice = &dp
	}
	if form.Has("isActive") {
		b := form.Get("isActive") == "true"
		in.IsActive = &b
	}
	if form.Has("isFeatured") {
		b := form.Get("isFeatured") == "true"
		in.IsFeatured = &b
	}
	if form.Has("trackQuantity") {
		b := form.Get("trackQuantity") == "true"
		in.TrackQuantity = &b
	}
	if form.Has("stock") {
		n, err := strconv.Atoi(strings.TrimSpace(form.Get("stock")))
		if err != nil {
			return in, &FieldError{Field: "stock", Reason: "must be an integer"}
		}
		in.Quantity = &n
	}
	if form.Has("lowStockThreshold") {
		n, err := strconv.Atoi(strings.TrimSpace(form.Get("lowStockThreshold")))
		if err != nil {
			return in, &FieldError{Field: "lowStockThreshold", Reason: "must be an integer"}
		}
		in.LowStockThreshold = &n
	}
	if form.Has("tags") {
		tags := SplitTags(form.Get("tags"))
		in.Tags = &tags
	}
	if form.Has("specifications") {
		specs, err := parseSpecifications(form.Get("specifications"))
		if err != nil {
			return in, err
		}
		in.Specifications = &specs
	}

	in.RemovedImageUrls = parseRemovedImages(form["removedImages"])

	return in, nil
}

// SplitTags splits a comma-delimited tag string, trimming whitespace and
// dropping empties.
func SplitTags(raw string) []string {
	tags := make([]string, 0)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseSpecifications decodes the JSON-encoded specifications field into a
// string map. Malformed JSON rejects the whole request.
func parseSpecifications(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, &FieldError{Field: "specifications", Reason: "must be a JSON object"}
	}

	specs := make(map[string]string, len(decoded))
	for k, v := range decoded {
		specs[k] = fmt.Sprint(v)
	}
	return specs, nil
}

// parseRemovedImages accepts either a single JSON array value (the usual
// frontend shape) or repeated form values.
func parseRemovedImages(values []string) []string {
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var urls []string
		if err := json.Unmarshal([]byte(values[0]), &urls); err == nil {
			return urls
		}
	}

	urls := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			urls = append(urls, v)
		}
	}
	return urls
}
