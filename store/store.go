// Package store holds the persistence layer: one interface per collection,
// a MongoDB implementation used by the service, and in-memory
// implementations used by handler tests.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nivelle/aromabackend/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateSlug = errors.New("slug already exists")
)

// Sort options accepted by product listings.
const (
	SortNameAsc   = ""
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

type ProductFilter struct {
	CategoryId *bson.ObjectID
	IsActive   *bool
	Search     string // case-insensitive substring over name and description
	Sort       string
	Page       int
	Limit      int
}

// ProductUpdate carries a partial update: nil fields are left untouched.
// Inventory sub-fields merge individually rather than replacing the whole
// sub-record.
type ProductUpdate struct {
	Name              *string
	Slug              *string
	Description       *string
	Price             *float64
	DiscountPrice     *float64
	CategoryId        *bson.ObjectID
	IsActive          *bool
	IsFeatured        *bool
	Quantity          *int
	LowStockThreshold *int
	TrackQuantity     *bool
	Tags              *[]string
	Specifications    *map[string]string
	ImageUrls         *[]string
}

func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Slug == nil && u.Description == nil &&
		u.Price == nil && u.DiscountPrice == nil && u.CategoryId == nil &&
		u.IsActive == nil && u.IsFeatured == nil && u.Quantity == nil &&
		u.LowStockThreshold == nil && u.TrackQuantity == nil &&
		u.Tags == nil && u.Specifications == nil && u.ImageUrls == nil
}

type ProductStore interface {
	List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id bson.ObjectID) (models.Product, error)
	Insert(ctx context.Context, p models.Product) (models.Product, error)
	// Update applies a partial update and returns the updated document,
	// or ErrNotFound.
	Update(ctx context.Context, id bson.ObjectID, u ProductUpdate) (models.Product, error)
	// Delete removes the document and returns it so callers can clean up
	// its images, or ErrNotFound.
	Delete(ctx context.Context, id bson.ObjectID) (models.Product, error)
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	// CountLowStock counts products with quantity <= lowStockThreshold.
	CountLowStock(ctx context.Context) (int64, error)
	ListActive(ctx context.Context) ([]models.Product, error)
	SetRatingAggregates(ctx context.Context, id bson.ObjectID, rating float64, reviewCount int) error
}

type CategoryUpdate struct {
	Name        *string
	Slug        *string
	Description *string
	IsActive    *bool
}

type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id bson.ObjectID) (models.Category, error)
	GetBySlug(ctx context.Context, slug string) (models.Category, error)
	Insert(ctx context.Context, c models.Category) (models.Category, error)
	Update(ctx context.Context, id bson.ObjectID, u CategoryUpdate) (models.Category, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type ReviewStore interface {
	Insert(ctx context.Context, r models.Review) (models.Review, error)
	ListByProduct(ctx context.Context, productID bson.ObjectID, page, limit int) ([]models.Review, int64, error)
	CountByProduct(ctx context.Context, productID bson.ObjectID) (int64, error)
	// Aggregate computes the average rating and review count for a product
	// from the reviews collection.
	Aggregate(ctx context.Context, productID bson.ObjectID) (avg float64, count int64, err error)
}
