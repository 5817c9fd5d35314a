package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nivelle/aromabackend/models"
	"github.com/nivelle/aromabackend/utils"
)

type MongoProductStore struct {
	col *mongo.Collection
}

func NewMongoProductStore(col *mongo.Collection) *MongoProductStore {
	return &MongoProductStore{col: col}
}

func (s *MongoProductStore) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	filter := bson.M{}
	if f.CategoryId != nil {
		filter["categoryId"] = *f.CategoryId
	}
	if f.IsActive != nil {
		filter["isActive"] = *f.IsActive
	}
	if f.Search != "" {
		pattern := bson.M{"$regex": f.Search, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	sortDoc := bson.D{{Key: "name", Value: 1}}
	switch f.Sort {
	case SortPriceAsc:
		sortDoc = bson.D{{Key: "price", Value: 1}}
	case SortPriceDesc:
		sortDoc = bson.D{{Key: "price", Value: -1}}
	case SortNewest:
		sortDoc = bson.D{{Key: "createdAt", Value: -1}}
	}

	skip := int64((f.Page - 1) * f.Limit)
	findOpts := options.Find().
		SetSkip(skip).
		SetLimit(int64(f.Limit)).
		SetSort(sortDoc)

	cursor, err := s.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *MongoProductStore) GetByID(ctx context.Context, id bson.ObjectID) (models.Product, error) {
	var p models.Product
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	return p, err
}

func (s *MongoProductStore) Insert(ctx context.Context, p models.Product) (models.Product, error) {
	if p.Id.IsZero() {
		p.Id = bson.NewObjectID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, p); err != nil {
		if utils.IsDuplicateKey(err) {
			return models.Product{}, ErrDuplicateSlug
		}
		return models.Product{}, err
	}
	return p, nil
}

func (s *MongoProductStore) Update(ctx context.Context, id bson.ObjectID, u ProductUpdate) (models.Product, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}

	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Slug != nil {
		set["slug"] = *u.Slug
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.DiscountPrice != nil {
		set["discountPrice"] = *u.DiscountPrice
	}
	if u.CategoryId != nil {
		set["categoryId"] = *u.CategoryId
	}
	if u.IsActive != nil {
		set["isActive"] = *u.IsActive
	}
	if u.IsFeatured != nil {
		set["isFeatured"] = *u.IsFeatured
	}
	// Dotted paths merge inventory sub-fields instead of replacing the
	// whole sub-document.
	if u.Quantity != nil {
		set["inventory.quantity"] = *u.Quantity
	}
	if u.LowStockThreshold != nil {
		set["inventory.lowStockThreshold"] = *u.LowStockThreshold
	}
	if u.TrackQuantity != nil {
		set["inventory.trackQuantity"] = *u.TrackQuantity
	}
	if u.Tags != nil {
		set["tags"] = *u.Tags
	}
	if u.Specifications != nil {
		set["specifications"] = *u.Specifications
	}
	if u.ImageUrls != nil {
		set["imageUrls"] = *u.ImageUrls
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Product
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	if err != nil && utils.IsDuplicateKey(err) {
		return models.Product{}, ErrDuplicateSlug
	}
	return p, err
}

func (s *MongoProductStore) Delete(ctx context.Context, id bson.ObjectID) (models.Product, error) {
	var p models.Product
	err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	return p, err
}

func (s *MongoProductStore) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}

func (s *MongoProductStore) CountActive(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"isActive": true})
}

func (s *MongoProductStore) CountLowStock(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{
		"$expr": bson.M{"$lte": bson.A{"$inventory.quantity", "$inventory.lowStockThreshold"}},
	})
}

func (s *MongoProductStore) ListActive(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.col.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MongoProductStore) SetRatingAggregates(ctx context.Context, id bson.ObjectID, rating float64, reviewCount int) error {
	res, err := s.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"rating":      rating,
		"reviewCount": reviewCount,
		"updatedAt":   time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
