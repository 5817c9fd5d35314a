package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nivelle/aromabackend/models"
)

type MongoReviewStore struct {
	col *mongo.Collection
}

func NewMongoReviewStore(col *mongo.Collection) *MongoReviewStore {
	return &MongoReviewStore{col: col}
}

func (s *MongoReviewStore) Insert(ctx context.Context, r models.Review) (models.Review, error) {
	if r.Id.IsZero() {
		r.Id = bson.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if _, err := s.col.InsertOne(ctx, r); err != nil {
		return models.Review{}, err
	}
	return r, nil
}

func (s *MongoReviewStore) ListByProduct(ctx context.Context, productID bson.ObjectID, page, limit int) ([]models.Review, int64, error) {
	filter := bson.M{"productId": productID}
	skip := int64((page - 1) * limit)
	opts := options.Find().
		SetSkip(skip).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	reviews := make([]models.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, err
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (s *MongoReviewStore) CountByProduct(ctx context.Context, productID bson.ObjectID) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"productId": productID})
}

// Aggregate averages the ratings of every review for the product. A
// product with no reviews aggregates to (0, 0).
func (s *MongoReviewStore) Aggregate(ctx context.Context, productID bson.ObjectID) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$productId",
			"rating": bson.M{"$avg": "$rating"},
			"count":  bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Rating float64 `bson:"rating"`
		Count  int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].Rating, results[0].Count, nil
}
