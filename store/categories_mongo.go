package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nivelle/aromabackend/models"
	"github.com/nivelle/aromabackend/utils"
)

type MongoCategoryStore struct {
	col *mongo.Collection
}

func NewMongoCategoryStore(col *mongo.Collection) *MongoCategoryStore {
	return &MongoCategoryStore{col: col}
}

func (s *MongoCategoryStore) List(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := make([]models.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *MongoCategoryStore) GetByID(ctx context.Context, id bson.ObjectID) (models.Category, error) {
	var cat models.Category
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&cat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Category{}, ErrNotFound
	}
	return cat, err
}

func (s *MongoCategoryStore) GetBySlug(ctx context.Context, slug string) (models.Category, error) {
	var cat models.Category
	err := s.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&cat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Category{}, ErrNotFound
	}
	return cat, err
}

func (s *MongoCategoryStore) Insert(ctx context.Context, c models.Category) (models.Category, error) {
	if c.Id.IsZero() {
		c.Id = bson.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, c); err != nil {
		if utils.IsDuplicateKey(err) {
			return models.Category{}, ErrDuplicateSlug
		}
		return models.Category{}, err
	}
	return c, nil
}

func (s *MongoCategoryStore) Update(ctx context.Context, id bson.ObjectID, u CategoryUpdate) (models.Category, error) {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Slug != nil {
		set["slug"] = *u.Slug
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.IsActive != nil {
		set["isActive"] = *u.IsActive
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var cat models.Category
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&cat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Category{}, ErrNotFound
	}
	if err != nil && utils.IsDuplicateKey(err) {
		return models.Category{}, ErrDuplicateSlug
	}
	return cat, err
}

func (s *MongoCategoryStore) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoCategoryStore) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}
