package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review lives in its own collection. Inserting one triggers a recompute
// of the owning product's rating/reviewCount aggregate.
type Review struct {
	Id        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductId bson.ObjectID `bson:"productId" json:"productId"`
	Name      string        `bson:"name" json:"name"`
	Rating    int           `bson:"rating" json:"rating"`
	Title     string        `bson:"title" json:"title"`
	Comment   string        `bson:"comment" json:"comment"`

	// Fragrance-specific attributes.
	Longevity string `bson:"longevity,omitempty" json:"longevity,omitempty"`
	Sillage   string `bson:"sillage,omitempty" json:"sillage,omitempty"`
	Occasion  string `bson:"occasion,omitempty" json:"occasion,omitempty"`

	IsVerifiedPurchase bool      `bson:"isVerifiedPurchase" json:"isVerifiedPurchase"`
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt"`
}
