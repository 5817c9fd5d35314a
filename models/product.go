package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Inventory is embedded in Product. Quantity and LowStockThreshold are
// updated independently of each other (partial updates merge sub-fields,
// they never replace the whole record).
type Inventory struct {
	Quantity          int  `bson:"quantity" json:"quantity"`
	LowStockThreshold int  `bson:"lowStockThreshold" json:"lowStockThreshold"`
	TrackQuantity     bool `bson:"trackQuantity" json:"trackQuantity"`
}

type Product struct {
	Id             bson.ObjectID     `bson:"_id,omitempty" json:"id"`
	Name           string            `bson:"name" json:"name"`
	Slug           string            `bson:"slug" json:"slug"`
	Description    string            `bson:"description" json:"description"`
	Price          float64           `bson:"price" json:"price"`
	DiscountPrice  *float64          `bson:"discountPrice,omitempty" json:"discountPrice,omitempty"`
	ImageUrls      []string          `bson:"imageUrls" json:"imageUrls"`
	CategoryId     bson.ObjectID     `bson:"categoryId" json:"categoryId"`
	IsActive       bool              `bson:"isActive" json:"isActive"`
	IsFeatured     bool              `bson:"isFeatured" json:"isFeatured"`
	Inventory      Inventory         `bson:"inventory" json:"inventory"`
	Tags           []string          `bson:"tags" json:"tags"`
	Specifications map[string]string `bson:"specifications,omitempty" json:"specifications,omitempty"`

	// Denormalized from the reviews collection, recomputed on every
	// review write and by the seeding script.
	Rating      float64 `bson:"rating" json:"rating"`
	ReviewCount int     `bson:"reviewCount" json:"reviewCount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// LowStock reports whether the product is at or below its configured
// threshold. Boundary equality counts as low.
func (p Product) LowStock() bool {
	return p.Inventory.Quantity <= p.Inventory.LowStockThreshold
}
