package seed

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/nivelle/aromabackend/models"
	"github.com/nivelle/aromabackend/store"
)

func seedProducts() []models.Product {
	return []models.Product{
		{Id: bson.NewObjectID(), Name: "Rose Oud", Slug: "rose-oud", IsActive: true},
		{Id: bson.NewObjectID(), Name: "Velvet Santal", Slug: "velvet-santal", IsActive: true},
		{Id: bson.NewObjectID(), Name: "Discontinued", Slug: "discontinued", IsActive: false},
	}
}

func TestReviews_TopsUpActiveProducts(t *testing.T) {
	ctx := context.Background()
	prods := seedProducts()
	products := store.NewMemoryProductStore(prods...)
	reviews := store.NewMemoryReviewStore()

	opts := Options{MinTarget: 3, MaxTarget: 6, Rand: rand.New(rand.NewSource(1))}
	inserted, err := Reviews(ctx, products, reviews, zap.NewNop(), opts)
	require.NoError(t, err)
	assert.Positive(t, inserted)

	var total int
	for _, p := range prods[:2] {
		n, err := reviews.CountByProduct(ctx, p.Id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(3), "product %s below minimum target", p.Slug)
		assert.LessOrEqual(t, n, int64(6), "product %s above maximum target", p.Slug)
		total += int(n)

		stored, err := products.GetByID(ctx, p.Id)
		require.NoError(t, err)
		assert.EqualValues(t, n, stored.ReviewCount)
		assert.GreaterOrEqual(t, stored.Rating, float64(models.MinRating))
		assert.LessOrEqual(t, stored.Rating, float64(models.MaxRating))
	}
	assert.Equal(t, total, inserted)

	// inactive products are never touched
	n, err := reviews.CountByProduct(ctx, prods[2].Id)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReviews_RerunNeverReducesCounts(t *testing.T) {
	ctx := context.Background()
	prods := seedProducts()
	products := store.NewMemoryProductStore(prods...)
	reviews := store.NewMemoryReviewStore()

	opts := Options{MinTarget: 3, MaxTarget: 6, Rand: rand.New(rand.NewSource(7))}
	_, err := Reviews(ctx, products, reviews, zap.NewNop(), opts)
	require.NoError(t, err)

	before := make(map[bson.ObjectID]int64)
	for _, p := range prods {
		n, err := reviews.CountByProduct(ctx, p.Id)
		require.NoError(t, err)
		before[p.Id] = n
	}

	opts = Options{MinTarget: 3, MaxTarget: 6, Rand: rand.New(rand.NewSource(8))}
	_, err = Reviews(ctx, products, reviews, zap.NewNop(), opts)
	require.NoError(t, err)

	for _, p := range prods {
		n, err := reviews.CountByProduct(ctx, p.Id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, before[p.Id], "rerun reduced reviews of %s", p.Slug)
	}
}

func TestReviews_AlreadyAtTargetInsertsNothing(t *testing.T) {
	ctx := context.Background()
	p := models.Product{Id: bson.NewObjectID(), Name: "Rose Oud", Slug: "rose-oud", IsActive: true}
	products := store.NewMemoryProductStore(p)

	existing := make([]models.Review, 0, 6)
	for i := 0; i < 6; i++ {
		existing = append(existing, models.Review{ProductId: p.Id, Rating: 5, Name: "n", Title: "t", Comment: "c"})
	}
	reviews := store.NewMemoryReviewStore(existing...)

	opts := Options{MinTarget: 3, MaxTarget: 6, Rand: rand.New(rand.NewSource(1))}
	inserted, err := Reviews(ctx, products, reviews, zap.NewNop(), opts)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestOptionsFillDefaults(t *testing.T) {
	var o Options
	o.fill()
	assert.Equal(t, 3, o.MinTarget)
	assert.Equal(t, 6, o.MaxTarget)
	assert.NotNil(t, o.Rand)
}

func TestRandomReviewFields(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := models.Product{Id: bson.NewObjectID(), Slug: "rose-oud"}

	for i := 0; i < 50; i++ {
		r := randomReview(rng, p)
		assert.Equal(t, p.Id, r.ProductId)
		assert.GreaterOrEqual(t, r.Rating, models.MinRating)
		assert.LessOrEqual(t, r.Rating, models.MaxRating)
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.Comment)
		assert.False(t, r.CreatedAt.IsZero())
	}
}
