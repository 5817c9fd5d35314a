// Package seed populates the reviews collection with plausible fake data
// for development and demo environments.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/nivelle/aromabackend/models"
	"github.com/nivelle/aromabackend/store"
)

var reviewerNames = []string{
	"Amelia R.", "Noah P.", "Sofia M.", "Lucas T.", "Emma V.",
	"Hugo D.", "Chloe B.", "Elias K.", "Jade L.", "Matteo F.",
	"Lena S.", "Oscar W.", "Ines G.", "Felix H.", "Nora J.",
}

var reviewTitles = []string{
	"Absolutely stunning",
	"My new signature scent",
	"Compliment magnet",
	"Better than expected",
	"A keeper",
	"Elegant and warm",
	"Perfect for evenings",
	"Subtle but memorable",
	"Worth every penny",
	"Surprised me",
}

var reviewComments = []string{
	"Opens sharp but dries down into something really smooth. I reach for this more than anything else on my shelf.",
	"Got stopped twice in one day and asked what I was wearing. That never happens to me.",
	"Lasts through a full work day on my skin. The drydown is the best part.",
	"Very close to the niche scents triple the price. Blind buy that paid off.",
	"The bottle looks great on the dresser and the scent matches the presentation.",
	"Took a week to grow on me, now I get it. Give it a few wears before judging.",
	"Cozy, warm and not overpowering. Exactly what I wanted for autumn.",
	"My partner keeps borrowing it, which says enough.",
	"Projection is moderate, sits close to the skin after an hour. Great for the office.",
	"Smells expensive. People assume it costs far more than it does.",
}

var longevityValues = []string{"2-4 hours", "4-6 hours", "6-8 hours", "all day"}
var sillageValues = []string{"intimate", "moderate", "strong", "enormous"}
var occasionValues = []string{"daily", "office", "evening", "date night", "special occasion"}

// Options controls the per-product review target. The zero value uses the
// defaults (3 to 6 reviews, time-seeded randomness).
type Options struct {
	MinTarget int
	MaxTarget int
	Rand      *rand.Rand
}

func (o *Options) fill() {
	if o.MinTarget <= 0 {
		o.MinTarget = 3
	}
	if o.MaxTarget < o.MinTarget {
		o.MaxTarget = o.MinTarget + 3
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
}

// Reviews tops up every active product to a randomly chosen target review
// count, then recomputes the product's denormalized rating aggregates.
// Re-running never reduces counts; products already at or above their
// target are skipped. Returns the number of reviews inserted.
func Reviews(ctx context.Context, products store.ProductStore, reviews store.ReviewStore, log *zap.Logger, opts Options) (int, error) {
	opts.fill()
	rng := opts.Rand

	active, err := products.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active products: %w", err)
	}

	inserted := 0
	for _, p := range active {
		existing, err := reviews.CountByProduct(ctx, p.Id)
		if err != nil {
			return inserted, fmt.Errorf("count reviews for %s: %w", p.Slug, err)
		}

		target := int64(opts.MinTarget + rng.Intn(opts.MaxTarget-opts.MinTarget+1))
		if existing >= target {
			continue
		}

		for i := existing; i < target; i++ {
			if _, err := reviews.Insert(ctx, randomReview(rng, p)); err != nil {
				return inserted, fmt.Errorf("insert review for %s: %w", p.Slug, err)
			}
			inserted++
		}

		avg, count, err := reviews.Aggregate(ctx, p.Id)
		if err != nil {
			return inserted, fmt.Errorf("aggregate reviews for %s: %w", p.Slug, err)
		}
		if err := products.SetRatingAggregates(ctx, p.Id, avg, int(count)); err != nil {
			return inserted, fmt.Errorf("update rating for %s: %w", p.Slug, err)
		}

		log.Info("seeded reviews",
			zap.String("product", p.Slug),
			zap.Int64("target", target),
			zap.Float64("rating", avg))
	}

	return inserted, nil
}

func randomReview(rng *rand.Rand, p models.Product) models.Review {
	// Weighted toward the top of the scale, like real storefront data.
	ratings := []int{3, 4, 4, 4, 5, 5, 5, 5}

	daysAgo := rng.Intn(180)
	created := time.Now().UTC().AddDate(0, 0, -daysAgo)

	return models.Review{
		ProductId:          p.Id,
		Name:               reviewerNames[rng.Intn(len(reviewerNames))],
		Rating:             ratings[rng.Intn(len(ratings))],
		Title:              reviewTitles[rng.Intn(len(reviewTitles))],
		Comment:            reviewComments[rng.Intn(len(reviewComments))],
		Longevity:          longevityValues[rng.Intn(len(longevityValues))],
		Sillage:            sillageValues[rng.Intn(len(sillageValues))],
		Occasion:           occasionValues[rng.Intn(len(occasionValues))],
		IsVerifiedPurchase: rng.Intn(100) < 70,
		CreatedAt:          created,
	}
}
