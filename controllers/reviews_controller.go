package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/nivelle/aromabackend/dto"
	"github.com/nivelle/aromabackend/models"
	"github.com/nivelle/aromabackend/store"
)

// ListProductReviews pages the reviews of one product, newest first.
func (a *App) ListProductReviews() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		productID, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id", err)
			return
		}
		if _, err := a.Products.GetByID(ctx, productID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				statusNotFound(c, "product")
				return
			}
			respondError(c, http.StatusInternalServerError, "failed to fetch product", err)
			return
		}

		page, limit := parsePagination(c)
		reviews, total, err := a.Reviews.ListByProduct(ctx, productID, page, limit)
		if err != nil {
			a.Log.Error("list reviews failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to list reviews", err)
			return
		}

		respondOK(c, http.StatusOK, "reviews retrieved", gin.H{
			"items": reviews,
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pageCount(total, limit),
		})
	}
}

// CreateProductReview inserts a review and recomputes the product's
// denormalized rating and review count from the reviews collection. The
// recompute error surfaces instead of leaving aggregates silently stale.
func (a *App) CreateProductReview() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		productID, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id", err)
			return
		}
		if _, err := a.Products.GetByID(ctx, productID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				statusNotFound(c, "product")
				return
			}
			respondError(c, http.StatusInternalServerError, "failed to fetch product", err)
			return
		}

		var body dto.CreateReviewDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "invalid review payload", err)
			return
		}

		review := models.Review{
			ProductId:          productID,
			Name:               body.Name,
			Rating:             body.Rating,
			Title:              body.Title,
			Comment:            body.Comment,
			Longevity:          body.Longevity,
			Sillage:            body.Sillage,
			Occasion:           body.Occasion,
			IsVerifiedPurchase: body.IsVerifiedPurchase,
		}

		created, err := a.Reviews.Insert(ctx, review)
		if err != nil {
			a.Log.Error("insert review failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to create review", err)
			return
		}

		avg, count, err := a.Reviews.Aggregate(ctx, productID)
		if err == nil {
			err = a.Products.SetRatingAggregates(ctx, productID, avg, int(count))
		}
		if err != nil {
			a.Log.Error("rating recompute failed",
				zap.String("productId", productID.Hex()), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to update product rating", err)
			return
		}

		respondOK(c, http.StatusCreated, "review created", created)
	}
}
