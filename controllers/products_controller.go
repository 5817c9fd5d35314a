package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/nivelle/aromabackend/dto"
	"github.com/nivelle/aromabackend/media"
	"github.com/nivelle/aromabackend/models"
	"github.com/nivelle/aromabackend/store"
	"github.com/nivelle/aromabackend/utils"
)

// AdminListProducts pages all products, optionally filtered by category
// id, status (active/inactive) and a case-insensitive search term over
// name and description.
func (a *App) AdminListProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, limit := parsePagination(c)

		filter := store.ProductFilter{
			Search: strings.TrimSpace(c.Query("search")),
			Sort:   strings.TrimSpace(c.Query("sort")),
			Page:   page,
			Limit:  limit,
		}

		if catHex := strings.TrimSpace(c.Query("category")); catHex != "" {
			catID, err := bson.ObjectIDFromHex(catHex)
			if err != nil {
				respondError(c, http.StatusBadRequest, "invalid category id", err)
				return
			}
			filter.CategoryId = &catID
		}

		switch c.Query("status") {
		case "":
		case "active":
			active := true
			filter.IsActive = &active
		case "inactive":
			active := false
			filter.IsActive = &active
		default:
			respondError(c, http.StatusBadRequest, "status must be active or inactive", nil)
			return
		}

		products, total, err := a.Products.List(ctx, filter)
		if err != nil {
			a.Log.Error("list products failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to list products", err)
			return
		}

		respondOK(c, http.StatusOK, "products retrieved", gin.H{
			"items": a.withCategories(ctx, products),
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pageCount(total, limit),
		})
	}
}

// GetProduct fetches a single product with its category joined.
func (a *App) GetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id", err)
			return
		}

		product, err := a.Products.GetByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			statusNotFound(c, "product")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to fetch product", err)
			return
		}

		respondOK(c, http.StatusOK, "product retrieved", a.withCategory(ctx, product))
	}
}

// CreateProduct handles the multipart creation form: validates required
// fields, resolves the category, uploads images, persists the product.
// Freshly uploaded images are discarded when the insert fails.
func (a *App) CreateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid multipart form", err)
			return
		}

		in, err := dto.ParseCreateProductForm(url.Values(form.Value))
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error(), nil)
			return
		}

		catID, err := bson.ObjectIDFromHex(in.CategoryId)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid category id", err)
			return
		}
		if _, err := a.Categories.GetByID(ctx, catID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				statusNotFound(c, "category")
				return
			}
			respondError(c, http.StatusInternalServerError, "failed to resolve category", err)
			return
		}

		files := form.File["images"]
		if len(files) > maxProductImages() {
			respondError(c, http.StatusBadRequest, "too many images", nil)
			return
		}
		for _, fh := range files {
			if _, err := a.Validator.ValidateFile(fh); err != nil {
				respondError(c, http.StatusBadRequest, err.Error(), nil)
				return
			}
		}

		slug := utils.GenerateSlug(in.Name)

		imageUrls, err := media.UploadProductImages(ctx, a.Media, slug, files)
		if err != nil {
			a.Log.Error("image upload failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "image upload failed", err)
			return
		}

		product := models.Product{
			Name:          in.Name,
			Slug:          slug,
			Description:   in.Description,
			Price:         in.Price,
			DiscountPrice: in.DiscountPrice,
			ImageUrls:     imageUrls,
			CategoryId:    catID,
			IsActive:      in.IsActive,
			IsFeatured:    in.IsFeatured,
			Inventory: models.Inventory{
				Quantity:          in.Quantity,
				LowStockThreshold: in.LowStockThreshold,
				TrackQuantity:     in.TrackQuantity,
			},
			Tags:           in.Tags,
			Specifications: in.Specifications,
		}

		created, err := a.Products.Insert(ctx, product)
		if errors.Is(err, store.ErrDuplicateSlug) {
			// Tolerate slug collisions with a random suffix, once.
			product.Slug = slug + "-" + uuid.New().String()[:8]
			created, err = a.Products.Insert(ctx, product)
		}
		if err != nil {
			a.Cleaner.Discard(ctx, imageUrls)
			if errors.Is(err, store.ErrDuplicateSlug) {
				respondError(c, http.StatusConflict, "slug already exists", nil)
				return
			}
			a.Log.Error("insert product failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to create product", err)
			return
		}

		respondOK(c, http.StatusCreated, "product created", a.withCategory(ctx, created))
	}
}

// UpdateProduct applies a partial update. Only fields present in the form
// change; inventory sub-fields merge individually. Removed image URLs are
// best-effort deleted from the media service and dropped from the stored
// list regardless of delete outcome; new uploads are appended after
// removals.
func (a *App) UpdateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id", err)
			return
		}

		product, err := a.Products.GetByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			statusNotFound(c, "product")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to fetch product", err)
			return
		}

		var formValues url.Values
		var newFiles []*multipart.FileHeader
		if form, err := c.MultipartForm(); err == nil && form != nil {
			formValues = url.Values(form.Value)
			newFiles = form.File["images"]
		} else {
			_ = c.Request.ParseForm()
			formValues = c.Request.PostForm
		}

		in, err := dto.ParseUpdateProductForm(formValues)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error(), nil)
			return
		}

		update := store.ProductUpdate{
			Name:              in.Name,
			Description:       in.Description,
			Price:             in.Price,
			DiscountPrice:     in.DiscountPrice,
			IsActive:          in.IsActive,
			IsFeatured:        in.IsFeatured,
			Quantity:          in.Quantity,
			LowStockThreshold: in.LowStockThreshold,
			TrackQuantity:     in.TrackQuantity,
			Tags:              in.Tags,
			Specifications:    in.Specifications,
		}

		if in.CategoryId != nil {
			catID, err := bson.ObjectIDFromHex(*in.CategoryId)
			if err != nil {
				respondError(c, http.StatusBadRequest, "invalid category id", err)
				return
			}
			if _, err := a.Categories.GetByID(ctx, catID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					statusNotFound(c, "category")
					return
				}
				respondError(c, http.StatusInternalServerError, "failed to resolve category", err)
				return
			}
			update.CategoryId = &catID
		}

		// Renaming regenerates the slug.
		if in.Name != nil && *in.Name != product.Name {
			slug := utils.GenerateSlug(*in.Name)
			update.Slug = &slug
		}

		// Only URLs the product actually owns can be removed.
		imagesToRemove := utils.IntersectStrings(in.RemovedImageUrls, product.ImageUrls)

		if len(newFiles) > 0 {
			total := len(product.ImageUrls) - len(imagesToRemove) + len(newFiles)
			if total > maxProductImages() {
				respondError(c, http.StatusBadRequest, "too many images", nil)
				return
			}
			for _, fh := range newFiles {
				if _, err := a.Validator.ValidateFile(fh); err != nil {
					respondError(c, http.StatusBadRequest, err.Error(), nil)
					return
				}
			}
		}

		var newImageUrls []string
		if len(newFiles) > 0 {
			newImageUrls, err = media.UploadProductImages(ctx, a.Media, product.Slug, newFiles)
			if err != nil {
				a.Log.Error("image upload failed", zap.Error(err))
				respondError(c, http.StatusInternalServerError, "image upload failed", err)
				return
			}
		}

		if len(imagesToRemove) > 0 || len(newImageUrls) > 0 {
			merged := utils.MergeImageUrls(product.ImageUrls, imagesToRemove, newImageUrls)
			update.ImageUrls = &merged
		}

		if update.Empty() {
			respondError(c, http.StatusBadRequest, "no updates provided", nil)
			return
		}

		updated, err := a.Products.Update(ctx, id, update)
		if err != nil {
			// The record is unchanged; discard what we just uploaded.
			a.Cleaner.Discard(ctx, newImageUrls)
			if errors.Is(err, store.ErrNotFound) {
				statusNotFound(c, "product")
				return
			}
			if errors.Is(err, store.ErrDuplicateSlug) {
				respondError(c, http.StatusConflict, "slug already exists", nil)
				return
			}
			a.Log.Error("update product failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to update product", err)
			return
		}

		// Removed URLs are already gone from the record; deleting the
		// objects is best effort.
		a.Cleaner.Discard(ctx, imagesToRemove)

		respondOK(c, http.StatusOK, "product updated", a.withCategory(ctx, updated))
	}
}

// DeleteProduct removes the record, then best-effort deletes every
// associated image.
func (a *App) DeleteProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid product id", err)
			return
		}

		deleted, err := a.Products.Delete(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			statusNotFound(c, "product")
			return
		}
		if err != nil {
			a.Log.Error("delete product failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to delete product", err)
			return
		}

		a.Cleaner.Discard(ctx, deleted.ImageUrls)

		respondOK(c, http.StatusOK, "product deleted", nil)
	}
}

// ListProducts is the public catalog listing: active products only,
// filterable by category slug and search term.
func (a *App) ListProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, limit := parsePagination(c)

		active := true
		filter := store.ProductFilter{
			IsActive: &active,
			Search:   strings.TrimSpace(c.Query("search")),
			Sort:     strings.TrimSpace(c.Query("sort")),
			Page:     page,
			Limit:    limit,
		}

		if categorySlug := strings.TrimSpace(c.Query("category")); categorySlug != "" {
			cat, err := a.Categories.GetBySlug(ctx, categorySlug)
			if errors.Is(err, store.ErrNotFound) {
				// Unknown slug lists nothing rather than erroring.
				respondOK(c, http.StatusOK, "products retrieved", gin.H{
					"items": []ProductView{},
					"page":  page,
					"limit": limit,
					"total": 0,
					"pages": 0,
				})
				return
			}
			if err != nil {
				respondError(c, http.StatusInternalServerError, "failed to resolve category", err)
				return
			}
			filter.CategoryId = &cat.Id
		}

		products, total, err := a.Products.List(ctx, filter)
		if err != nil {
			a.Log.Error("list products failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to list products", err)
			return
		}

		respondOK(c, http.StatusOK, "products retrieved", gin.H{
			"items": a.withCategories(ctx, products),
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pageCount(total, limit),
		})
	}
}
