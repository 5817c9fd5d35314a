package controllers

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/nivelle/aromabackend/media"
	"github.com/nivelle/aromabackend/models"
	"github.com/nivelle/aromabackend/store"
	"github.com/nivelle/aromabackend/utils"
)

// App carries handler dependencies explicitly so every handler is
// testable against in-memory stores and a fake media client.
type App struct {
	Products   store.ProductStore
	Categories store.CategoryStore
	Reviews    store.ReviewStore
	Media      media.Client
	Cleaner    *media.Cleaner
	Validator  *utils.FileValidator
	Log        *zap.Logger
}

// envelope is the uniform response shape:
// { success, message, data?, error? }.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string, err error) {
	e := envelope{Success: false, Message: message}
	if err != nil {
		e.Error = err.Error()
	}
	c.JSON(status, e)
}

// ProductView is a product with its category joined in.
type ProductView struct {
	models.Product
	Category *models.Category `json:"category,omitempty"`
}

func (a *App) withCategory(ctx context.Context, p models.Product) ProductView {
	view := ProductView{Product: p}
	if cat, err := a.Categories.GetByID(ctx, p.CategoryId); err == nil {
		view.Category = &cat
	}
	return view
}

func (a *App) withCategories(ctx context.Context, products []models.Product) []ProductView {
	cache := make(map[bson.ObjectID]*models.Category)
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		view := ProductView{Product: p}
		if cat, ok := cache[p.CategoryId]; ok {
			view.Category = cat
		} else if fetched, err := a.Categories.GetByID(ctx, p.CategoryId); err == nil {
			cache[p.CategoryId] = &fetched
			view.Category = &fetched
		}
		views = append(views, view)
	}
	return views
}

// parsePagination reads page/limit query params with env-configured caps.
func parsePagination(c *gin.Context) (page, limit int) {
	maxLimit, defaultLimit := utils.GetDefaultQueryLimits()
	page = utils.ParseIntDefault(c.Query("page"), 1)
	limit = utils.ParseIntDefault(c.Query("limit"), defaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func pageCount(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

func maxProductImages() int {
	n, err := strconv.Atoi(os.Getenv("MAX_PROD_IMAGES"))
	if err != nil || n <= 0 {
		return 4
	}
	return n
}

func statusNotFound(c *gin.Context, what string) {
	respondError(c, http.StatusNotFound, what+" not found", nil)
}
