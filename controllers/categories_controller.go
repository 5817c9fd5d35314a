package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/nivelle/aromabackend/dto"
	"github.com/nivelle/aromabackend/models"
	"github.com/nivelle/aromabackend/store"
	"github.com/nivelle/aromabackend/utils"
)

func (a *App) ListCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := a.Categories.List(c.Request.Context())
		if err != nil {
			a.Log.Error("list categories failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to list categories", err)
			return
		}
		respondOK(c, http.StatusOK, "categories retrieved", gin.H{"items": categories})
	}
}

func (a *App) GetCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if slug := strings.TrimSpace(c.Param("slug")); slug != "" {
			cat, err := a.Categories.GetBySlug(ctx, slug)
			if errors.Is(err, store.ErrNotFound) {
				statusNotFound(c, "category")
				return
			}
			if err != nil {
				respondError(c, http.StatusInternalServerError, "failed to fetch category", err)
				return
			}
			respondOK(c, http.StatusOK, "category retrieved", cat)
			return
		}

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid category id", err)
			return
		}
		cat, err := a.Categories.GetByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			statusNotFound(c, "category")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to fetch category", err)
			return
		}
		respondOK(c, http.StatusOK, "category retrieved", cat)
	}
}

func (a *App) CreateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateCategoryDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "invalid category payload", err)
			return
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Slug = strings.TrimSpace(body.Slug)
		if body.Slug == "" {
			body.Slug = utils.GenerateSlug(body.Name)
		}

		active := true
		if body.IsActive != nil {
			active = *body.IsActive
		}

		cat := models.Category{
			Name:        body.Name,
			Slug:        body.Slug,
			Description: body.Description,
			IsActive:    active,
		}

		created, err := a.Categories.Insert(c.Request.Context(), cat)
		if errors.Is(err, store.ErrDuplicateSlug) {
			respondError(c, http.StatusConflict, "slug already exists", nil)
			return
		}
		if err != nil {
			a.Log.Error("insert category failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to create category", err)
			return
		}

		respondOK(c, http.StatusCreated, "category created", created)
	}
}

func (a *App) UpdateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid category id", err)
			return
		}

		var body dto.UpdateCategoryDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "invalid category payload", err)
			return
		}

		update := store.CategoryUpdate{
			Description: body.Description,
			IsActive:    body.IsActive,
		}
		if body.Name != nil {
			v := strings.TrimSpace(*body.Name)
			if v == "" {
				respondError(c, http.StatusBadRequest, "name cannot be empty", nil)
				return
			}
			update.Name = &v
		}
		if body.Slug != nil {
			v := strings.TrimSpace(*body.Slug)
			if v == "" {
				respondError(c, http.StatusBadRequest, "slug cannot be empty", nil)
				return
			}
			update.Slug = &v
		}

		if update.Name == nil && update.Slug == nil && update.Description == nil && update.IsActive == nil {
			respondError(c, http.StatusBadRequest, "no updates provided", nil)
			return
		}

		updated, err := a.Categories.Update(c.Request.Context(), id, update)
		if errors.Is(err, store.ErrNotFound) {
			statusNotFound(c, "category")
			return
		}
		if errors.Is(err, store.ErrDuplicateSlug) {
			respondError(c, http.StatusConflict, "slug already exists", nil)
			return
		}
		if err != nil {
			a.Log.Error("update category failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to update category", err)
			return
		}

		respondOK(c, http.StatusOK, "category updated", updated)
	}
}

// DeleteCategory removes the category only. Products keep their dangling
// reference; there is no cascade.
func (a *App) DeleteCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid category id", err)
			return
		}

		err = a.Categories.Delete(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			statusNotFound(c, "category")
			return
		}
		if err != nil {
			a.Log.Error("delete category failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to delete category", err)
			return
		}

		respondOK(c, http.StatusOK, "category deleted", nil)
	}
}
