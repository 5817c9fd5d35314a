package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DashboardStats returns aggregate counts for the admin dashboard. The
// four queries run in parallel; any failure fails the whole request.
func (a *App) DashboardStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			totalProducts    int64
			activeProducts   int64
			totalCategories  int64
			lowStockProducts int64
		)

		g, ctx := errgroup.WithContext(c.Request.Context())
		g.Go(func() (err error) {
			totalProducts, err = a.Products.Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			activeProducts, err = a.Products.CountActive(ctx)
			return err
		})
		g.Go(func() (err error) {
			totalCategories, err = a.Categories.Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			lowStockProducts, err = a.Products.CountLowStock(ctx)
			return err
		})

		if err := g.Wait(); err != nil {
			a.Log.Error("dashboard stats failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to compute stats", err)
			return
		}

		respondOK(c, http.StatusOK, "stats retrieved", gin.H{
			"totalProducts":    totalProducts,
			"activeProducts":   activeProducts,
			"totalCategories":  totalCategories,
			"lowStockProducts": lowStockProducts,
		})
	}
}
