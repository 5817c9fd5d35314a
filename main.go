package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nivelle/aromabackend/controllers"
	"github.com/nivelle/aromabackend/database"
	"github.com/nivelle/aromabackend/logger"
	"github.com/nivelle/aromabackend/media"
	"github.com/nivelle/aromabackend/middleware"
	"github.com/nivelle/aromabackend/store"
	"github.com/nivelle/aromabackend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	zlog := logger.NewWithDefaults()
	defer zlog.Sync()

	ctx := context.Background()

	usersCol := database.OpenCollection("users")
	if err := utils.SeedAdminUser(ctx, usersCol, zlog); err != nil {
		zlog.Fatal("admin seeding failed", zap.Error(err))
	}

	mediaClient, err := media.NewR2Client(ctx)
	if err != nil {
		zlog.Fatal("media client init failed", zap.Error(err))
	}

	app := &controllers.App{
		Products:   store.NewMongoProductStore(database.OpenCollection("products")),
		Categories: store.NewMongoCategoryStore(database.OpenCollection("categories")),
		Reviews:    store.NewMongoReviewStore(database.OpenCollection("reviews")),
		Media:      mediaClient,
		Cleaner:    media.NewCleaner(mediaClient, zlog),
		Validator:  utils.NewImageValidator(),
		Log:        zlog,
	}

	r := gin.New()

	origins := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	zlog.Info("configured CORS", zap.Int("origins", len(allowedOrigins)))

	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/auth/login", controllers.Login())
	r.POST("/auth/refresh", controllers.Refresh())
	r.POST("/auth/logout", controllers.Logout())

	r.GET("/products", app.ListProducts())
	r.GET("/products/:id", app.GetProduct())
	r.GET("/products/:id/reviews", app.ListProductReviews())
	r.POST("/products/:id/reviews", app.CreateProductReview())
	r.GET("/categories", app.ListCategories())
	r.GET("/categories/:id", app.GetCategory())
	r.GET("/categories/slug/:slug", app.GetCategory())

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		admin.GET("/products", app.AdminListProducts())
		admin.GET("/products/:id", app.GetProduct())
		admin.POST("/products", app.CreateProduct())
		admin.PUT("/products/:id", app.UpdateProduct())
		admin.DELETE("/products/:id", app.DeleteProduct())

		admin.GET("/dashboard/stats", app.DashboardStats())

		admin.POST("/categories", app.CreateCategory())
		admin.PUT("/categories/:id", app.UpdateCategory())
		admin.DELETE("/categories/:id", app.DeleteCategory())

		admin.POST("/users", controllers.CreateUser())
		admin.POST("/users/me/password", controllers.ChangeMyPassword())
	}

	// Listens on 0.0.0.0:8080 unless PORT overrides it.
	if err := r.Run(); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
