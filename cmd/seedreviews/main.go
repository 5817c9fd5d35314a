// Command seedreviews tops up review data for every active product and
// recomputes the denormalized rating aggregates. Maintenance utility, not
// part of the service.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nivelle/aromabackend/database"
	"github.com/nivelle/aromabackend/logger"
	"github.com/nivelle/aromabackend/seed"
	"github.com/nivelle/aromabackend/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	zlog := logger.NewWithDefaults()
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	products := store.NewMongoProductStore(database.OpenCollection("products"))
	reviews := store.NewMongoReviewStore(database.OpenCollection("reviews"))

	inserted, err := seed.Reviews(ctx, products, reviews, zlog, seed.Options{})
	if err != nil {
		zlog.Fatal("seeding failed", zap.Int("inserted", inserted), zap.Error(err))
	}

	zlog.Info("seeding complete", zap.Int("inserted", inserted))
}
