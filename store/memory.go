package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nivelle/aromabackend/models"
)

// In-memory store implementations backing handler tests and local
// experiments. Semantics mirror the Mongo implementations.

type MemoryProductStore struct {
	mu       sync.RWMutex
	products map[bson.ObjectID]models.Product
}

func NewMemoryProductStore(seed ...models.Product) *MemoryProductStore {
	s := &MemoryProductStore{products: make(map[bson.ObjectID]models.Product)}
	for _, p := range seed {
		if p.Id.IsZero() {
			p.Id = bson.NewObjectID()
		}
		s.products[p.Id] = p
	}
	return s
}

func matchesSearch(p models.Product, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

func (s *MemoryProductStore) matching(f ProductFilter) []models.Product {
	out := make([]models.Product, 0)
	for _, p := range s.products {
		if f.CategoryId != nil && p.CategoryId != *f.CategoryId {
			continue
		}
		if f.IsActive != nil && p.IsActive != *f.IsActive {
			continue
		}
		if !matchesSearch(p, f.Search) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.Slice(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortNewest:
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out
}

func (s *MemoryProductStore) List(_ context.Context, f ProductFilter) ([]models.Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.matching(f)
	total := int64(len(all))

	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if f.Limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *MemoryProductStore) GetByID(_ context.Context, id bson.ObjectID) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryProductStore) Insert(_ context.Context, p models.Product) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.Slug == p.Slug {
			return models.Product{}, ErrDuplicateSlug
		}
	}
	if p.Id.IsZero() {
		p.Id = bson.NewObjectID()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.products[p.Id] = p
	return p, nil
}

func (s *MemoryProductStore) Update(_ context.Context, id bson.ObjectID, u ProductUpdate) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}

	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Slug != nil {
		p.Slug = *u.Slug
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.DiscountPrice != nil {
		p.DiscountPrice = u.DiscountPrice
	}
	if u.CategoryId != nil {
		p.CategoryId = *u.CategoryId
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	if u.IsFeatured != nil {
		p.IsFeatured = *u.IsFeatured
	}
	if u.Quantity != nil {
		p.Inventory.Quantity = *u.Quantity
	}
	if u.LowStockThreshold != nil {
		p.Inventory.LowStockThreshold = *u.LowStockThreshold
	}
	if u.TrackQuantity != nil {
		p.Inventory.TrackQuantity = *u.TrackQuantity
	}
	if u.Tags != nil {
		p.Tags = *u.Tags
	}
	if u.Specifications != nil {
		p.Specifications = *u.Specifications
	}
	if u.ImageUrls != nil {
		p.ImageUrls = *u.ImageUrls
	}
	p.UpdatedAt = time.Now().UTC()

	s.products[id] = p
	return p, nil
}

func (s *MemoryProductStore) Delete(_ context.Context, id bson.ObjectID) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	delete(s.products, id)
	return p, nil
}

func (s *MemoryProductStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

func (s *MemoryProductStore) CountActive(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.products {
		if p.IsActive {
			n++
		}
	}
	return n, nil
}

func (s *MemoryProductStore) CountLowStock(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.products {
		if p.LowStock() {
			n++
		}
	}
	return n, nil
}

func (s *MemoryProductStore) ListActive(_ context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0)
	for _, p := range s.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryProductStore) SetRatingAggregates(_ context.Context, id bson.ObjectID, rating float64, reviewCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Rating = rating
	p.ReviewCount = reviewCount
	s.products[id] = p
	return nil
}

type MemoryCategoryStore struct {
	mu         sync.RWMutex
	categories map[bson.ObjectID]models.Category
}

func NewMemoryCategoryStore(seed ...models.Category) *MemoryCategoryStore {
	s := &MemoryCategoryStore{categories: make(map[bson.ObjectID]models.Category)}
	for _, c := range seed {
		if c.Id.IsZero() {
			c.Id = bson.NewObjectID()
		}
		s.categories[c.Id] = c
	}
	return s
}

func (s *MemoryCategoryStore) List(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryCategoryStore) GetByID(_ context.Context, id bson.ObjectID) (models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return models.Category{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryCategoryStore) GetBySlug(_ context.Context, slug string) (models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return models.Category{}, ErrNotFound
}

func (s *MemoryCategoryStore) Insert(_ context.Context, c models.Category) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Slug == c.Slug {
			return models.Category{}, ErrDuplicateSlug
		}
	}
	if c.Id.IsZero() {
		c.Id = bson.NewObjectID()
	}
	s.categories[c.Id] = c
	return c, nil
}

func (s *MemoryCategoryStore) Update(_ context.Context, id bson.ObjectID, u CategoryUpdate) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return models.Category{}, ErrNotFound
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Slug != nil {
		c.Slug = *u.Slug
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
	s.categories[id] = c
	return c, nil
}

func (s *MemoryCategoryStore) Delete(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *MemoryCategoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.categories)), nil
}

type MemoryReviewStore struct {
	mu      sync.RWMutex
	reviews []models.Review
}

func NewMemoryReviewStore(seed ...models.Review) *MemoryReviewStore {
	s := &MemoryReviewStore{}
	for _, r := range seed {
		if r.Id.IsZero() {
			r.Id = bson.NewObjectID()
		}
		s.reviews = append(s.reviews, r)
	}
	return s
}

func (s *MemoryReviewStore) Insert(_ context.Context, r models.Review) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Id.IsZero() {
		r.Id = bson.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.reviews = append(s.reviews, r)
	return r, nil
}

func (s *MemoryReviewStore) ListByProduct(_ context.Context, productID bson.ObjectID, page, limit int) ([]models.Review, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.Review, 0)
	for _, r := range s.reviews {
		if r.ProductId == productID {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *MemoryReviewStore) CountByProduct(_ context.Context, productID bson.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.reviews {
		if r.ProductId == productID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryReviewStore) Aggregate(_ context.Context, productID bson.ObjectID) (float64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum, count int64
	for _, r := range s.reviews {
		if r.ProductId == productID {
			sum += int64(r.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}
