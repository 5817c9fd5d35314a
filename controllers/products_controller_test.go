package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/nivelle/aromabackend/media"
	"github.com/nivelle/aromabackend/models"
	"github.com/nivelle/aromabackend/store"
	"github.com/nivelle/aromabackend/utils"
)

// fakeMedia records every upload and delete so tests can assert on
// media-service traffic.
type fakeMedia struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (f *fakeMedia) Upload(_ context.Context, objectName string, _ io.Reader, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, objectName)
	return "https://cdn.test/shop/" + objectName, nil
}

func (f *fakeMedia) Delete(_ context.Context, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, objectName)
	return nil
}

type fixture struct {
	app        *App
	router     *gin.Engine
	products   *store.MemoryProductStore
	categories *store.MemoryCategoryStore
	reviews    *store.MemoryReviewStore
	media      *fakeMedia
}

func newFixture(t *testing.T, cats []models.Category, prods []models.Product) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fm := &fakeMedia{}
	app := &App{
		Products:   store.NewMemoryProductStore(prods...),
		Categories: store.NewMemoryCategoryStore(cats...),
		Reviews:    store.NewMemoryReviewStore(),
		Media:      fm,
		Cleaner:    media.NewCleaner(fm, zap.NewNop()),
		Validator:  utils.NewImageValidator(),
		Log:        zap.NewNop(),
	}

	r := gin.New()
	r.GET("/products", app.ListProducts())
	r.GET("/products/:id/reviews", app.ListProductReviews())
	r.POST("/products/:id/reviews", app.CreateProductReview())
	r.GET("/admin/products", app.AdminListProducts())
	r.GET("/admin/products/:id", app.GetProduct())
	r.POST("/admin/products", app.CreateProduct())
	r.PUT("/admin/products/:id", app.UpdateProduct())
	r.DELETE("/admin/products/:id", app.DeleteProduct())
	r.GET("/admin/dashboard/stats", app.DashboardStats())
	r.GET("/categories", app.ListCategories())
	r.GET("/categories/:id", app.GetCategory())
	r.GET("/categories/slug/:slug", app.GetCategory())
	r.POST("/admin/categories", app.CreateCategory())
	r.PUT("/admin/categories/:id", app.UpdateCategory())
	r.DELETE("/admin/categories/:id", app.DeleteCategory())

	return &fixture{
		app:        app,
		router:     r,
		products:   app.Products.(*store.MemoryProductStore),
		categories: app.Categories.(*store.MemoryCategoryStore),
		reviews:    app.Reviews.(*store.MemoryReviewStore),
		media:      fm,
	}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var e testEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func multipartBody(t *testing.T, fields map[string]string, imageNames ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range imageNames {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		// real PNG signature so MIME sniffing passes, padded past the
		// validator's 512-byte read
		png := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 600)...)
		_, err = fw.Write(png)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func seedCategory() models.Category {
	return models.Category{
		Id:       bson.NewObjectID(),
		Name:     "Eau de Parfum",
		Slug:     "eau-de-parfum",
		IsActive: true,
	}
}

func seedProduct(cat models.Category) models.Product {
	return models.Product{
		Id:          bson.NewObjectID(),
		Name:        "Velvet Santal",
		Slug:        "velvet-santal",
		Description: "Creamy sandalwood with a peppery edge.",
		Price:       89.00,
		CategoryId:  cat.Id,
		IsActive:    true,
		ImageUrls:   []string{"https://cdn.test/shop/products/velvet-santal/1.png"},
		Tags:        []string{"woody", "unisex"},
		Inventory:   models.Inventory{Quantity: 20, LowStockThreshold: 5, TrackQuantity: true},
	}
}

func TestCreateProduct_MissingRequiredField(t *testing.T) {
	cat := seedCategory()
	f := newFixture(t, []models.Category{cat}, nil)

	body, ct := multipartBody(t, map[string]string{
		"name":        "Rose Oud",
		"description": "A rich rose",
		// price missing
		"category": cat.Id.Hex(),
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/products", body)
	req.Header.Set("Content-Type", ct)

	w := f.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	count, _ := f.products.Count(context.Background())
	assert.Zero(t, count, "nothing may be persisted")
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	f := newFixture(t, nil, nil)

	body, ct := multipartBody(t, map[string]string{
		"name":        "Rose Oud",
		"description": "A rich rose",
		"price":       "129.90",
		"category":    bson.NewObjectID().Hex(),
	}, "rose.png")
	req := httptest.NewRequest(http.MethodPost, "/admin/products", body)
	req.Header.Set("Content-Type", ct)

	w := f.do(req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	count, _ := f.products.Count(context.Background())
	assert.Zero(t, count)
	assert.Empty(t, f.media.uploaded, "no upload before the category resolves")
}

func TestCreateProduct_SlugAndDefaults(t *testing.T) {
	cat := seedCategory()
	f := newFixture(t, []models.Category{cat}, nil)

	body, ct := multipartBody(t, map[string]string{
		"name":        "Rose Oud",
		"description": "A rich rose over smoky oud",
		"price":       "129.90",
		"category":    cat.Id.Hex(),
		"tags":        "oud, rose",
	}, "rose.png")
	req := httptest.NewRequest(http.MethodPost, "/admin/products", body)
	req.Header.Set("Content-Type", ct)

	w := f.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var created ProductView
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "rose-oud", created.Slug)
	assert.True(t, created.IsActive, "active by default")
	assert.Equal(t, []string{"oud", "rose"}, created.Tags)
	require.NotNil(t, created.Category)
	assert.Equal(t, cat.Slug, created.Category.Slug)
	require.Len(t, created.ImageUrls, 1)
	assert.Len(t, f.media.uploaded, 1)
}

func TestUpdateProduct_PriceOnlyLeavesEverythingElse(t *testing.T) {
	cat := seedCategory()
	p := seedProduct(cat)
	f := newFixture(t, []models.Category{cat}, []models.Product{p})

	req := httptest.NewRequest(http.MethodPut, "/admin/products/"+p.Id.Hex(),
		strings.NewReader(url.Values{"price": {"499.99"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := f.products.GetByID(context.Background(), p.Id)
	require.NoError(t, err)
	assert.Equal(t, 499.99, stored.Price)
	assert.Equal(t, p.Name, stored.Name)
	assert.Equal(t, p.Slug, stored.Slug)
	assert.Equal(t, p.ImageUrls, stored.ImageUrls)
	assert.Equal(t, p.Tags, stored.Tags)
	assert.Equal(t, p.Inventory, stored.Inventory)
	assert.Empty(t, f.media.deleted)
}

func TestUpdateProduct_StockOnlyPreservesThreshold(t *testing.T) {
	cat := seedCategory()
	p := seedProduct(cat)
	f := newFixture(t, []models.Category{cat}, []models.Product{p})

	req := httptest.NewRequest(http.MethodPut, "/admin/products/"+p.Id.Hex(),
		strings.NewReader(url.Values{"stock": {"10"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := f.products.GetByID(context.Background(), p.Id)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Inventory.Quantity)
	assert.Equal(t, 5, stored.Inventory.LowStockThreshold)
	assert.True(t, stored.Inventory.TrackQuantity)
}

func TestUpdateProduct_RemovedImagesAreOwnedOnly(t *testing.T) {
	t.Setenv("R2_PUBLIC_DOMAIN", "")
	cat := seedCategory()
	p := seedProduct(cat)
	f := newFixture(t, []models.Category{cat}, []models.Product{p})

	removed := []string{
		p.ImageUrls[0],
		"https://cdn.test/shop/products/other/stolen.png", // not owned
	}
	payload, _ := json.Marshal(removed)

	req := httptest.NewRequest(http.MethodPut, "/admin/products/"+p.Id.Hex(),
		strings.NewReader(url.Values{"removedImages": {string(payload)}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := f.products.GetByID(context.Background(), p.Id)
	require.NoError(t, err)
	assert.Empty(t, stored.ImageUrls)

	require.Len(t, f.media.deleted, 1, "only the owned url is deleted")
	assert.Equal(t, "shop/products/velvet-santal/1.png", f.media.deleted[0])
}

func TestUpdateProduct_RenameRegeneratesSlug(t *testing.T) {
	cat := seedCategory()
	p := seedProduct(cat)
	f := newFixture(t, []models.Category{cat}, []models.Product{p})

	req := httptest.NewRequest(http.MethodPut, "/admin/products/"+p.Id.Hex(),
		strings.NewReader(url.Values{"name": {"Néroli Dawn"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := f.products.GetByID(context.Background(), p.Id)
	require.NoError(t, err)
	assert.Equal(t, "Néroli Dawn", stored.Name)
	assert.Equal(t, "neroli-dawn", stored.Slug)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	f := newFixture(t, nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/admin/products/"+bson.NewObjectID().Hex(),
		strings.NewReader(url.Values{"price": {"1"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := f.do(req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProduct_NotFoundTouchesNoMedia(t *testing.T) {
	f := newFixture(t, nil, nil)

	req := httptest.NewRequest(http.MethodDelete, "/admin/products/"+bson.NewObjectID().Hex(), nil)
	w := f.do(req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, f.media.deleted, "no media-service calls for a missing product")
}

func TestDeleteProduct_RemovesRecordAndImages(t *testing.T) {
	cat := seedCategory()
	p := seedProduct(cat)
	f := newFixture(t, []models.Category{cat}, []models.Product{p})

	req := httptest.NewRequest(http.MethodDelete, "/admin/products/"+p.Id.Hex(), nil)
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := f.products.GetByID(context.Background(), p.Id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Len(t, f.media.deleted, len(p.ImageUrls))
}

func TestAdminListProducts_StatusAndSearch(t *testing.T) {
	cat := seedCategory()
	active := seedProduct(cat)
	inactive := seedProduct(cat)
	inactive.Id = bson.NewObjectID()
	inactive.Name = "Velvet Iris"
	inactive.Slug = "velvet-iris"
	inactive.IsActive = false
	other := seedProduct(cat)
	other.Id = bson.NewObjectID()
	other.Name = "Citrus Morning"
	other.Slug = "citrus-morning"
	other.Description = "Bright bergamot."

	f := newFixture(t, []models.Category{cat}, []models.Product{active, inactive, other})

	listNames := func(query string) []string {
		req := httptest.NewRequest(http.MethodGet, "/admin/products"+query, nil)
		w := f.do(req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		env := decodeEnvelope(t, w)
		var data struct {
			Items []ProductView `json:"items"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		names := make([]string, 0, len(data.Items))
		for _, item := range data.Items {
			names = append(names, item.Name)
		}
		return names
	}

	assert.ElementsMatch(t, []string{"Velvet Santal", "Citrus Morning"}, listNames("?status=active"))
	assert.ElementsMatch(t, []string{"Velvet Iris"}, listNames("?status=inactive"))
	assert.ElementsMatch(t, []string{"Velvet Santal"}, listNames("?status=active&search=velvet"))
	assert.ElementsMatch(t, []string{"Citrus Morning"}, listNames("?search=bergamot"), "search also matches description")

	req := httptest.NewRequest(http.MethodGet, "/admin/products?status=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)
}

func TestListProducts_PublicIsActiveOnly(t *testing.T) {
	cat := seedCategory()
	active := seedProduct(cat)
	inactive := seedProduct(cat)
	inactive.Id = bson.NewObjectID()
	inactive.Name = "Velvet Iris"
	inactive.Slug = "velvet-iris"
	inactive.IsActive = false

	f := newFixture(t, []models.Category{cat}, []models.Product{active, inactive})

	list := func(query string) (items []ProductView, total int64) {
		w := f.do(httptest.NewRequest(http.MethodGet, "/products"+query, nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		env := decodeEnvelope(t, w)
		var data struct {
			Items []ProductView `json:"items"`
			Total int64         `json:"total"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		return data.Items, data.Total
	}

	items, total := list("")
	require.Len(t, items, 1)
	assert.Equal(t, "Velvet Santal", items[0].Name)
	assert.EqualValues(t, 1, total)

	items, _ = list("?category=" + cat.Slug)
	assert.Len(t, items, 1)

	// unknown category slug lists nothing instead of erroring
	items, total = list("?category=no-such-slug")
	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newFixture(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/products/"+bson.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, f.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/products/not-a-hex-id", nil)
	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)
}
