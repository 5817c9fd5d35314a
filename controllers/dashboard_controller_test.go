package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nivelle/aromabackend/models"
)

func TestDashboardStats(t *testing.T) {
	cat := seedCategory()

	active := seedProduct(cat)

	inactive := seedProduct(cat)
	inactive.Id = bson.NewObjectID()
	inactive.Slug = "velvet-iris"
	inactive.IsActive = false

	// quantity equal to the threshold counts as low stock
	atThreshold := seedProduct(cat)
	atThreshold.Id = bson.NewObjectID()
	atThreshold.Slug = "citrus-morning"
	atThreshold.Inventory = models.Inventory{Quantity: 5, LowStockThreshold: 5, TrackQuantity: true}

	justAbove := seedProduct(cat)
	justAbove.Id = bson.NewObjectID()
	justAbove.Slug = "amber-musk"
	justAbove.Inventory = models.Inventory{Quantity: 6, LowStockThreshold: 5, TrackQuantity: true}

	f := newFixture(t,
		[]models.Category{cat},
		[]models.Product{active, inactive, atThreshold, justAbove},
	)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard/stats", nil)
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	var stats struct {
		TotalProducts    int64 `json:"totalProducts"`
		ActiveProducts   int64 `json:"activeProducts"`
		TotalCategories  int64 `json:"totalCategories"`
		LowStockProducts int64 `json:"lowStockProducts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))

	assert.EqualValues(t, 4, stats.TotalProducts)
	assert.EqualValues(t, 3, stats.ActiveProducts)
	assert.EqualValues(t, 1, stats.TotalCategories)
	assert.EqualValues(t, 1, stats.LowStockProducts)
}

func TestDashboardStats_Empty(t *testing.T) {
	f := newFixture(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard/stats", nil)
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var stats map[string]int64
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	for key, v := range stats {
		assert.Zero(t, v, key)
	}
}
