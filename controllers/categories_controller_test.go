package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nivelle/aromabackend/models"
)

func postJSON(f *fixture, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return f.do(req)
}

func TestCreateCategory_SlugGeneratedFromName(t *testing.T) {
	f := newFixture(t, nil, nil)

	w := postJSON(f, "/admin/categories", `{"name":"Eau de Parfum"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope(t, w)
	var created models.Category
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "eau-de-parfum", created.Slug)
	assert.True(t, created.IsActive, "active by default")
}

func TestCreateCategory_DuplicateSlug(t *testing.T) {
	f := newFixture(t, []models.Category{seedCategory()}, nil)

	w := postJSON(f, "/admin/categories", `{"name":"Eau de Parfum"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateCategory_MissingName(t *testing.T) {
	f := newFixture(t, nil, nil)

	w := postJSON(f, "/admin/categories", `{"description":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCategory_ByIDAndBySlug(t *testing.T) {
	cat := seedCategory()
	f := newFixture(t, []models.Category{cat}, nil)

	for _, path := range []string{
		"/categories/" + cat.Id.Hex(),
		"/categories/slug/" + cat.Slug,
	} {
		w := f.do(httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)

		env := decodeEnvelope(t, w)
		var got models.Category
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, cat.Id, got.Id)
	}

	w := f.do(httptest.NewRequest(http.MethodGet, "/categories/slug/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateCategory_PartialAndEmpty(t *testing.T) {
	cat := seedCategory()
	f := newFixture(t, []models.Category{cat}, nil)

	req := httptest.NewRequest(http.MethodPut, "/admin/categories/"+cat.Id.Hex(),
		strings.NewReader(`{"isActive":false}`))
	req.Header.Set("Content-Type", "application/json")
	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var updated models.Category
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.False(t, updated.IsActive)
	assert.Equal(t, cat.Name, updated.Name)
	assert.Equal(t, cat.Slug, updated.Slug)

	req = httptest.NewRequest(http.MethodPut, "/admin/categories/"+cat.Id.Hex(),
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)
}

func TestDeleteCategory_NoCascade(t *testing.T) {
	cat := seedCategory()
	p := seedProduct(cat)
	f := newFixture(t, []models.Category{cat}, []models.Product{p})

	w := f.do(httptest.NewRequest(http.MethodDelete, "/admin/categories/"+cat.Id.Hex(), nil))
	require.Equal(t, http.StatusOK, w.Code)

	// the product survives with a dangling category reference
	w = f.do(httptest.NewRequest(http.MethodGet, "/admin/products/"+p.Id.Hex(), nil))
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	var view ProductView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Nil(t, view.Category)

	w = f.do(httptest.NewRequest(http.MethodDelete, "/admin/categories/"+bson.NewObjectID().Hex(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
