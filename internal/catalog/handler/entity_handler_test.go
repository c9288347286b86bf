package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medinfo-backend/internal/catalog"
	"medinfo-backend/internal/docstore"
)

// memStore is a minimal in-memory docstore.Store for routing tests.
type memStore struct {
	docs map[string][]*docstore.Document
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]*docstore.Document)}
}

func (s *memStore) Create(_ context.Context, doc *docstore.Document) (*docstore.Document, error) {
	cp := *doc
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	s.docs[cp.Collection] = append(s.docs[cp.Collection], &cp)
	return &cp, nil
}

func (s *memStore) FindByID(_ context.Context, collection string, id uuid.UUID) (*docstore.Document, error) {
	for _, doc := range s.docs[collection] {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, docstore.ErrNotFound
}

func (s *memStore) FindOne(_ context.Context, collection string, _ map[string]string) (*docstore.Document, error) {
	if docs := s.docs[collection]; len(docs) > 0 {
		return docs[0], nil
	}
	return nil, docstore.ErrNotFound
}

func (s *memStore) Find(_ context.Context, collection string, q docstore.Query) ([]*docstore.Document, error) {
	docs := s.docs[collection]
	out := make([]*docstore.Document, 0, len(docs))
	for i := len(docs) - 1; i >= 0; i-- {
		out = append(out, docs[i])
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *memStore) UpdateByID(_ context.Context, collection string, id uuid.UUID, fields map[string]interface{}, isActive *bool) (*docstore.Document, error) {
	for _, doc := range s.docs[collection] {
		if doc.ID == id {
			for k, v := range fields {
				doc.Fields[k] = v
			}
			if isActive != nil {
				doc.IsActive = *isActive
			}
			return doc, nil
		}
	}
	return nil, docstore.ErrNotFound
}

func (s *memStore) DeleteByID(_ context.Context, collection string, id uuid.UUID) error {
	docs := s.docs[collection]
	for i, doc := range docs {
		if doc.ID == id {
			s.docs[collection] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return docstore.ErrNotFound
}

func (s *memStore) Count(_ context.Context, collection string, _ map[string]string) (int, error) {
	return len(s.docs[collection]), nil
}

type nopObjects struct{}

func (nopObjects) UploadImage(context.Context, []byte, string) (string, error) {
	return "http://objects.test/medinfo/x/1.jpeg", nil
}
func (nopObjects) UploadFile(context.Context, []byte, string, string) (string, error) {
	return "http://objects.test/medinfo/x/1.pdf", nil
}
func (nopObjects) Delete(context.Context, string) error { return nil }

func passthrough(c *gin.Context) { c.Next() }

func setupEntityRouter(t *testing.T, entity string) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var schema catalog.Schema
	for _, s := range catalog.Registry() {
		if s.Name == entity {
			schema = s
		}
	}
	require.NotEmpty(t, schema.Name)

	store := newMemStore()
	svc := catalog.NewService(schema, store, nopObjects{}, nil, nil)

	router := gin.New()
	api := router.Group("/api")
	NewEntityHandler(svc).RegisterRoutes(api, passthrough, passthrough)
	return router, store
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestCreateReturnsEnvelope(t *testing.T) {
	router, store := setupEntityRouter(t, "Banner")

	body, contentType := multipartBody(t, map[string]string{
		"title": "Summer campaign",
		"link":  "https://example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/banner/create", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "Banner created successfully", env["message"])

	data := env["data"].(map[string]interface{})
	assert.Equal(t, "Summer campaign", data["title"])
	assert.NotEmpty(t, data["id"])

	require.Len(t, store.docs["banners"], 1)
}

func TestCreateValidationFailureIs400(t *testing.T) {
	router, store := setupEntityRouter(t, "Banner")

	body, contentType := multipartBody(t, map[string]string{"link": "https://example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/banner/create", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "title is required", env["message"])
	assert.Nil(t, env["data"])
	assert.Empty(t, store.docs["banners"])
}

func TestCreateDecodesListFields(t *testing.T) {
	router, store := setupEntityRouter(t, "Brand")

	body, contentType := multipartBody(t, map[string]string{
		"name":            "Napa",
		"productType":     "Tablet",
		"generic":         uuid.New().String(),
		"manufacturer":    uuid.New().String(),
		"alternateBrands": `["Ace", "Fast"]`,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/brand/create", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	stored := store.docs["brands"][0]
	assert.Equal(t, []string{"Ace", "Fast"}, stored.Fields["alternateBrands"])
}

func TestCreateAcceptsJSONBody(t *testing.T) {
	router, _ := setupEntityRouter(t, "Generic")

	req := httptest.NewRequest(http.MethodPost, "/api/generic/create",
		strings.NewReader(`{"name": "Paracetamol", "category": "Allopathic"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGetAllReturnsListEnvelope(t *testing.T) {
	router, _ := setupEntityRouter(t, "Generic")

	for _, payload := range []string{
		`{"name": "Paracetamol"}`,
		`{"name": "Omeprazole"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/generic/create", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/generic/getAll", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	data := env["data"].([]interface{})
	assert.Len(t, data, 2)
}

func TestGetByIDUnknownIs404(t *testing.T) {
	router, _ := setupEntityRouter(t, "Banner")

	req := httptest.NewRequest(http.MethodGet, "/api/banner/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, false, env["success"])
}

func TestDeleteMalformedIDIs400(t *testing.T) {
	router, _ := setupEntityRouter(t, "Banner")

	req := httptest.NewRequest(http.MethodDelete, "/api/banner/delete/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptionsRouteOnlyWhereDeclared(t *testing.T) {
	router, _ := setupEntityRouter(t, "Pharmaceutical")

	req := httptest.NewRequest(http.MethodPost, "/api/pharmaceutical/create",
		strings.NewReader(`{"name": "Beximco"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/pharmaceutical/options", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	data := env["data"].([]interface{})
	require.Len(t, data, 1)
	opt := data[0].(map[string]interface{})
	assert.Equal(t, "Beximco", opt["name"])
}
