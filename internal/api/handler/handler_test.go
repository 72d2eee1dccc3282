package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embercortex/embercortex/internal/api/handler"
	"github.com/embercortex/embercortex/internal/repository/sqlite"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	return response
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	response := decodeResponse(t, rec)
	assert.Equal(t, true, response["success"])

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", data["status"])
}

func TestReadyCheck(t *testing.T) {
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil)
	rec := httptest.NewRecorder()

	handler.ReadyCheck(db)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	response := decodeResponse(t, rec)
	assert.Equal(t, true, response["success"])
}

func TestSettingHandler(t *testing.T) {
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()

	h := handler.NewSettingHandler(sqlite.NewSettingRepository(db))

	r := chi.NewRouter()
	r.Get("/settings/{key}", h.Get)
	r.Put("/settings/{key}", h.Set)

	t.Run("get missing key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/settings/theme", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("set then get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/settings/theme", strings.NewReader(`"dark"`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/settings/theme", nil)
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		response := decodeResponse(t, rec)
		data, ok := response["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "theme", data["key"])
		assert.Equal(t, "dark", data["value"])
	})

	t.Run("rejects invalid json value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/settings/theme", strings.NewReader(`not json`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
