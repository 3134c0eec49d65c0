//go:build unit

package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-wiki-api/internal/config"
	"go-wiki-api/internal/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(config.LogConfig{Level: "info", Format: "json"}, &buf)

	r := chi.NewRouter()
	r.Use(chimw.RequestID, RequestLogger(log))
	r.Get("/v1/wiki/tag/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/v1/wiki/tag/{id}", "418"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/wiki/tag/vendor", nil))
	require.Equal(t, http.StatusTeapot, rr.Code)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Request handled", line["message"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/v1/wiki/tag/vendor", line["path"])
	assert.Equal(t, float64(418), line["status"])
	assert.Equal(t, float64(5), line["bytes"])
	assert.NotEmpty(t, line["request_id"])

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/v1/wiki/tag/{id}", "418"))
	assert.Equal(t, before+1, after)
}
