package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/harentsoaR/medisync-api/internal/metrics"
)

func TestMetricsAndRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewNop()

	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()), Metrics(m))
	r.GET("/appointment/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/appointment/42", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/appointment/43", nil)
	req.Header.Set(HeaderXRequestID, "fixed-id")
	r.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get(HeaderXRequestID))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestTotal.WithLabelValues(http.MethodGet, "/appointment/:id", "200")))
}
