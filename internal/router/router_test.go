package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labparse/internal/handler"
	"labparse/internal/metrics"
	"labparse/internal/router"
	"labparse/internal/service"
	"labparse/mocks"
)

func TestSetup_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := new(mocks.MockParseService)
	svc.On("Formats").Return([]service.FormatInfo{{Name: "universal", DisplayName: "Universal Fallback", Priority: 1000}})
	m, err := metrics.New("labparse")
	require.NoError(t, err)

	r := router.Setup(router.Deps{
		AllowedOrigins: []string{"http://localhost:3000"},
		Observer:       m,
		MetricsHandler: m.Handler(),
		ParseHandler:   handler.NewParseHandler(svc, 1<<20, 0.7, nil),
		HealthHandler:  handler.NewHealthHandler(svc),
	})

	for _, path := range []string{"/healthz", "/readyz", "/api/v1/formats"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(),
		`labparse_http_requests_total{method="GET",path="/api/v1/formats",status="200"} 1`))
}
