package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"labparse/internal/handler"
	"labparse/internal/logging"
	"labparse/internal/middleware"
)

// Deps bundles what Setup needs. Observer and MetricsHandler are optional.
type Deps struct {
	Log            logging.Logger
	AllowedOrigins []string
	Observer       middleware.HTTPObserver
	MetricsHandler http.Handler
	ParseHandler   *handler.ParseHandler
	HealthHandler  *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(d Deps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Log, d.Observer))
	r.Use(middleware.CORS(d.AllowedOrigins))

	// Health checks
	r.GET("/healthz", d.HealthHandler.Liveness)
	r.GET("/readyz", d.HealthHandler.Readiness)
	if d.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/formats", d.ParseHandler.Formats)
	v1.POST("/parse", d.ParseHandler.Parse)
	v1.POST("/parse/export", d.ParseHandler.ParseExport)

	return r
}
