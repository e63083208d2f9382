package handler

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studentattendance/internal/httpmiddleware"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// EngineOptions configures the shared router of every service.
type EngineOptions struct {
	Service string
	Title   string
	Logger  *slog.Logger
	// Limiter is optional; nil disables rate limiting.
	Limiter httpmiddleware.Limiter
	// Checks are pinged by /healthz, keyed by the name reported back.
	Checks map[string]HealthChecker
}

// NewEngine builds a gin engine with the common middleware stack and the
// landing page, /healthz and /metrics routes. Callers register their API
// routes on the returned engine.
func NewEngine(opts EngineOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.SetHTMLTemplate(indexTemplate)

	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestID())
	r.Use(httpmiddleware.RequestLogger(logger, "/healthz", "/metrics"))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", httpmiddleware.RequestIDHeader},
		ExposeHeaders: []string{httpmiddleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.Metrics(opts.Service))
	if opts.Limiter != nil {
		r.Use(httpmiddleware.RateLimit(opts.Limiter, logger))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", healthz(opts.Checks))
	r.GET("/", func(c *gin.Context) {
		routes := r.Routes()
		sort.Slice(routes, func(i, j int) bool {
			if routes[i].Path == routes[j].Path {
				return routes[i].Method < routes[j].Method
			}
			return routes[i].Path < routes[j].Path
		})
		c.HTML(http.StatusOK, "index.html", gin.H{
			"Title":   opts.Title,
			"Service": opts.Service,
			"Routes":  routes,
		})
	})

	return r
}

func healthz(checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]bool, len(checks))
		for name, check := range checks {
			ok := check.Healthy(ctx)
			results[name] = ok
			if !ok {
				status = http.StatusServiceUnavailable
			}
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}
