// Package httpapi mounts the contact form API on a Gin engine: the middleware
// chain (tracing, request ids, redacted access logs, recovery, metrics,
// visitor identity, idempotency, rate limits, compression, CORS, security
// headers) followed by the catalog, submission, review and visit routes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-contact-backend/docs"
	"github.com/tbourn/go-contact-backend/internal/config"
	"github.com/tbourn/go-contact-backend/internal/domain"
	"github.com/tbourn/go-contact-backend/internal/http/handlers"
	"github.com/tbourn/go-contact-backend/internal/http/middleware"
	"github.com/tbourn/go-contact-backend/internal/repo"
	"github.com/tbourn/go-contact-backend/internal/services"
)

// maxBodyBytes caps every request body; a contact form is a few hundred bytes.
const maxBodyBytes = 64 << 10

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsAllow   = []string{"Origin", "Content-Type", "Accept", middleware.HeaderClientID, middleware.HeaderIdempotencyKey, "If-None-Match"}
	corsExpose  = []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed", "Retry-After"}
)

// repoStore satisfies services.StorageRepo with the repo package functions.
type repoStore struct{}

func (repoStore) GetItem(ctx context.Context, db *gorm.DB, ns, key string) (string, error) {
	return repo.GetItem(ctx, db, ns, key)
}

func (repoStore) SetItem(ctx context.Context, db *gorm.DB, ns, key, value string) error {
	return repo.SetItem(ctx, db, ns, key, value)
}

func (repoStore) RemoveItem(ctx context.Context, db *gorm.DB, ns, key string) error {
	return repo.RemoveItem(ctx, db, ns, key)
}

// StorageRepo returns the database-backed store used by the router and CLI.
func StorageRepo() services.StorageRepo { return repoStore{} }

// NewServices builds the submission and review services from cfg.
func NewServices(db *gorm.DB, catalog domain.Catalog, cfg config.Config) (*services.SubmissionService, *services.ReviewService) {
	store := StorageRepo()
	subs := services.NewSubmissionService(db, store, catalog, services.SubmissionOptions{
		StorageKey:     cfg.StorageKey,
		MaxSubmissions: cfg.Site.MaxSubmissions,
		ContactEmail:   cfg.Site.ContactEmail,
	})
	return subs, services.NewReviewService(db, store, cfg.ReviewCounterKey)
}

// RegisterRoutes installs the middleware chain and every endpoint on r.
//
// Order:
//  1. otelgin, RequestID, RedactingLogger, Recovery
//  2. body limit and Prometheus metrics
//  3. ClientIdentity, then idempotency ahead of the rate limiter so that a
//     replayed submit is not charged against the visitor's budget
//  4. gzip, CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, catalog domain.Catalog, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(
		otelgin.Middleware(cfg.OTEL.ServiceName),
		middleware.RequestID(),
		middleware.RedactingLogger(middleware.RedactOptions{
			MaskHeaders: []string{"X-API-Key"},
			// Review answers travel in the query string.
			MaskQuery: []string{"userName", "writtenReview"},
		}),
		middleware.Recovery(),
		limitBody(maxBodyBytes),
		middleware.Metrics(),
	)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(
		middleware.ClientIdentity(),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{
			MaxLen: 200,
			Scope:  handlers.IdempotencyScope,
		}, idempotencyLookup(db)),
		middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClient(),
			middleware.WithWriteBudget(cfg.SubmitRPS, cfg.SubmitBurst)).Handler(),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
	)
	r.Use(corsChain(cfg.CORS.AllowedOrigins)...)

	// CSP goes on the JSON API only so the Swagger UI keeps its scripts.
	apiPrefix := cfg.APIBasePath
	if apiPrefix == "/" {
		apiPrefix = ""
	}
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
		APIPrefix:    apiPrefix,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	subSvc, revSvc := NewServices(db, catalog, cfg)
	h := handlers.New(subSvc, revSvc)
	h.Visits = services.NewVisitService(db, StorageRepo(), cfg.Site.CompanyName)
	if cfg.IdempotencyTTL > 0 {
		h.IdempotencyTTL = cfg.IdempotencyTTL
	}

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.GET("/services", h.ListServices)
	api.GET("/reviews/summary", h.ReviewSummary)
	api.GET("/visits", middleware.NoStore(), h.RecordVisit)

	subs := api.Group("/submissions", middleware.NoStore())
	subs.POST("", h.CreateSubmission)
	subs.GET("", h.ListSubmissions)
	subs.DELETE("", h.ClearSubmissions)
	subs.POST("/validate", h.ValidateField)
	subs.GET("/stats", h.SubmissionStats)
	subs.GET("/capacity", h.SubmissionCapacity)
	subs.GET("/:id", h.GetSubmission)
}

// idempotencyLookup reports stored submits; a missing record is not an error.
func idempotencyLookup(db *gorm.DB) middleware.IdempotencyLookup {
	return func(ctx context.Context, clientID, scope, key string, now time.Time) (bool, error) {
		_, err := repo.GetIdempotency(ctx, db, clientID, scope, key, now)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, repo.ErrNotFound):
			return false, nil
		default:
			return false, err
		}
	}
}

// corsChain allows every origin when none are configured; otherwise it echoes
// allowlisted origins even on simple requests that cors.New would skip.
func corsChain(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:  corsMethods,
		AllowHeaders:  corsAllow,
		ExposeHeaders: corsExpose,
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); allowed[origin] {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Add("Vary", "Origin")
			}
			c.Next()
		},
		cors.New(base),
	}
}

func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
