package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ignitionAdapters/internal/adapter"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBinCount  = 200
	ServiceName         = "ignition-adapters"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// AdapterRegistry resolves a blueprint name to its pool adapter.
type AdapterRegistry interface {
	Lookup(blueprint string) (adapter.PoolAdapter, error)
	Blueprints() []string
}

// Handler serves the read-only HTTP surface over the tick math and adapters.
type Handler struct {
	registry  AdapterRegistry
	validator *Validator
	timeout   time.Duration
	logger    *zap.Logger
}

// Options tunes a Handler. Zero values fall back to defaults.
type Options struct {
	Timeout     time.Duration
	MaxBinCount uint32
}

// NewHandler builds a Handler. registry may be nil when only the math
// endpoints are served.
func NewHandler(registry AdapterRegistry, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBinCount == 0 {
		opts.MaxBinCount = DefaultMaxBinCount
	}
	return &Handler{
		registry:  registry,
		validator: NewValidator(opts.MaxBinCount),
		timeout:   opts.Timeout,
		logger:    logger,
	}
}

// Routes configures all API routes.
func (h *Handler) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(zapLoggerMiddleware(h.logger))
	router.Use(zapRecoveryMiddleware(h.logger))

	router.GET("/health", h.Health)

	v1 := router.Group("/v1")
	v1.GET("/caviarnine/spot", h.TickToSpot)
	v1.GET("/caviarnine/tick", h.SpotToTick)
	v1.GET("/bins", h.SelectBins)
	v1.GET("/blueprints", h.Blueprints)
	v1.GET("/pools/:blueprint/:pool/price", h.PoolPrice)
	v1.GET("/pools/:blueprint/:pool/window", h.PoolWindow)

	return router
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}
