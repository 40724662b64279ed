package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ignitionAdapters/internal/adapter"
	"ignitionAdapters/internal/bins"
	"ignitionAdapters/internal/storage"
	"ignitionAdapters/internal/tickmath"
)

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// TickToSpot handles GET /v1/caviarnine/spot?tick=.
func (h *Handler) TickToSpot(c *gin.Context) {
	tick, err := h.validator.Tick(c.Query("tick"))
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	spot, ok := tickmath.TickToSpot(tick)
	if !ok {
		h.fail(c, http.StatusUnprocessableEntity, errors.New("tick has no spot price"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"tick": tick, "spot": spot})
}

// SpotToTick handles GET /v1/caviarnine/tick?spot=.
func (h *Handler) SpotToTick(c *gin.Context) {
	spot, err := h.validator.Spot(c.Query("spot"))
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	tick, ok := tickmath.SpotToTick(spot)
	if !ok {
		h.fail(c, http.StatusUnprocessableEntity, errors.New("spot price has no tick"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"spot": spot, "tick": tick, "in_range": tick <= tickmath.MaxTick})
}

// SelectBins handles GET /v1/bins?active=&span=&count=.
func (h *Handler) SelectBins(c *gin.Context) {
	active, span, count, err := h.validator.BinQuery(c.Query("active"), c.Query("span"), c.Query("count"))
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, bins.Select(active, span, count))
}

// Blueprints handles GET /v1/blueprints.
func (h *Handler) Blueprints(c *gin.Context) {
	names := []string{}
	if h.registry != nil {
		names = h.registry.Blueprints()
	}
	c.JSON(http.StatusOK, gin.H{"blueprints": names})
}

// PoolPrice handles GET /v1/pools/:blueprint/:pool/price.
func (h *Handler) PoolPrice(c *gin.Context) {
	poolAdapter, pool, ok := h.resolvePool(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	price, err := poolAdapter.Price(ctx, pool)
	if err != nil {
		h.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, price)
}

// PoolWindow handles GET /v1/pools/:blueprint/:pool/window?count=.
func (h *Handler) PoolWindow(c *gin.Context) {
	count, err := h.validator.Count(c.Query("count"))
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	poolAdapter, pool, ok := h.resolvePool(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	window, err := poolAdapter.LiquidityWindow(ctx, pool, count)
	if err != nil {
		h.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, window)
}

func (h *Handler) resolvePool(c *gin.Context) (adapter.PoolAdapter, string, bool) {
	blueprint, err := h.validator.PathSegment("blueprint", c.Param("blueprint"))
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return nil, "", false
	}
	pool, err := h.validator.PathSegment("pool", c.Param("pool"))
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return nil, "", false
	}
	if h.registry == nil {
		h.fail(c, http.StatusNotFound, adapter.ErrUnknownBlueprint)
		return nil, "", false
	}
	poolAdapter, err := h.registry.Lookup(blueprint)
	if err != nil {
		h.fail(c, statusFor(err), err)
		return nil, "", false
	}
	return poolAdapter, pool, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, adapter.ErrUnknownBlueprint), errors.Is(err, storage.ErrPoolNotFound):
		return http.StatusNotFound
	case errors.Is(err, adapter.ErrNoActiveTick), errors.Is(err, adapter.ErrPriceUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		h.logger.Warn("request failed", zap.String("request_id", requestID(c)), zap.Int("status", status), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, errorBody(c, err.Error()))
}

func errorBody(c *gin.Context, message string) gin.H {
	return gin.H{"error": message, "request_id": requestID(c)}
}
