package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/cart"
	"pcshop-storefront/internal/catalog"
	"pcshop-storefront/internal/events"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/middleware"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/pricing"
)

const eventsKeepAlive = 25 * time.Second

// CartHandler handles cart-related requests
type CartHandler struct {
	view    *cart.View
	catalog *catalog.Catalog
	bus     events.Bus
}

func NewCartHandler(view *cart.View, cat *catalog.Catalog, bus events.Bus) *CartHandler {
	return &CartHandler{view: view, catalog: cat, bus: bus}
}

type cartResponse struct {
	Items    []models.CartLine `json:"items"`
	Count    int               `json:"count"`
	Subtotal string            `json:"subtotal"`
	Notice   string            `json:"notice,omitempty"`
}

// GetCart returns the current cart contents. Visitors without a session
// see an empty cart.
func (h *CartHandler) GetCart(c *gin.Context) {
	lines, err := h.view.Fetch(c.Request.Context(), middleware.GetManager(c))
	resp := cartResponse{
		Items:    lines,
		Count:    len(lines),
		Subtotal: pricing.Display(pricing.Subtotal(lines)),
	}
	if err != nil {
		_ = c.Error(err)
		resp.Notice = apperr.Notice(err)
	}
	c.JSON(http.StatusOK, resp)
}

// GetCartCount returns the number of cart lines for the navbar badge.
func (h *CartHandler) GetCartCount(c *gin.Context) {
	c.JSON(http.StatusOK, models.CartCountResponse{Count: h.view.Count(c.Request.Context(), middleware.GetManager(c))})
}

// AddToCart adds a product to the cart.
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Product ID and a quantity of at least 1 are required")
		return
	}

	err := h.catalog.AddToCart(c.Request.Context(), middleware.GetManager(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product added to cart"})
}

// Events streams the cart count as server-sent events: once on connect and
// again after every change to this user's cart.
func (h *CartHandler) Events(c *gin.Context) {
	mgr := middleware.GetManager(c)
	s, _ := mgr.Current()
	ctx := c.Request.Context()
	log := logger.FromGin(c)

	ch, cancel, err := h.bus.Subscribe(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("count", models.CartCountResponse{Count: h.view.Count(ctx, mgr)})
	c.Writer.Flush()

	ticker := time.NewTicker(eventsKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			if ev.UserID != s.UserID {
				return true
			}
			c.SSEvent("count", models.CartCountResponse{Count: h.view.Count(ctx, mgr)})
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{})
			return true
		}
	})
	log.Debug("Cart event stream closed", zap.String("user_id", s.UserID))
}
