package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/cart"
	"pcshop-storefront/internal/catalog"
	"pcshop-storefront/internal/checkout"
	"pcshop-storefront/internal/middleware"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/session"
)

// CheckoutHandler serves the checkout page. The page carries the draft
// between requests; nothing about a checkout is kept server-side.
type CheckoutHandler struct {
	svc     checkout.Service
	view    *cart.View
	catalog *catalog.Catalog
	opts    checkout.Options
}

func NewCheckoutHandler(svc checkout.Service, view *cart.View, cat *catalog.Catalog, opts checkout.Options) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, view: view, catalog: cat, opts: opts}
}

type previewRequest struct {
	ProductIDs []string `json:"productIds"`
	All        bool     `json:"all"`
}

type buyNowRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type submitRequest struct {
	Source        models.OrderSource  `json:"source" binding:"required,oneof=cart immediate"`
	Lines         []models.CartLine   `json:"lines"`
	ShippingInfo  models.ShippingInfo `json:"shippingInfo"`
	InvoiceMethod string              `json:"invoiceMethod"`
}

func (h *CheckoutHandler) newFlow(src session.Source) *checkout.Flow {
	return checkout.NewFlow(h.svc, src, h.opts)
}

// Preview starts checkout from cart lines: the listed product IDs, or the
// whole cart when all is set.
func (h *CheckoutHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid checkout request")
		return
	}
	mgr := middleware.GetManager(c)
	ctx := c.Request.Context()

	lines, err := h.view.Fetch(ctx, mgr)
	if err != nil {
		respondError(c, err)
		return
	}

	var sel *cart.Selection
	if req.All {
		sel = cart.NewSelection()
		sel.SelectAll(lines)
	} else {
		sel = cart.SelectByID(lines, req.ProductIDs)
	}
	draft, err := cart.ProceedToCheckout(sel)
	if err != nil {
		respondError(c, err)
		return
	}
	h.begin(c, mgr, draft)
}

// BuyNow starts checkout for a single product.
func (h *CheckoutHandler) BuyNow(c *gin.Context) {
	var req buyNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Product ID is required")
		return
	}
	mgr := middleware.GetManager(c)

	product, err := h.catalog.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	draft, err := h.catalog.BuyNow(mgr, product, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	h.begin(c, mgr, draft)
}

func (h *CheckoutHandler) begin(c *gin.Context, src session.Source, draft checkout.Draft) {
	flow := h.newFlow(src)
	if err := flow.Begin(c.Request.Context(), draft); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flow.View())
}

// Submit places the order for the draft the page sends back.
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid checkout request")
		return
	}
	method, err := models.ParseInvoiceMethod(req.InvoiceMethod)
	if err != nil {
		badRequest(c, "Unknown invoice method")
		return
	}

	flow := h.newFlow(middleware.GetManager(c))
	draft := checkout.Draft{Source: req.Source, Lines: req.Lines}
	if err := flow.Resume(draft, req.ShippingInfo, method); err != nil {
		respondError(c, err)
		return
	}

	orderID, err := flow.Submit(c.Request.Context())
	if err != nil {
		if apperr.Is(err, apperr.PriceChanged) {
			_ = c.Error(err)
			c.JSON(http.StatusConflict, gin.H{"error": apperr.Notice(err), "checkout": flow.View()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"orderId":  orderID,
		"redirect": "/order-success/" + url.PathEscape(orderID),
	})
}
