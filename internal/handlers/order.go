package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/middleware"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/orders"
)

// OrderHandler serves the order history.
type OrderHandler struct {
	lister *orders.Lister
}

func NewOrderHandler(lister *orders.Lister) *OrderHandler {
	return &OrderHandler{lister: lister}
}

type orderPageResponse struct {
	models.OrderPage
	PageSize int    `json:"pageSize"`
	Notice   string `json:"notice,omitempty"`
}

// GetUserOrders lists one page of the user's orders. Query parameters:
// status (pending|completed, default pending), page (default 1) and
// totalPages, the count the client last saw, used to clamp page.
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	status, err := models.ParseOrderStatus(c.Query("status"))
	if err != nil {
		badRequest(c, "Invalid order status")
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	known, _ := strconv.Atoi(c.Query("totalPages"))

	result, err := h.lister.ListClamped(c.Request.Context(), middleware.GetManager(c), status, page, known)
	resp := orderPageResponse{OrderPage: result, PageSize: h.lister.PageSize()}
	if err != nil {
		_ = c.Error(err)
		resp.Notice = apperr.Notice(err)
	}
	c.JSON(http.StatusOK, resp)
}
