package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pcshop-storefront/internal/admin"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/middleware"
)

// AdminHandler serves the product and user admin screens.
type AdminHandler struct {
	store admin.Store
}

func NewAdminHandler(store admin.Store) *AdminHandler {
	return &AdminHandler{store: store}
}

func (h *AdminHandler) console(c *gin.Context) *admin.Console {
	return admin.NewConsole(h.store, middleware.GetManager(c), logger.FromGin(c))
}

// ListProducts returns every product, archived ones included.
func (h *AdminHandler) ListProducts(c *gin.Context) {
	products, err := h.console(c).LoadProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// ToggleProductActive archives an active product or restores an archived one.
func (h *AdminHandler) ToggleProductActive(c *gin.Context) {
	con := h.console(c)
	ctx := c.Request.Context()
	if _, err := con.LoadProducts(ctx); err != nil {
		respondError(c, err)
		return
	}

	product, err := con.ToggleProductActive(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product, "products": con.Products()})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.console(c).LoadUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ToggleUserAdmin grants or revokes a user's admin flag.
func (h *AdminHandler) ToggleUserAdmin(c *gin.Context) {
	con := h.console(c)
	ctx := c.Request.Context()
	if _, err := con.LoadUsers(ctx); err != nil {
		respondError(c, err)
		return
	}

	user, err := con.ToggleUserAdmin(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "users": con.Users()})
}
