package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pcshop-storefront/internal/catalog"
)

// PublicHandler serves the catalog pages, which need no session.
type PublicHandler struct {
	catalog *catalog.Catalog
}

func NewPublicHandler(cat *catalog.Catalog) *PublicHandler {
	return &PublicHandler{catalog: cat}
}

// GetProducts lists the active catalog.
func (h *PublicHandler) GetProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct returns one product for the detail page.
func (h *PublicHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// SearchProducts filters the catalog by ?q=.
func (h *PublicHandler) SearchProducts(c *gin.Context) {
	query := catalog.NormalizeQuery(c.Query("q"))
	products, err := h.catalog.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "products": products})
}
