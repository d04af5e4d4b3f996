// Package catalog serves the product list, product detail and the two
// actions a detail page offers: add to cart and buy now.
package catalog

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/checkout"
	"pcshop-storefront/internal/events"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/session"
)

// MaxSearchLength is the longest query the search box accepts.
const MaxSearchLength = 40

// Store is the part of the store service the catalog uses.
type Store interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	AddToCart(ctx context.Context, token, productID string, quantity int) error
}

type Catalog struct {
	store  Store
	bus    events.Bus
	logger *zap.Logger
	now    func() time.Time
}

// New creates a catalog. bus may be nil when nobody listens for cart changes.
func New(store Store, bus events.Bus, l *zap.Logger) *Catalog {
	return &Catalog{store: store, bus: bus, logger: logger.OrNop(l), now: time.Now}
}

// ListProducts returns the public catalog. No session is needed.
func (c *Catalog) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := c.store.ListProducts(ctx)
	if err != nil {
		c.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	return products, nil
}

// GetProduct returns a product as the service sent it, however partial.
func (c *Catalog) GetProduct(ctx context.Context, id string) (models.Product, error) {
	if strings.TrimSpace(id) == "" {
		return models.Product{}, apperr.InvalidErr("Product ID is required")
	}
	p, err := c.store.GetProduct(ctx, id)
	if err != nil {
		c.logger.Error("Failed to fetch product", zap.String("product_id", id), zap.Error(err))
		return models.Product{}, err
	}
	return p, nil
}

// Search filters the catalog by a case-insensitive substring of the name,
// description or category. Queries are cut to MaxSearchLength characters;
// an empty query matches everything.
func (c *Catalog) Search(ctx context.Context, query string) ([]models.Product, error) {
	products, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(NormalizeQuery(query))
	if q == "" {
		return products, nil
	}
	matches := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// NormalizeQuery trims a search query and cuts it to MaxSearchLength runes.
func NormalizeQuery(query string) string {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) <= MaxSearchLength {
		return query
	}
	return string([]rune(query)[:MaxSearchLength])
}

// AddToCart adds quantity of a product to the signed-in user's cart and
// announces the change on the bus.
func (c *Catalog) AddToCart(ctx context.Context, src session.Source, productID string, quantity int) error {
	s, err := session.Require(src)
	if err != nil {
		return err
	}
	if quantity < 1 {
		return apperr.InvalidErr("Quantity must be at least 1")
	}
	if err := c.store.AddToCart(ctx, s.Token, productID, quantity); err != nil {
		c.logger.Error("Failed to add product to cart",
			zap.String("product_id", productID),
			zap.Int("quantity", quantity),
			zap.Error(err),
		)
		return err
	}

	if c.bus != nil {
		ev := events.CartChanged{UserID: s.UserID, At: c.now()}
		if err := c.bus.Publish(ctx, ev); err != nil {
			c.logger.Warn("Failed to publish cart change", zap.String("user_id", s.UserID), zap.Error(err))
		}
	}
	return nil
}

// BuyNow builds an immediate order draft for one product. It needs a
// session; without one the caller sends the user to login.
func (c *Catalog) BuyNow(src session.Source, product models.Product, quantity int) (checkout.Draft, error) {
	if _, err := session.Require(src); err != nil {
		return checkout.Draft{}, err
	}
	if product.ID == "" {
		return checkout.Draft{}, apperr.InvalidErr("Product ID is required")
	}
	return checkout.NewImmediateDraft(product, quantity), nil
}
