// Package admin backs the product and user admin screens. Toggles update
// the local list first and put it back if the service refuses.
package admin

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/session"
)

// Store is the admin part of the store service.
type Store interface {
	AdminListProducts(ctx context.Context, token string) ([]models.Product, error)
	ArchiveProduct(ctx context.Context, token, id string) error
	ListUsers(ctx context.Context, token string) ([]models.User, error)
	SetAdmin(ctx context.Context, token, id string, isAdmin bool) error
}

const adminRequiredMessage = "Admin access required"

type Console struct {
	store  Store
	src    session.Source
	logger *zap.Logger

	mu       sync.Mutex
	products []models.Product
	users    []models.User
}

func NewConsole(store Store, src session.Source, l *zap.Logger) *Console {
	return &Console{store: store, src: src, logger: logger.OrNop(l)}
}

// authorize gates the screens on the session's admin flag. The service
// checks again on every request.
func (c *Console) authorize() (session.Session, error) {
	s, err := session.Require(c.src)
	if err != nil {
		return session.Session{}, err
	}
	if !s.IsAdmin {
		return session.Session{}, apperr.ForbiddenErr(adminRequiredMessage)
	}
	return s, nil
}

func (c *Console) LoadProducts(ctx context.Context) ([]models.Product, error) {
	s, err := c.authorize()
	if err != nil {
		return nil, err
	}
	products, err := c.store.AdminListProducts(ctx, s.Token)
	if err != nil {
		c.logger.Error("Failed to load admin product list", zap.Error(err))
		return nil, err
	}
	c.mu.Lock()
	c.products = products
	c.mu.Unlock()
	return c.Products(), nil
}

func (c *Console) LoadUsers(ctx context.Context) ([]models.User, error) {
	s, err := c.authorize()
	if err != nil {
		return nil, err
	}
	users, err := c.store.ListUsers(ctx, s.Token)
	if err != nil {
		c.logger.Error("Failed to load user list", zap.Error(err))
		return nil, err
	}
	c.mu.Lock()
	c.users = users
	c.mu.Unlock()
	return c.Users(), nil
}

func (c *Console) Products() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Product(nil), c.products...)
}

func (c *Console) Users() []models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.User(nil), c.users...)
}

// ToggleProductActive flips a loaded product's active flag.
func (c *Console) ToggleProductActive(ctx context.Context, id string) (models.Product, error) {
	s, err := c.authorize()
	if err != nil {
		return models.Product{}, err
	}

	c.mu.Lock()
	i := productIndex(c.products, id)
	if i < 0 {
		c.mu.Unlock()
		return models.Product{}, apperr.InvalidErr("Product not found")
	}
	previous := c.products[i].IsActive
	c.products[i].IsActive = !previous
	updated := c.products[i]
	c.mu.Unlock()

	if err := c.store.ArchiveProduct(ctx, s.Token, id); err != nil {
		c.logger.Error("Product toggle failed, rolling back",
			zap.String("product_id", id),
			zap.Bool("is_active", previous),
			zap.Error(err),
		)
		c.mu.Lock()
		if j := productIndex(c.products, id); j >= 0 {
			c.products[j].IsActive = previous
		}
		c.mu.Unlock()
		return models.Product{}, err
	}
	return updated, nil
}

// ToggleUserAdmin flips a loaded user's admin flag.
func (c *Console) ToggleUserAdmin(ctx context.Context, id string) (models.User, error) {
	s, err := c.authorize()
	if err != nil {
		return models.User{}, err
	}

	c.mu.Lock()
	i := userIndex(c.users, id)
	if i < 0 {
		c.mu.Unlock()
		return models.User{}, apperr.InvalidErr("User not found")
	}
	previous := c.users[i].IsAdmin
	c.users[i].IsAdmin = !previous
	updated := c.users[i]
	c.mu.Unlock()

	if err := c.store.SetAdmin(ctx, s.Token, id, !previous); err != nil {
		c.logger.Error("Admin toggle failed, rolling back",
			zap.String("target_user_id", id),
			zap.Bool("is_admin", previous),
			zap.Error(err),
		)
		c.mu.Lock()
		if j := userIndex(c.users, id); j >= 0 {
			c.users[j].IsAdmin = previous
		}
		c.mu.Unlock()
		return models.User{}, err
	}
	return updated, nil
}

func productIndex(products []models.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

func userIndex(users []models.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}
