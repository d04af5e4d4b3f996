// Package cart shows the signed-in user's cart and the selection that is
// handed to checkout.
package cart

import (
	"context"

	"go.uber.org/zap"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/session"
)

// Store is the part of the store service the cart view uses.
type Store interface {
	GetCart(ctx context.Context, token string) (models.Cart, error)
}

type View struct {
	store  Store
	logger *zap.Logger
}

func NewView(store Store, l *zap.Logger) *View {
	return &View{store: store, logger: logger.OrNop(l)}
}

// Fetch returns the cart lines. Anonymous visitors and rejected tokens get
// an empty cart and no error. Other failures return an empty cart along
// with the error for the notice.
func (v *View) Fetch(ctx context.Context, src session.Source) ([]models.CartLine, error) {
	s, ok := src.Current()
	if !ok {
		return []models.CartLine{}, nil
	}
	c, err := v.store.GetCart(ctx, s.Token)
	if err != nil {
		if apperr.Is(err, apperr.AuthRequired) {
			v.logger.Warn("Cart read rejected, showing empty cart", zap.String("user_id", s.UserID), zap.Error(err))
			return []models.CartLine{}, nil
		}
		v.logger.Error("Failed to fetch cart", zap.String("user_id", s.UserID), zap.Error(err))
		return []models.CartLine{}, err
	}
	if c.Items == nil {
		return []models.CartLine{}, nil
	}
	return c.Items, nil
}

// Count is the navbar badge: the number of cart lines, 0 on any failure.
func (v *View) Count(ctx context.Context, src session.Source) int {
	lines, err := v.Fetch(ctx, src)
	if err != nil {
		v.logger.Warn("Cart count unavailable", zap.Error(err))
		return 0
	}
	return len(lines)
}
