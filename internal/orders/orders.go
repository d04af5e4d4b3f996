// Package orders lists the signed-in user's past orders by status, one
// page at a time.
package orders

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/session"
)

// DefaultPageSize is the number of orders per page.
const DefaultPageSize = 5

// Store is the part of the store service the history uses.
type Store interface {
	ListOrders(ctx context.Context, token string, status models.OrderStatus, page, limit int) (models.OrderListResponse, error)
}

type Lister struct {
	store    Store
	pageSize int
	logger   *zap.Logger
}

func NewLister(store Store, pageSize int, l *zap.Logger) *Lister {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Lister{store: store, pageSize: pageSize, logger: logger.OrNop(l)}
}

func (l *Lister) PageSize() int {
	return l.pageSize
}

// List fetches one page. Anonymous visitors and rejected tokens get an
// empty page rather than an error; other failures return an empty page
// along with the error. TotalPages is never below 1.
func (l *Lister) List(ctx context.Context, src session.Source, status models.OrderStatus, page int) (models.OrderPage, error) {
	if page < 1 {
		page = 1
	}
	empty := models.OrderPage{Status: status, Orders: []models.Order{}, Page: page, TotalPages: 1}

	s, ok := src.Current()
	if !ok {
		return empty, nil
	}
	resp, err := l.store.ListOrders(ctx, s.Token, status, page, l.pageSize)
	if err != nil {
		if apperr.Is(err, apperr.AuthRequired) {
			l.logger.Warn("Order history read rejected, showing no orders", zap.String("user_id", s.UserID), zap.Error(err))
			return empty, nil
		}
		l.logger.Error("Failed to list orders",
			zap.String("user_id", s.UserID),
			zap.String("status", string(status)),
			zap.Int("page", page),
			zap.Error(err),
		)
		return empty, err
	}

	out := models.OrderPage{Status: status, Orders: resp.Orders, Page: page, TotalPages: resp.TotalPages}
	if out.Orders == nil {
		out.Orders = []models.Order{}
	}
	if out.TotalPages < 1 {
		out.TotalPages = 1
	}
	return out, nil
}

// ListClamped is List for callers that cannot know the page count up
// front. A positive knownTotal clamps page before the fetch; a page past
// the last one is fetched again as the last page, so the result always
// has Page <= TotalPages.
func (l *Lister) ListClamped(ctx context.Context, src session.Source, status models.OrderStatus, page, knownTotal int) (models.OrderPage, error) {
	if knownTotal > 0 {
		page = clamp(page, knownTotal)
	}
	result, err := l.List(ctx, src, status, page)
	if err != nil || result.Page <= result.TotalPages {
		return result, err
	}
	return l.List(ctx, src, status, result.TotalPages)
}

// History holds the status tab and page of an order history view.
type History struct {
	lister *Lister
	src    session.Source

	mu      sync.Mutex
	current models.OrderPage
}

func NewHistory(lister *Lister, src session.Source) *History {
	return &History{
		lister:  lister,
		src:     src,
		current: models.OrderPage{Status: models.OrderStatusPending, Orders: []models.Order{}, Page: 1, TotalPages: 1},
	}
}

// Load fetches the current status and page.
func (h *History) Load(ctx context.Context) (models.OrderPage, error) {
	h.mu.Lock()
	status, page := h.current.Status, h.current.Page
	h.mu.Unlock()
	return h.fetch(ctx, status, page)
}

// SetStatus switches the tab and goes back to page 1.
func (h *History) SetStatus(ctx context.Context, status models.OrderStatus) (models.OrderPage, error) {
	return h.fetch(ctx, status, 1)
}

// GoToPage clamps page to [1, totalPages] before fetching.
func (h *History) GoToPage(ctx context.Context, page int) (models.OrderPage, error) {
	h.mu.Lock()
	status, total := h.current.Status, h.current.TotalPages
	h.mu.Unlock()
	return h.fetch(ctx, status, clamp(page, total))
}

func (h *History) Next(ctx context.Context) (models.OrderPage, error) {
	return h.GoToPage(ctx, h.Current().Page+1)
}

func (h *History) Prev(ctx context.Context) (models.OrderPage, error) {
	return h.GoToPage(ctx, h.Current().Page-1)
}

func (h *History) Current() models.OrderPage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

func (h *History) fetch(ctx context.Context, status models.OrderStatus, page int) (models.OrderPage, error) {
	result, err := h.lister.List(ctx, h.src, status, page)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return h.Current(), ctxErr
	}
	if err != nil {
		return result, err
	}
	h.mu.Lock()
	h.current = result
	h.mu.Unlock()
	return result, nil
}

func clamp(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}
