// Package checkout runs the order checkout flow shared by the cart and buy
// now entry paths.
package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/metrics"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/pricing"
	"pcshop-storefront/internal/session"
)

// State is the checkout page state.
type State int

const (
	Loading State = iota
	Ready
	Submitting
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	profileFetchFailedMessage = "Failed to fetch user details."
	priceChangedMessage       = "Prices have changed since you added these items. Please review the new total."
	noItemsMessage            = "No items to order."
)

// Service is the part of the store service checkout uses.
type Service interface {
	GetProfile(ctx context.Context, token string) (models.Profile, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	CreateOrder(ctx context.Context, token string, req models.OrderRequest) (string, error)
}

// Options tunes a Flow. An unset ShippingFee means the default fee; a set
// zero means free shipping.
type Options struct {
	ShippingFee      decimal.NullDecimal
	RevalidatePrices bool
	Metrics          *metrics.Registry
	Logger           *zap.Logger
}

// Summary is a snapshot of the flow for rendering.
type Summary struct {
	State         State                `json:"state"`
	Source        models.OrderSource   `json:"source"`
	Lines         []models.CartLine    `json:"lines"`
	ShippingInfo  models.ShippingInfo  `json:"shippingInfo"`
	InvoiceMethod models.InvoiceMethod `json:"invoiceMethod"`
	Subtotal      string               `json:"subtotal"`
	ShippingFee   string               `json:"shippingFee"`
	Total         string               `json:"total"`
	OrderID       string               `json:"orderId,omitempty"`
	Notice        string               `json:"notice,omitempty"`
}

// Flow is one checkout. It is safe for concurrent use; no lock is held
// across network calls.
type Flow struct {
	svc      Service
	src      session.Source
	opts     Options
	fee      decimal.Decimal
	logger   *zap.Logger
	validate *validator.Validate

	mu       sync.Mutex
	state    State
	draft    Draft
	shipping models.ShippingInfo
	invoice  models.InvoiceMethod
	orderID  string
	notice   string
}

func NewFlow(svc Service, src session.Source, opts Options) *Flow {
	fee := pricing.DefaultShippingFee
	if opts.ShippingFee.Valid {
		fee = opts.ShippingFee.Decimal
	}
	return &Flow{
		svc:      svc,
		src:      src,
		opts:     opts,
		fee:      fee,
		logger:   logger.OrNop(opts.Logger),
		validate: validator.New(),
		state:    Loading,
		invoice:  models.InvoiceCreditCard,
	}
}

// Begin enters checkout with a draft and pre-fills shipping from the
// profile. Without a session it returns AuthRequired and the caller
// redirects to login. A failed profile fetch only sets a notice.
func (f *Flow) Begin(ctx context.Context, draft Draft) error {
	s, err := session.Require(f.src)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.state = Loading
	f.draft = Draft{Source: draft.Source, Lines: copyLines(draft.Lines)}
	f.orderID = ""
	f.notice = ""
	f.mu.Unlock()

	profile, err := f.svc.GetProfile(ctx, s.Token)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.logger.Warn("Failed to pre-fill shipping details", zap.String("user_id", s.UserID), zap.Error(err))
		f.notice = profileFetchFailedMessage
	} else {
		f.shipping = models.ShippingInfo{
			Name:             profile.Name,
			Address:          profile.Address,
			Email:            profile.Email,
			DeliveryLocation: profile.Address,
		}
	}
	f.state = Ready
	return nil
}

// Resume re-enters a checkout whose shipping details the caller already
// holds, without fetching the profile.
func (f *Flow) Resume(draft Draft, shipping models.ShippingInfo, method models.InvoiceMethod) error {
	if _, err := session.Require(f.src); err != nil {
		return err
	}
	if method == "" {
		method = models.InvoiceCreditCard
	}
	if !method.Valid() {
		return apperr.InvalidErr(fmt.Sprintf("Unknown invoice method %q", method))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = Draft{Source: draft.Source, Lines: copyLines(draft.Lines)}
	f.shipping = shipping
	f.invoice = method
	f.orderID = ""
	f.notice = ""
	f.state = Ready
	return nil
}

// SetShipping replaces the shipping fields. No validation is applied.
func (f *Flow) SetShipping(info models.ShippingInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shipping = info
}

func (f *Flow) SetInvoiceMethod(method models.InvoiceMethod) error {
	if !method.Valid() {
		return apperr.InvalidErr(fmt.Sprintf("Unknown invoice method %q", method))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoice = method
	return nil
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Total is the amount shown and submitted.
func (f *Flow) Total() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pricing.Total(f.draft.Lines, f.fee)
}

func (f *Flow) View() Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Summary{
		State:         f.state,
		Source:        f.draft.Source,
		Lines:         copyLines(f.draft.Lines),
		ShippingInfo:  f.shipping,
		InvoiceMethod: f.invoice,
		Subtotal:      pricing.Display(pricing.Subtotal(f.draft.Lines)),
		ShippingFee:   pricing.Display(f.fee),
		Total:         pricing.Display(pricing.Total(f.draft.Lines, f.fee)),
		OrderID:       f.orderID,
		Notice:        f.notice,
	}
}

// Submit places the order. Empty drafts are rejected before any request.
// With revalidation on, a changed price refreshes the lines, returns the
// flow to Ready and reports PriceChanged so the user can confirm the new
// total.
func (f *Flow) Submit(ctx context.Context) (string, error) {
	s, err := session.Require(f.src)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	if f.state != Ready && f.state != Failed {
		state := f.state
		f.mu.Unlock()
		return "", apperr.InvalidErr(fmt.Sprintf("Checkout cannot be submitted while %s", state))
	}
	if len(f.draft.Lines) == 0 {
		f.notice = noItemsMessage
		f.mu.Unlock()
		f.observe(metrics.OutcomeInvalid)
		return "", apperr.InvalidErr(noItemsMessage)
	}
	req := f.draft.Request(f.shipping, f.invoice)
	if err := f.validate.Struct(req); err != nil {
		f.mu.Unlock()
		f.observe(metrics.OutcomeInvalid)
		return "", apperr.InvalidErr("Every item needs a product and a quantity of at least 1")
	}
	lines := copyLines(f.draft.Lines)
	f.state = Submitting
	f.notice = ""
	f.mu.Unlock()

	if f.opts.RevalidatePrices {
		if err := f.revalidate(ctx, lines); err != nil {
			return "", err
		}
	}

	orderID, err := f.svc.CreateOrder(ctx, s.Token, req)
	if ctxErr := ctx.Err(); ctxErr != nil {
		f.setState(Ready, "")
		return "", ctxErr
	}
	if err != nil {
		f.logger.Error("Order creation failed",
			zap.String("user_id", s.UserID),
			zap.String("source", string(req.Source)),
			zap.Error(err),
		)
		f.setState(Failed, apperr.Notice(err))
		f.observe(metrics.OutcomeFailed)
		return "", err
	}

	f.mu.Lock()
	f.state = Success
	f.orderID = orderID
	f.mu.Unlock()
	f.observe(metrics.OutcomeSubmitted)
	f.logger.Info("Order created",
		zap.String("user_id", s.UserID),
		zap.String("order_id", orderID),
		zap.String("source", string(req.Source)),
	)
	return orderID, nil
}

// revalidate re-fetches every line's product and compares prices.
func (f *Flow) revalidate(ctx context.Context, lines []models.CartLine) error {
	changed := false
	for i, l := range lines {
		current, err := f.svc.GetProduct(ctx, l.Product.ID)
		if ctxErr := ctx.Err(); ctxErr != nil {
			f.setState(Ready, "")
			return ctxErr
		}
		if err != nil {
			f.logger.Error("Price check failed", zap.String("product_id", l.Product.ID), zap.Error(err))
			f.setState(Failed, apperr.Notice(err))
			f.observe(metrics.OutcomeFailed)
			return err
		}
		if !current.IsActive {
			name := current.Name
			if name == "" {
				name = l.Product.Name
			}
			e := apperr.InvalidErr(fmt.Sprintf("%s is no longer available.", name))
			f.setState(Failed, e.Message)
			f.observe(metrics.OutcomeInvalid)
			return e
		}
		if !current.Price.Equal(l.Product.Price) {
			f.logger.Info("Price changed before checkout",
				zap.String("product_id", l.Product.ID),
				zap.String("was", l.Product.Price.String()),
				zap.String("now", current.Price.String()),
			)
			lines[i].Product.Price = current.Price
			changed = true
		}
	}
	if !changed {
		return nil
	}

	f.mu.Lock()
	f.draft.Lines = lines
	f.state = Ready
	f.notice = priceChangedMessage
	f.mu.Unlock()
	f.observe(metrics.OutcomePriceChanged)
	return apperr.PriceChangedErr(priceChangedMessage)
}

func (f *Flow) setState(state State, notice string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	f.notice = notice
}

func (f *Flow) observe(outcome string) {
	f.mu.Lock()
	source := string(f.draft.Source)
	f.mu.Unlock()
	f.opts.Metrics.ObserveCheckout(outcome, source)
}
