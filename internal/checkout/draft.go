package checkout

import (
	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/models"
)

// EmptySelectionMessage is shown when checkout is attempted with no lines.
const EmptySelectionMessage = "Please select items to proceed."

// Draft is what an entry path hands to checkout: the source and the full
// line objects, prices included, as they were when the user saw them.
type Draft struct {
	Source models.OrderSource `json:"source"`
	Lines  []models.CartLine  `json:"lines"`
}

// NewCartDraft builds a draft from selected cart lines.
func NewCartDraft(lines []models.CartLine) (Draft, error) {
	if len(lines) == 0 {
		return Draft{}, apperr.InvalidErr(EmptySelectionMessage)
	}
	return Draft{Source: models.OrderSourceCart, Lines: copyLines(lines)}, nil
}

// NewImmediateDraft builds a single-line draft for buy now. Quantities
// below 1 are raised to 1.
func NewImmediateDraft(product models.Product, quantity int) Draft {
	if quantity < 1 {
		quantity = 1
	}
	return Draft{
		Source: models.OrderSourceImmediate,
		Lines:  []models.CartLine{{Product: product, Quantity: quantity}},
	}
}

// OrderLines returns the wire lines, in draft order.
func (d Draft) OrderLines() []models.OrderLine {
	out := make([]models.OrderLine, 0, len(d.Lines))
	for _, l := range d.Lines {
		out = append(out, models.OrderLine{ProductID: l.Product.ID, Quantity: l.Quantity})
	}
	return out
}

// Request builds the unified order request for this draft.
func (d Draft) Request(shipping models.ShippingInfo, method models.InvoiceMethod) models.OrderRequest {
	return models.OrderRequest{
		Source:        d.Source,
		Lines:         d.OrderLines(),
		ShippingInfo:  shipping,
		InvoiceMethod: method,
	}
}

func copyLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out
}
