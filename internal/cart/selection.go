package cart

import (
	"github.com/shopspring/decimal"

	"pcshop-storefront/internal/checkout"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/pricing"
)

// Selection is the ordered set of cart lines ticked for checkout, keyed by
// product ID. Lines keep the order in which they were first selected.
// The zero value is an empty selection ready to use.
type Selection struct {
	order []string
	lines map[string]models.CartLine
}

func NewSelection() *Selection {
	return &Selection{lines: make(map[string]models.CartLine)}
}

// Toggle selects or deselects a line.
func (s *Selection) Toggle(line models.CartLine, checked bool) {
	if s.lines == nil {
		s.lines = make(map[string]models.CartLine)
	}
	id := line.Product.ID
	_, present := s.lines[id]
	switch {
	case checked && present:
		s.lines[id] = line
	case checked:
		s.lines[id] = line
		s.order = append(s.order, id)
	case present:
		delete(s.lines, id)
		for i, o := range s.order {
			if o == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// SelectAll replaces the selection with every given line, in order.
func (s *Selection) SelectAll(lines []models.CartLine) {
	s.Clear()
	for _, l := range lines {
		s.Toggle(l, true)
	}
}

func (s *Selection) Clear() {
	s.order = nil
	s.lines = make(map[string]models.CartLine)
}

func (s *Selection) Selected(productID string) bool {
	_, ok := s.lines[productID]
	return ok
}

func (s *Selection) Len() int {
	return len(s.order)
}

// Lines returns the selected lines in selection order.
func (s *Selection) Lines() []models.CartLine {
	out := make([]models.CartLine, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.lines[id])
	}
	return out
}

// Subtotal is the sum of price * quantity over the selection.
func (s *Selection) Subtotal() decimal.Decimal {
	return pricing.Subtotal(s.Lines())
}

// ProceedToCheckout hands the selected lines, prices included, to checkout.
// An empty selection is refused.
func ProceedToCheckout(s *Selection) (checkout.Draft, error) {
	return checkout.NewCartDraft(s.Lines())
}

// SelectByID builds a selection from the cart lines whose product IDs are
// listed, in the order given. Unknown IDs are skipped.
func SelectByID(lines []models.CartLine, ids []string) *Selection {
	byID := make(map[string]models.CartLine, len(lines))
	for _, l := range lines {
		byID[l.Product.ID] = l
	}
	sel := NewSelection()
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			sel.Toggle(l, true)
		}
	}
	return sel
}
