package models

import (
	"github.com/shopspring/decimal"
)

// CartLine represents one product in the cart together with its quantity.
// The remote service embeds the full product under "productId".
type CartLine struct {
	Product  Product `json:"productId"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price * quantity for the line.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a full snapshot of the user's cart
type Cart struct {
	Items []CartLine `json:"items"`
}

// AddToCartRequest represents the request to add an item to cart
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CartCountResponse represents the cart item count
type CartCountResponse struct {
	Count int `json:"count"`
}
