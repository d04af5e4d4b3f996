package models

import (
	"github.com/shopspring/decimal"
)

// Product represents a catalog entry owned by the remote store service.
// Copies held by the client are read-only and may be stale.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImagePath   string          `json:"imagepath"`
	Category    string          `json:"category"`
	IsActive    bool            `json:"isActive"`
}
