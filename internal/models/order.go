package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of statuses the order history can filter on.
type OrderStatus string

// Order status constants
const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCompleted OrderStatus = "Completed"
)

// ParseOrderStatus accepts a status name in any letter case.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending":
		return OrderStatusPending, nil
	case "completed":
		return OrderStatusCompleted, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// InvoiceMethod is how the customer pays for an order.
type InvoiceMethod string

// Invoice method constants, as the remote service spells them
const (
	InvoiceCreditCard     InvoiceMethod = "Credit Card"
	InvoiceCashOnDelivery InvoiceMethod = "Cash on Delivery"
)

// ParseInvoiceMethod accepts both the display names and the form values
// (creditCard, cashOnDelivery). Empty input selects the default, Credit Card.
func ParseInvoiceMethod(s string) (InvoiceMethod, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "", "creditcard":
		return InvoiceCreditCard, nil
	case "cashondelivery", "cod":
		return InvoiceCashOnDelivery, nil
	}
	return "", fmt.Errorf("unknown invoice method %q", s)
}

// Valid reports whether m is one of the known invoice methods.
func (m InvoiceMethod) Valid() bool {
	return m == InvoiceCreditCard || m == InvoiceCashOnDelivery
}

// ShippingInfo is pre-filled from the profile and freely editable before
// submission. No field is required.
type ShippingInfo struct {
	Name             string `json:"name"`
	Address          string `json:"address"`
	Email            string `json:"email"`
	DeliveryLocation string `json:"deliveryLocation"`
}

// OrderItem represents an item in a placed order
type OrderItem struct {
	Product  Product `json:"productId"`
	Quantity int     `json:"quantity"`
}

// Order represents an order created by the remote service. The client never
// mutates it.
type Order struct {
	ID            string          `json:"_id"`
	Items         []OrderItem     `json:"orderItems"`
	ShippingInfo  ShippingInfo    `json:"shippingInfo"`
	InvoiceMethod InvoiceMethod   `json:"invoiceMethod"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        OrderStatus     `json:"orderStatus"`
	OrderDate     time.Time       `json:"orderDate"`
}

// OrderSource tells which entry path built an order request.
type OrderSource string

const (
	OrderSourceCart      OrderSource = "cart"
	OrderSourceImmediate OrderSource = "immediate"
)

// OrderLine is the wire form of a line in an order creation request
type OrderLine struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// OrderRequest is the single internal order-creation value. Both the cart
// selection and buy-now build one; the REST client maps Source to the
// matching endpoint.
type OrderRequest struct {
	Source        OrderSource   `json:"source" validate:"oneof=cart immediate"`
	Lines         []OrderLine   `json:"lines" validate:"required,min=1,dive"`
	ShippingInfo  ShippingInfo  `json:"shippingInfo"`
	InvoiceMethod InvoiceMethod `json:"invoiceMethod"`
}

// CreateFromCartRequest is the body of POST /orders/create-from-cart
type CreateFromCartRequest struct {
	SelectedItems []OrderLine   `json:"selectedItems"`
	ShippingInfo  ShippingInfo  `json:"shippingInfo"`
	InvoiceMethod InvoiceMethod `json:"invoiceMethod"`
}

// CreateImmediateRequest is the body of POST /orders/create-immediate
type CreateImmediateRequest struct {
	OrderItems    []OrderLine   `json:"orderItems"`
	ShippingInfo  ShippingInfo  `json:"shippingInfo"`
	InvoiceMethod InvoiceMethod `json:"invoiceMethod"`
}

// CreateOrderResponse carries only the new order's identifier
type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
}

// OrderListResponse represents paginated order list response
type OrderListResponse struct {
	Orders     []Order `json:"orders"`
	TotalPages int     `json:"totalPages"`
}

// OrderPage is one page of the order history as shown to the user
type OrderPage struct {
	Status     OrderStatus `json:"status"`
	Orders     []Order     `json:"orders"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
}
