package entities

import "time"

// Cart is owned by the cart service. The orchestrator only ever reads it
// and asks for its deletion after a successful order.
type Cart struct {
	CustomerID string
	MerchantID string
	CartItems  []CartItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem carries no price; authoritative prices come from the product
// service at order creation time.
type CartItem struct {
	ProductID string
	Quantity  int
}
