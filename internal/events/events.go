package events

import (
	"time"

	"github.com/localmart/order-service/internal/entities"
)

type EventType string

const (
	OrderCreated       EventType = "ORDER_CREATED"
	OrderStatusChanged EventType = "ORDER_STATUS_CHANGED"
)

// OrderEvent is the lifecycle notification published after every
// successful order mutation. Publishing is best-effort.
type OrderEvent struct {
	Type       EventType            `json:"type"`
	OrderID    string               `json:"orderId"`
	CustomerID string               `json:"customerId"`
	MerchantID string               `json:"merchantId"`
	Status     entities.OrderStatus `json:"status"`
	TotalPrice int64                `json:"totalPrice"`
	OccurredAt time.Time            `json:"occurredAt"`
}

func FromOrder(t EventType, o entities.Order) OrderEvent {
	return OrderEvent{
		Type:       t,
		OrderID:    o.OrderID,
		CustomerID: o.CustomerID,
		MerchantID: o.MerchantID,
		Status:     o.Status,
		TotalPrice: o.TotalPrice,
		OccurredAt: time.Now(),
	}
}
