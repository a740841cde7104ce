package handler

import (
	"time"

	"github.com/localmart/order-service/internal/entities"
)

// Order представляет заказ в ответах API
type Order struct {
	OrderID           string    `json:"orderId"`
	CustomerID        string    `json:"customerId"`
	MerchantID        string    `json:"merchantId"`
	DeliveryPartnerID string    `json:"deliveryPartnerId,omitempty"`
	OrderItems        []Item    `json:"orderItems"`
	TotalPrice        int64     `json:"totalPrice"`
	Status            string    `json:"status"`
	UseRewards        bool      `json:"useRewards"`
	UseDelivery       bool      `json:"useDelivery"`
	RewardsAmountUsed int64     `json:"rewardsAmountUsed"`
	RewardPointsUsed  int64     `json:"customerRewardsPointsUsed"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
	CreatedBy         string    `json:"createdBy"`
	UpdatedBy         string    `json:"updatedBy"`
}

// Item позиция заказа
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// UpdateStatusRequest тело запроса на смену статуса заказа
type UpdateStatusRequest struct {
	Status            string `json:"status" validate:"required"`
	DeliveryPartnerID string `json:"deliveryPartnerId,omitempty"`
}

// CreatedOrder идентификатор созданного заказа
type CreatedOrder struct {
	OrderID string `json:"orderId"`
}

func OrderEntityToJSON(o entities.Order) Order {
	items := make([]Item, 0, len(o.OrderItems))
	for _, it := range o.OrderItems {
		items = append(items, Item{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return Order{
		OrderID:           o.OrderID,
		CustomerID:        o.CustomerID,
		MerchantID:        o.MerchantID,
		DeliveryPartnerID: o.DeliveryPartnerID,
		OrderItems:        items,
		TotalPrice:        o.TotalPrice,
		Status:            string(o.Status),
		UseRewards:        o.UseRewards,
		UseDelivery:       o.UseDelivery,
		RewardsAmountUsed: o.RewardsAmountUsed,
		RewardPointsUsed:  o.CustomerRewardsPointsUsed,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		CreatedBy:         string(o.CreatedBy),
		UpdatedBy:         string(o.UpdatedBy),
	}
}

func OrdersEntityToJSON(orders []entities.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderEntityToJSON(o))
	}
	return result
}
