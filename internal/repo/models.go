package repo

import (
	"database/sql"
	"time"

	"github.com/localmart/order-service/internal/entities"
)

type Order struct {
	OrderID           string         `db:"order_id"`
	CustomerID        string         `db:"customer_id"`
	MerchantID        string         `db:"merchant_id"`
	DeliveryPartnerID sql.NullString `db:"delivery_partner_id"`
	TotalPrice        int64          `db:"total_price"`
	Status            string         `db:"status"`
	UseRewards        bool           `db:"use_rewards"`
	UseDelivery       bool           `db:"use_delivery"`
	RewardsAmountUsed int64          `db:"rewards_amount_used"`
	RewardPointsUsed  int64          `db:"customer_rewards_points_used"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
	CreatedBy         string         `db:"created_by"`
	UpdatedBy         string         `db:"updated_by"`
}

type Item struct {
	OrderID   string `db:"order_id"`
	ProductID string `db:"product_id"`
	Quantity  int    `db:"quantity"`
	UnitPrice int64  `db:"unit_price"`
}

func OrderToEntity(o Order, items []Item) entities.Order {
	order := entities.Order{
		OrderID:           o.OrderID,
		CustomerID:        o.CustomerID,
		MerchantID:        o.MerchantID,
		DeliveryPartnerID: nullStringToString(o.DeliveryPartnerID),
		TotalPrice:        o.TotalPrice,
		Status:            entities.OrderStatus(o.Status),
		UseRewards:        o.UseRewards,
		UseDelivery:       o.UseDelivery,
		RewardsAmountUsed: o.RewardsAmountUsed,
		CustomerRewardsPointsUsed: o.RewardPointsUsed,
		CreatedAt:                 o.CreatedAt,
		UpdatedAt:                 o.UpdatedAt,
		CreatedBy:                 entities.Actor(o.CreatedBy),
		UpdatedBy:                 entities.Actor(o.UpdatedBy),
	}

	if len(items) > 0 {
		order.OrderItems = make([]entities.Item, 0, len(items))
		for _, it := range items {
			order.OrderItems = append(order.OrderItems, ItemToEntity(it))
		}
	}

	return order
}

func ItemToEntity(i Item) entities.Item {
	return entities.Item{
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
