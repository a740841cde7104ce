package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/localmart/order-service/internal/entities"
	"github.com/localmart/order-service/internal/events"
	"github.com/localmart/order-service/internal/saga"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CreateOrder converts the customer's cart into a persisted order:
// price the items, optionally redeem rewards, persist, delete the cart,
// decrement stock. Stock failure compensates by deleting the order; no
// partial order survives.
func (s *orderService) CreateOrder(ctx context.Context, customerID string, useRewards, useDelivery bool) (string, error) {
	cart, err := s.clients.Cart.GetCart(ctx, customerID)
	if err != nil {
		return "", err
	}

	products, err := s.clients.Products.GetProducts(ctx, distinctProductIDs(cart.CartItems))
	if err != nil {
		return "", fmt.Errorf("%w: %v", entities.ErrPricingFailed, err)
	}

	items := priceItems(cart.CartItems, products)
	if len(items) == 0 {
		return "", fmt.Errorf("%w: no cart items matched the pricing response", entities.ErrPricingFailed)
	}

	now := time.Now()
	order := entities.Order{
		OrderID:     uuid.NewString(),
		CustomerID:  customerID,
		MerchantID:  cart.MerchantID,
		OrderItems:  items,
		TotalPrice:  subtotal(items),
		Status:      entities.StatusCreated,
		UseRewards:  useRewards,
		UseDelivery: useDelivery,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   entities.ActorCustomer,
		UpdatedBy:   entities.ActorCustomer,
	}

	if useRewards {
		s.redeemRewards(ctx, &order)
	}

	steps := []saga.Step{
		{
			Name: "persist_order",
			Execute: func(ctx context.Context) error {
				return s.txManager.Do(ctx, func(ctx context.Context) error {
					return s.store.Insert(ctx, order)
				})
			},
			Compensate: func(ctx context.Context) error {
				return s.store.Delete(ctx, order.OrderID)
			},
		},
		{
			// Cart deletion is best-effort; a leftover cart never rolls
			// back a created order.
			Name: "delete_cart",
			Execute: func(ctx context.Context) error {
				if err := s.clients.Cart.DeleteCart(ctx, customerID); err != nil {
					s.logger.Warn("failed to delete cart after order creation",
						slog.String("customer_id", customerID), slog.Any("error", err))
				}
				return nil
			},
		},
		{
			Name: "decrement_stock",
			Execute: func(ctx context.Context) error {
				return s.decrementStock(ctx, order, products)
			},
		},
	}

	if err := s.saga.Run(ctx, steps); err != nil {
		return "", err
	}

	s.publish(ctx, events.OrderCreated, order)
	s.logger.Info("order created",
		slog.String("order_id", order.OrderID),
		slog.String("customer_id", customerID),
		slog.Int64("total_price", order.TotalPrice))
	return order.OrderID, nil
}

// redeemRewards offsets the order total by the customer's reward balance
// and zeroes the balance so it cannot be redeemed twice concurrently.
// Any failure leaves the order without rewards; it never fails creation.
func (s *orderService) redeemRewards(ctx context.Context, order *entities.Order) {
	offset, err := s.clients.Profiles.GetRewardOffset(ctx, order.CustomerID)
	if err != nil {
		s.logger.Warn("failed to get reward offset, creating order without rewards",
			slog.String("customer_id", order.CustomerID), slog.Any("error", err))
		return
	}
	if offset.RewardAmount <= 0 && offset.RewardPoints <= 0 {
		return
	}

	// Redemption is clamped to the subtotal so the total never goes
	// negative.
	amount := offset.RewardAmount
	if amount > order.TotalPrice {
		amount = order.TotalPrice
	}

	order.RewardsAmountUsed = amount
	order.CustomerRewardsPointsUsed = offset.RewardPoints
	order.TotalPrice -= amount

	if err := s.clients.Profiles.UpdateCustomerRewards(ctx, order.CustomerID, 0); err != nil {
		s.logger.Error("failed to zero out customer reward points",
			slog.String("customer_id", order.CustomerID), slog.Any("error", err))
	}
}

// decrementStock writes the new stock level for every distinct product in
// the order. Calls run concurrently on a bounded pool; every product is
// attempted and failures are aggregated. Stock already decremented before
// a failure is not restored.
func (s *orderService) decrementStock(ctx context.Context, order entities.Order, products []entities.Product) error {
	quantities := make(map[string]int, len(order.OrderItems))
	for _, item := range order.OrderItems {
		quantities[item.ProductID] += item.Quantity
	}

	updates := make([]entities.Product, 0, len(products))
	for _, p := range products {
		qty, ok := quantities[p.ProductID]
		if !ok {
			continue
		}
		p.AvailableStock -= qty
		updates = append(updates, p)
	}

	var failures atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.stockWorkers)
	for _, p := range updates {
		p := p
		g.Go(func() error {
			if err := s.clients.Products.UpdateProduct(ctx, p); err != nil {
				s.logger.Error("failed to update product stock",
					slog.String("product_id", p.ProductID),
					slog.String("order_id", order.OrderID),
					slog.Any("error", err))
				failures.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := failures.Load(); n > 0 {
		return fmt.Errorf("%w: %d of %d products", entities.ErrStockUpdateFailed, n, len(updates))
	}
	return nil
}

func distinctProductIDs(items []entities.CartItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

// priceItems carries only cart items with a matching product into the
// order, stamped with the authoritative listing price.
func priceItems(cartItems []entities.CartItem, products []entities.Product) []entities.Item {
	prices := make(map[string]int64, len(products))
	for _, p := range products {
		prices[p.ProductID] = p.ListingPrice
	}

	items := make([]entities.Item, 0, len(cartItems))
	for _, it := range cartItems {
		price, ok := prices[it.ProductID]
		if !ok {
			continue
		}
		items = append(items, entities.Item{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: price,
		})
	}
	return items
}

func subtotal(items []entities.Item) int64 {
	var total int64
	for _, it := range items {
		total += it.UnitPrice * int64(it.Quantity)
	}
	return total
}
