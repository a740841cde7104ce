package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/localmart/order-service/internal/entities"
	"github.com/localmart/order-service/internal/events"
)

// StatusPayload carries transition-specific input. Only DELIVERY_ACCEPTED
// reads it; every other transition ignores it.
type StatusPayload struct {
	DeliveryPartnerID string
}

// transitionFunc applies one target-status transition to an active order
// and returns the mutated order.
type transitionFunc func(ctx context.Context, order entities.Order, payload StatusPayload) (entities.Order, error)

// UpdateOrderStatus validates the requested transition against the lookup
// table, runs its side effects and migrates the order between collections
// when the target is terminal.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID string, target entities.OrderStatus, payload StatusPayload) error {
	handler, ok := s.transitions[target]
	if !ok {
		return fmt.Errorf("%w: %q", entities.ErrInvalidStatus, target)
	}

	order, err := s.store.Get(ctx, entities.CollectionActive, orderID)
	if err != nil {
		return err
	}

	updated, err := handler(ctx, order, payload)
	if err != nil {
		return err
	}

	s.cache.Delete(orderID)
	s.publish(ctx, events.OrderStatusChanged, updated)
	s.logger.Info("order status updated",
		slog.String("order_id", orderID),
		slog.String("status", string(target)))
	return nil
}

// merchantTransition covers ACCEPTED and READY: a plain in-place status
// update by the merchant, no external side effects.
func (s *orderService) merchantTransition(target entities.OrderStatus) transitionFunc {
	return func(ctx context.Context, order entities.Order, _ StatusPayload) (entities.Order, error) {
		upd := entities.StatusUpdate{
			Status:    target,
			UpdatedBy: entities.ActorMerchant,
			UpdatedAt: time.Now(),
		}
		if err := s.store.UpdateStatus(ctx, order.OrderID, upd); err != nil {
			return entities.Order{}, err
		}
		order.Status = target
		order.UpdatedBy = upd.UpdatedBy
		order.UpdatedAt = upd.UpdatedAt
		return order, nil
	}
}

func (s *orderService) acceptDelivery(ctx context.Context, order entities.Order, payload StatusPayload) (entities.Order, error) {
	if !order.UseDelivery {
		return entities.Order{}, entities.ErrDeliveryNotOpted
	}
	if payload.DeliveryPartnerID == "" {
		return entities.Order{}, entities.ErrDeliveryPartnerRequired
	}

	if err := s.clients.Delivery.CreateDelivery(ctx, order.OrderID, payload.DeliveryPartnerID, order.CustomerID); err != nil {
		return entities.Order{}, fmt.Errorf("%w: %v", entities.ErrDeliveryUpdateFailed, err)
	}

	partnerID := payload.DeliveryPartnerID
	upd := entities.StatusUpdate{
		Status:            entities.StatusDeliveryAccepted,
		UpdatedBy:         entities.ActorDeliveryPartner,
		UpdatedAt:         time.Now(),
		DeliveryPartnerID: &partnerID,
	}
	if err := s.store.UpdateStatus(ctx, order.OrderID, upd); err != nil {
		return entities.Order{}, err
	}
	order.Status = upd.Status
	order.DeliveryPartnerID = partnerID
	order.UpdatedBy = upd.UpdatedBy
	order.UpdatedAt = upd.UpdatedAt
	return order, nil
}

func (s *orderService) pickUpDelivery(ctx context.Context, order entities.Order, _ StatusPayload) (entities.Order, error) {
	if !order.UseDelivery {
		return entities.Order{}, entities.ErrDeliveryNotOpted
	}
	if order.DeliveryPartnerID == "" {
		return entities.Order{}, entities.ErrDeliveryNotStarted
	}

	if err := s.clients.Delivery.UpdateDeliveryStatus(ctx, order.OrderID, order.CustomerID,
		order.DeliveryPartnerID, entities.StatusDeliveryPickedUp); err != nil {
		return entities.Order{}, fmt.Errorf("%w: %v", entities.ErrDeliveryUpdateFailed, err)
	}

	upd := entities.StatusUpdate{
		Status:    entities.StatusDeliveryPickedUp,
		UpdatedBy: entities.ActorDeliveryPartner,
		UpdatedAt: time.Now(),
	}
	if err := s.store.UpdateStatus(ctx, order.OrderID, upd); err != nil {
		return entities.Order{}, err
	}
	order.Status = upd.Status
	order.UpdatedBy = upd.UpdatedBy
	order.UpdatedAt = upd.UpdatedAt
	return order, nil
}

// completeOrder notifies the delivery service first when a partner is
// assigned (that call gates the transition), migrates the order into the
// completed collection, then credits merchant earnings and customer reward
// points best-effort.
func (s *orderService) completeOrder(ctx context.Context, order entities.Order, _ StatusPayload) (entities.Order, error) {
	if order.UseDelivery && order.DeliveryPartnerID != "" {
		if err := s.clients.Delivery.UpdateDeliveryStatus(ctx, order.OrderID, order.CustomerID,
			order.DeliveryPartnerID, entities.StatusCompleted); err != nil {
			return entities.Order{}, fmt.Errorf("%w: %v", entities.ErrDeliveryUpdateFailed, err)
		}
	}

	updatedBy := entities.ActorMerchant
	if order.UseDelivery {
		updatedBy = entities.ActorDeliveryPartner
	}

	migrated, err := s.migrate(ctx, order.OrderID, entities.StatusCompleted, updatedBy, entities.CollectionCompleted)
	if err != nil {
		return entities.Order{}, err
	}

	if err := s.clients.Profiles.UpdateMerchantEarnings(ctx, migrated.MerchantID, migrated.TotalPrice); err != nil {
		s.logger.Error("failed to credit merchant earnings",
			slog.String("order_id", migrated.OrderID), slog.Any("error", err))
	}
	if err := s.clients.Profiles.UpdateCustomerRewards(ctx, migrated.CustomerID, migrated.TotalPrice); err != nil {
		s.logger.Error("failed to credit customer reward points",
			slog.String("order_id", migrated.OrderID), slog.Any("error", err))
	}
	return migrated, nil
}

// cancelOrder migrates the order into the cancelled collection and refunds
// any reward points redeemed at creation, best-effort.
func (s *orderService) cancelOrder(ctx context.Context, order entities.Order, _ StatusPayload) (entities.Order, error) {
	migrated, err := s.migrate(ctx, order.OrderID, entities.StatusCancelled, entities.ActorMerchant, entities.CollectionCancelled)
	if err != nil {
		return entities.Order{}, err
	}

	if migrated.CustomerRewardsPointsUsed > 0 {
		if err := s.clients.Profiles.UpdateCustomerRewards(ctx, migrated.CustomerID, migrated.CustomerRewardsPointsUsed); err != nil {
			s.logger.Error("failed to refund customer reward points",
				slog.String("order_id", migrated.OrderID), slog.Any("error", err))
		}
	}
	return migrated, nil
}

// migrate re-fetches the order under a row lock and moves it to the
// destination collection in one transaction, so concurrent terminal
// transitions serialize and the order id never appears in two collections.
func (s *orderService) migrate(ctx context.Context, orderID string, status entities.OrderStatus, by entities.Actor, to entities.Collection) (entities.Order, error) {
	var migrated entities.Order
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		order, err := s.store.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		order.Status = status
		order.UpdatedBy = by
		order.UpdatedAt = time.Now()
		if err := s.store.Move(ctx, order, to); err != nil {
			return err
		}
		migrated = order
		return nil
	})
	if err != nil {
		return entities.Order{}, err
	}
	return migrated, nil
}
