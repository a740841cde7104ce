package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/localmart/order-service/internal/entities"
	"github.com/localmart/order-service/internal/events"
	"github.com/localmart/order-service/internal/saga"
	"github.com/localmart/order-service/pkg/httpx"
	"github.com/localmart/order-service/pkg/trm"
)

type OrderStore interface {
	Insert(ctx context.Context, o entities.Order) error
	Get(ctx context.Context, coll entities.Collection, orderID string) (entities.Order, error)
	GetForUpdate(ctx context.Context, orderID string) (entities.Order, error)
	UpdateStatus(ctx context.Context, orderID string, upd entities.StatusUpdate) error
	Move(ctx context.Context, o entities.Order, to entities.Collection) error
	Delete(ctx context.Context, orderID string) error
	ListByProfile(ctx context.Context, coll entities.Collection, profile entities.ProfileType, profileID string) ([]entities.Order, error)
	ListReadyForDelivery(ctx context.Context) ([]entities.Order, error)
}

type CartClient interface {
	GetCart(ctx context.Context, customerID string) (entities.Cart, error)
	DeleteCart(ctx context.Context, customerID string) error
}

type ProductClient interface {
	GetProducts(ctx context.Context, productIDs []string) ([]entities.Product, error)
	UpdateProduct(ctx context.Context, product entities.Product) error
}

type ProfileClient interface {
	GetRewardOffset(ctx context.Context, customerID string) (entities.RewardOffset, error)
	UpdateCustomerRewards(ctx context.Context, customerID string, amount int64) error
	UpdateMerchantEarnings(ctx context.Context, merchantID string, amount int64) error
}

type DeliveryClient interface {
	CreateDelivery(ctx context.Context, orderID, deliveryPartnerID, customerID string) error
	UpdateDeliveryStatus(ctx context.Context, orderID, customerID, deliveryPartnerID string, status entities.OrderStatus) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.OrderEvent) error
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

// ExternalClients groups the collaborator services the orchestrator calls.
type ExternalClients struct {
	Cart     CartClient
	Products ProductClient
	Profiles ProfileClient
	Delivery DeliveryClient
}

type orderService struct {
	logger    *slog.Logger
	txManager trm.Manager
	store     OrderStore
	cache     Cache
	saga      *saga.Runner
	clients   ExternalClients
	publisher EventPublisher

	stockWorkers int

	transitions map[entities.OrderStatus]transitionFunc
}

func NewOrderService(
	logger *slog.Logger,
	txManager trm.Manager,
	store OrderStore,
	cache Cache,
	clients ExternalClients,
	publisher EventPublisher,
	stockWorkers int,
) *orderService {
	if stockWorkers <= 0 {
		stockWorkers = 1
	}
	s := &orderService{
		logger:       logger.With(slog.String("service", "order")),
		txManager:    txManager,
		store:        store,
		cache:        cache,
		saga:         saga.NewRunner(logger),
		clients:      clients,
		publisher:    publisher,
		stockWorkers: stockWorkers,
	}
	s.transitions = map[entities.OrderStatus]transitionFunc{
		entities.StatusAccepted:         s.merchantTransition(entities.StatusAccepted),
		entities.StatusReady:            s.merchantTransition(entities.StatusReady),
		entities.StatusDeliveryAccepted: s.acceptDelivery,
		entities.StatusDeliveryPickedUp: s.pickUpDelivery,
		entities.StatusCompleted:        s.completeOrder,
		entities.StatusCancelled:        s.cancelOrder,
	}
	return s
}

var repoRetry = httpx.RetryConfig{
	InitialDelay: 100 * time.Millisecond,
	MaxAttempts:  5,
	Multiplier:   2,
}

// GetOrder returns an active order by id, serving from cache when possible.
func (s *orderService) GetOrder(ctx context.Context, orderID string) (entities.Order, error) {
	if data, ok := s.cache.Get(orderID); ok {
		var order entities.Order
		if err := order.Unmarshal(data); err != nil {
			s.logger.Error("failed to unmarshal cached order", slog.String("order_id", orderID), slog.Any("error", err))
			return entities.Order{}, err
		}
		return order, nil
	}

	var order entities.Order
	fn := func() error {
		var err error
		order, err = s.store.Get(ctx, entities.CollectionActive, orderID)
		return err
	}
	if err := httpx.Retry(repoRetry, fn, entities.ErrOrderNotFound); err != nil {
		return entities.Order{}, err
	}

	data, err := order.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal order", slog.String("order_id", orderID), slog.Any("error", err))
		return entities.Order{}, err
	}
	s.cache.Set(orderID, data)
	return order, nil
}

// ListOrders returns the orders of one profile from the requested
// collections; listType "all" concatenates active, completed and cancelled.
func (s *orderService) ListOrders(ctx context.Context, listType, profileType, profileID string) ([]entities.Order, error) {
	lt, err := entities.ParseListType(listType)
	if err != nil {
		return nil, err
	}
	profile, err := entities.ParseProfileType(profileType)
	if err != nil {
		return nil, err
	}

	var colls []entities.Collection
	switch lt {
	case entities.ListActive:
		colls = []entities.Collection{entities.CollectionActive}
	case entities.ListCompleted:
		colls = []entities.Collection{entities.CollectionCompleted}
	case entities.ListCancelled:
		colls = []entities.Collection{entities.CollectionCancelled}
	case entities.ListAll:
		colls = []entities.Collection{
			entities.CollectionActive,
			entities.CollectionCompleted,
			entities.CollectionCancelled,
		}
	}

	var orders []entities.Order
	for _, coll := range colls {
		found, err := s.store.ListByProfile(ctx, coll, profile, profileID)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s orders: %w", coll, err)
		}
		orders = append(orders, found...)
	}

	if len(orders) == 0 {
		return nil, entities.ErrOrderNotFound
	}
	return orders, nil
}

// ActiveOrdersForDelivery returns READY orders that opted for delivery.
func (s *orderService) ActiveOrdersForDelivery(ctx context.Context) ([]entities.Order, error) {
	orders, err := s.store.ListReadyForDelivery(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for delivery: %w", err)
	}
	if len(orders) == 0 {
		return nil, entities.ErrOrderNotFound
	}
	return orders, nil
}

func (s *orderService) publish(ctx context.Context, t events.EventType, order entities.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.FromOrder(t, order)); err != nil {
		s.logger.Warn("failed to publish order event",
			slog.String("order_id", order.OrderID),
			slog.String("event", string(t)),
			slog.Any("error", err))
	}
}
