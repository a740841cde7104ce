package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/localmart/order-service/internal/entities"
	"github.com/localmart/order-service/internal/events"
	"github.com/localmart/order-service/internal/service"
	"github.com/localmart/order-service/pkg/trm"
)

// моки из mockery тут не подходят: стор должен помнить состояние между
// вызовами, чтобы проверять миграции между коллекциями

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

type fakeTxManager struct{ beginErr error }

func (m fakeTxManager) BeginTx(ctx context.Context) (context.Context, trm.Transaction, error) {
	return ctx, fakeTx{}, m.beginErr
}

func (m fakeTxManager) Do(ctx context.Context, cb func(ctx context.Context) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	return cb(ctx)
}

// fakeStore is an in-memory three collection store.
type fakeStore struct {
	mu    sync.Mutex
	colls map[entities.Collection]map[string]entities.Order

	insertErr error
	updateErr error
	moveErr   error

	deleted []string
}

func newFakeStore(active ...entities.Order) *fakeStore {
	s := &fakeStore{colls: map[entities.Collection]map[string]entities.Order{
		entities.CollectionActive:    {},
		entities.CollectionCompleted: {},
		entities.CollectionCancelled: {},
	}}
	for _, o := range active {
		s.colls[entities.CollectionActive][o.OrderID] = o
	}
	return s
}

func (s *fakeStore) Insert(ctx context.Context, o entities.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.colls[entities.CollectionActive][o.OrderID] = o
	return nil
}

func (s *fakeStore) Get(ctx context.Context, coll entities.Collection, orderID string) (entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.colls[coll][orderID]
	if !ok {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	return o, nil
}

func (s *fakeStore) GetForUpdate(ctx context.Context, orderID string) (entities.Order, error) {
	return s.Get(ctx, entities.CollectionActive, orderID)
}

func (s *fakeStore) UpdateStatus(ctx context.Context, orderID string, upd entities.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	o, ok := s.colls[entities.CollectionActive][orderID]
	if !ok {
		return entities.ErrOrderNotFound
	}
	o.Status = upd.Status
	o.UpdatedBy = upd.UpdatedBy
	o.UpdatedAt = upd.UpdatedAt
	if upd.DeliveryPartnerID != nil {
		o.DeliveryPartnerID = *upd.DeliveryPartnerID
	}
	s.colls[entities.CollectionActive][orderID] = o
	return nil
}

func (s *fakeStore) Move(ctx context.Context, o entities.Order, to entities.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moveErr != nil {
		return s.moveErr
	}
	delete(s.colls[entities.CollectionActive], o.OrderID)
	s.colls[to][o.OrderID] = o
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.colls[entities.CollectionActive], orderID)
	s.deleted = append(s.deleted, orderID)
	return nil
}

func (s *fakeStore) ListByProfile(ctx context.Context, coll entities.Collection, profile entities.ProfileType, profileID string) ([]entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Order
	for _, o := range s.colls[coll] {
		var id string
		switch profile {
		case entities.ProfileCustomer:
			id = o.CustomerID
		case entities.ProfileMerchant:
			id = o.MerchantID
		case entities.ProfileDeliveryPartner:
			id = o.DeliveryPartnerID
		}
		if id == profileID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeStore) ListReadyForDelivery(ctx context.Context) ([]entities.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Order
	for _, o := range s.colls[entities.CollectionActive] {
		if o.Status == entities.StatusReady && o.UseDelivery {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeStore) in(coll entities.Collection, orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.colls[coll][orderID]
	return ok
}

type fakeCartClient struct {
	cart      entities.Cart
	getErr    error
	deleteErr error

	deleted []string
}

func (c *fakeCartClient) GetCart(ctx context.Context, customerID string) (entities.Cart, error) {
	if c.getErr != nil {
		return entities.Cart{}, c.getErr
	}
	return c.cart, nil
}

func (c *fakeCartClient) DeleteCart(ctx context.Context, customerID string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.deleted = append(c.deleted, customerID)
	return nil
}

type fakeProductClient struct {
	mu       sync.Mutex
	products []entities.Product
	getErr   error
	failIDs  map[string]error

	updated []entities.Product
}

func (c *fakeProductClient) GetProducts(ctx context.Context, productIDs []string) ([]entities.Product, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.products, nil
}

func (c *fakeProductClient) UpdateProduct(ctx context.Context, product entities.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.failIDs[product.ProductID]; ok {
		return err
	}
	c.updated = append(c.updated, product)
	return nil
}

type rewardCall struct {
	profileID string
	amount    int64
}

type fakeProfileClient struct {
	offset    entities.RewardOffset
	offsetErr error
	updateErr error

	rewardCalls  []rewardCall
	earningCalls []rewardCall
}

func (c *fakeProfileClient) GetRewardOffset(ctx context.Context, customerID string) (entities.RewardOffset, error) {
	if c.offsetErr != nil {
		return entities.RewardOffset{}, c.offsetErr
	}
	return c.offset, nil
}

func (c *fakeProfileClient) UpdateCustomerRewards(ctx context.Context, customerID string, amount int64) error {
	if c.updateErr != nil {
		return c.updateErr
	}
	c.rewardCalls = append(c.rewardCalls, rewardCall{profileID: customerID, amount: amount})
	return nil
}

func (c *fakeProfileClient) UpdateMerchantEarnings(ctx context.Context, merchantID string, amount int64) error {
	if c.updateErr != nil {
		return c.updateErr
	}
	c.earningCalls = append(c.earningCalls, rewardCall{profileID: merchantID, amount: amount})
	return nil
}

type deliveryUpdate struct {
	orderID   string
	partnerID string
	status    entities.OrderStatus
}

type fakeDeliveryClient struct {
	createErr error
	updateErr error

	created []string
	updates []deliveryUpdate
}

func (c *fakeDeliveryClient) CreateDelivery(ctx context.Context, orderID, deliveryPartnerID, customerID string) error {
	if c.createErr != nil {
		return c.createErr
	}
	c.created = append(c.created, orderID)
	return nil
}

func (c *fakeDeliveryClient) UpdateDeliveryStatus(ctx context.Context, orderID, customerID, deliveryPartnerID string, status entities.OrderStatus) error {
	if c.updateErr != nil {
		return c.updateErr
	}
	c.updates = append(c.updates, deliveryUpdate{orderID: orderID, partnerID: deliveryPartnerID, status: status})
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []events.OrderEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type fakeCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{m: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
}

func (c *fakeCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}

// orderAPI re-declares the service surface, NewOrderService returns an
// unexported type.
type orderAPI interface {
	CreateOrder(ctx context.Context, customerID string, useRewards, useDelivery bool) (string, error)
	GetOrder(ctx context.Context, orderID string) (entities.Order, error)
	ListOrders(ctx context.Context, listType, profileType, profileID string) ([]entities.Order, error)
	ActiveOrdersForDelivery(ctx context.Context) ([]entities.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, target entities.OrderStatus, payload service.StatusPayload) error
}

type testDeps struct {
	store     *fakeStore
	cache     *fakeCache
	cart      *fakeCartClient
	products  *fakeProductClient
	profiles  *fakeProfileClient
	delivery  *fakeDeliveryClient
	publisher *fakePublisher
}

func newTestService(t *testing.T, deps testDeps) orderAPI {
	t.Helper()
	if deps.store == nil {
		deps.store = newFakeStore()
	}
	if deps.cache == nil {
		deps.cache = newFakeCache()
	}
	if deps.cart == nil {
		deps.cart = &fakeCartClient{}
	}
	if deps.products == nil {
		deps.products = &fakeProductClient{}
	}
	if deps.profiles == nil {
		deps.profiles = &fakeProfileClient{}
	}
	if deps.delivery == nil {
		deps.delivery = &fakeDeliveryClient{}
	}
	if deps.publisher == nil {
		deps.publisher = &fakePublisher{}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewOrderService(
		logger,
		fakeTxManager{},
		deps.store,
		deps.cache,
		service.ExternalClients{
			Cart:     deps.cart,
			Products: deps.products,
			Profiles: deps.profiles,
			Delivery: deps.delivery,
		},
		deps.publisher,
		2,
	)
}
