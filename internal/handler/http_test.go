package handler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/localmart/order-service/internal/entities"
	"github.com/localmart/order-service/internal/handler"
	"github.com/localmart/order-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	createFn func(ctx context.Context, customerID string, useRewards, useDelivery bool) (string, error)
	getFn    func(ctx context.Context, orderID string) (entities.Order, error)
	listFn   func(ctx context.Context, listType, profileType, profileID string) ([]entities.Order, error)
	activeFn func(ctx context.Context) ([]entities.Order, error)
	updateFn func(ctx context.Context, orderID string, target entities.OrderStatus, payload service.StatusPayload) error
}

func (s *stubService) CreateOrder(ctx context.Context, customerID string, useRewards, useDelivery bool) (string, error) {
	return s.createFn(ctx, customerID, useRewards, useDelivery)
}

func (s *stubService) GetOrder(ctx context.Context, orderID string) (entities.Order, error) {
	return s.getFn(ctx, orderID)
}

func (s *stubService) ListOrders(ctx context.Context, listType, profileType, profileID string) ([]entities.Order, error) {
	return s.listFn(ctx, listType, profileType, profileID)
}

func (s *stubService) ActiveOrdersForDelivery(ctx context.Context) ([]entities.Order, error) {
	return s.activeFn(ctx)
}

func (s *stubService) UpdateOrderStatus(ctx context.Context, orderID string, target entities.OrderStatus, payload service.StatusPayload) error {
	return s.updateFn(ctx, orderID, target, payload)
}

func newRouter(t *testing.T, svc *stubService) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewHTTPHandler(logger, svc)
	r := chi.NewRouter()
	h.Init(r)
	return r
}

func TestHTTPHandler_CreateOrder(t *testing.T) {
	testCases := []struct {
		name       string
		target     string
		createFn   func(ctx context.Context, customerID string, useRewards, useDelivery bool) (string, error)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "success",
			target: "/customers/customer-1/orders?useRewards=true&useDelivery=true",
			createFn: func(ctx context.Context, customerID string, useRewards, useDelivery bool) (string, error) {
				assert.Equal(t, "customer-1", customerID)
				assert.True(t, useRewards)
				assert.True(t, useDelivery)
				return "order-1", nil
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"orderId":"order-1"`,
		},
		{
			name:   "flags default to false",
			target: "/customers/customer-1/orders",
			createFn: func(ctx context.Context, customerID string, useRewards, useDelivery bool) (string, error) {
				assert.False(t, useRewards)
				assert.False(t, useDelivery)
				return "order-1", nil
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"status":"SUCCESS"`,
		},
		{
			name:   "cart not found",
			target: "/customers/customer-1/orders",
			createFn: func(ctx context.Context, customerID string, useRewards, useDelivery bool) (string, error) {
				return "", entities.ErrCartNotFound
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `"cart not found"`,
		},
		{
			name:   "internal error",
			target: "/customers/customer-1/orders",
			createFn: func(ctx context.Context, customerID string, useRewards, useDelivery bool) (string, error) {
				return "", errors.New("db error")
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"internal server error"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(t, &stubService{createFn: tc.createFn})

			req := httptest.NewRequest(http.MethodPost, tc.target, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
		})
	}
}

func TestHTTPHandler_GetOrder(t *testing.T) {
	validOrder := entities.Order{
		OrderID:    "order-1",
		CustomerID: "customer-1",
		TotalPrice: 2000,
		Status:     entities.StatusCreated,
	}

	testCases := []struct {
		name       string
		orderID    string
		getFn      func(ctx context.Context, orderID string) (entities.Order, error)
		wantStatus int
		wantBody   string
	}{
		{
			name:    "success",
			orderID: "order-1",
			getFn: func(ctx context.Context, orderID string) (entities.Order, error) {
				assert.Equal(t, "order-1", orderID)
				return validOrder, nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `"orderId":"order-1"`,
		},
		{
			name:    "not found",
			orderID: "not-exist",
			getFn: func(ctx context.Context, orderID string) (entities.Order, error) {
				return entities.Order{}, entities.ErrOrderNotFound
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `"order not found"`,
		},
		{
			name:    "internal error",
			orderID: "order-1",
			getFn: func(ctx context.Context, orderID string) (entities.Order, error) {
				return entities.Order{}, errors.New("db error")
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"internal server error"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(t, &stubService{getFn: tc.getFn})

			req := httptest.NewRequest(http.MethodGet, "/orders/"+tc.orderID, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
		})
	}
}

func TestHTTPHandler_ListOrders(t *testing.T) {
	testCases := []struct {
		name       string
		target     string
		listFn     func(ctx context.Context, listType, profileType, profileID string) ([]entities.Order, error)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "success",
			target: "/orders/active/customer/customer-1",
			listFn: func(ctx context.Context, listType, profileType, profileID string) ([]entities.Order, error) {
				assert.Equal(t, "active", listType)
				assert.Equal(t, "customer", profileType)
				assert.Equal(t, "customer-1", profileID)
				return []entities.Order{{OrderID: "order-1"}}, nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `"orderId":"order-1"`,
		},
		{
			name:   "unknown list type",
			target: "/orders/archived/customer/customer-1",
			listFn: func(ctx context.Context, listType, profileType, profileID string) ([]entities.Order, error) {
				return nil, entities.ErrInvalidListType
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"status":"FAILURE"`,
		},
		{
			name:   "no orders",
			target: "/orders/active/customer/customer-1",
			listFn: func(ctx context.Context, listType, profileType, profileID string) ([]entities.Order, error) {
				return nil, entities.ErrOrderNotFound
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `"order not found"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(t, &stubService{listFn: tc.listFn})

			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
		})
	}
}

func TestHTTPHandler_ActiveOrdersForDelivery(t *testing.T) {
	r := newRouter(t, &stubService{
		activeFn: func(ctx context.Context) ([]entities.Order, error) {
			return []entities.Order{{OrderID: "order-1", UseDelivery: true}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/delivery/active", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"orderId":"order-1"`)
}

func TestHTTPHandler_UpdateOrderStatus(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		updateFn   func(ctx context.Context, orderID string, target entities.OrderStatus, payload service.StatusPayload) error
		wantStatus int
		wantBody   string
	}{
		{
			name: "success",
			body: `{"status":"ACCEPTED"}`,
			updateFn: func(ctx context.Context, orderID string, target entities.OrderStatus, payload service.StatusPayload) error {
				assert.Equal(t, "order-1", orderID)
				assert.Equal(t, entities.StatusAccepted, target)
				return nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `"status":"SUCCESS"`,
		},
		{
			name: "delivery partner is passed through",
			body: `{"status":"DELIVERY_ACCEPTED","deliveryPartnerId":"dp-1"}`,
			updateFn: func(ctx context.Context, orderID string, target entities.OrderStatus, payload service.StatusPayload) error {
				assert.Equal(t, entities.StatusDeliveryAccepted, target)
				assert.Equal(t, "dp-1", payload.DeliveryPartnerID)
				return nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `"status":"SUCCESS"`,
		},
		{
			name:       "unknown status",
			body:       `{"status":"SHIPPED"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"unknown order status"`,
		},
		{
			name:       "missing status",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"invalid request"`,
		},
		{
			name:       "malformed body",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"invalid request body"`,
		},
		{
			name: "invalid transition",
			body: `{"status":"DELIVERY_PICKED_UP"}`,
			updateFn: func(ctx context.Context, orderID string, target entities.OrderStatus, payload service.StatusPayload) error {
				return entities.ErrDeliveryNotStarted
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"status":"FAILURE"`,
		},
		{
			name: "order not found",
			body: `{"status":"ACCEPTED"}`,
			updateFn: func(ctx context.Context, orderID string, target entities.OrderStatus, payload service.StatusPayload) error {
				return entities.ErrOrderNotFound
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `"order not found"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(t, &stubService{updateFn: tc.updateFn})

			req := httptest.NewRequest(http.MethodPut, "/orders/order-1/status", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
		})
	}
}
