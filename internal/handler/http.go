package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/localmart/order-service/internal/entities"
	"github.com/localmart/order-service/internal/service"
	"github.com/localmart/order-service/pkg/httpx"
)

type OrderService interface {
	CreateOrder(ctx context.Context, customerID string, useRewards, useDelivery bool) (string, error)
	GetOrder(ctx context.Context, orderID string) (entities.Order, error)
	ListOrders(ctx context.Context, listType, profileType, profileID string) ([]entities.Order, error)
	ActiveOrdersForDelivery(ctx context.Context) ([]entities.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, target entities.OrderStatus, payload service.StatusPayload) error
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
}

func NewHTTPHandler(logger *slog.Logger, svc OrderService) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: validator.New(),
		svc:      svc,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Post("/customers/{customer_id}/orders", h.CreateOrder)
	r.Get("/orders/delivery/active", h.ActiveOrdersForDelivery)
	r.Get("/orders/{order_id}", h.GetOrder)
	r.Get("/orders/{list_type}/{profile_type}/{profile_id}", h.ListOrders)
	r.Put("/orders/{order_id}/status", h.UpdateOrderStatus)
}

// CreateOrder создает заказ из корзины покупателя.
// @Summary      Создать заказ
// @Description  Формирует заказ из текущей корзины покупателя
// @Tags         orders
// @Param        customer_id  path   string  true   "Идентификатор покупателя"
// @Param        useRewards   query  bool    false  "Списать бонусные баллы"
// @Param        useDelivery  query  bool    false  "Заказ с доставкой"
// @Success      201  {object}  httpx.Response{data=CreatedOrder}
// @Failure      404  {object}  httpx.Response "Корзина не найдена"
// @Failure      500  {object}  httpx.Response "Внутренняя ошибка сервера"
// @Router       /customers/{customer_id}/orders [post]
func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := chi.URLParam(r, "customer_id")

	if err := h.validate.Var(customerID, "required"); err != nil {
		httpx.WriteValidationError(w, err)
		return
	}

	useRewards, _ := strconv.ParseBool(r.URL.Query().Get("useRewards"))
	useDelivery, _ := strconv.ParseBool(r.URL.Query().Get("useDelivery"))

	orderID, err := h.svc.CreateOrder(ctx, customerID, useRewards, useDelivery)
	if err != nil {
		ordersFailed.Inc()
		h.writeError(ctx, w, err, slog.String("customerID", customerID))
		return
	}

	ordersCreated.Inc()
	httpx.WriteSuccess(w, "order created successfully", CreatedOrder{OrderID: orderID}, http.StatusCreated)
}

// GetOrder возвращает заказ по ID.
// @Summary      Получить заказ
// @Description  Ищет заказ во всех коллекциях по его идентификатору
// @Tags         orders
// @Param        order_id  path  string  true  "Идентификатор заказа"
// @Success      200  {object}  httpx.Response{data=Order}
// @Failure      404  {object}  httpx.Response "Заказ не найден"
// @Failure      500  {object}  httpx.Response "Внутренняя ошибка сервера"
// @Router       /orders/{order_id} [get]
func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	if err := h.validate.Var(orderID, "required"); err != nil {
		httpx.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.GetOrder(ctx, orderID)
	if err != nil {
		h.writeError(ctx, w, err, slog.String("orderID", orderID))
		return
	}

	httpx.WriteSuccess(w, "order retrieved successfully", OrderEntityToJSON(order), http.StatusOK)
}

// ListOrders возвращает заказы профиля.
// @Summary      Список заказов профиля
// @Description  Возвращает заказы покупателя, продавца или курьера из выбранной коллекции
// @Tags         orders
// @Param        list_type     path  string  true  "active | completed | cancelled | all"
// @Param        profile_type  path  string  true  "customer | merchant | deliveryPartner"
// @Param        profile_id    path  string  true  "Идентификатор профиля"
// @Success      200  {object}  httpx.Response{data=[]Order}
// @Failure      400  {object}  httpx.Response "Неизвестный тип списка или профиля"
// @Failure      404  {object}  httpx.Response "Заказы не найдены"
// @Failure      500  {object}  httpx.Response "Внутренняя ошибка сервера"
// @Router       /orders/{list_type}/{profile_type}/{profile_id} [get]
func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listType := chi.URLParam(r, "list_type")
	profileType := chi.URLParam(r, "profile_type")
	profileID := chi.URLParam(r, "profile_id")

	if err := h.validate.Var(profileID, "required"); err != nil {
		httpx.WriteValidationError(w, err)
		return
	}

	orders, err := h.svc.ListOrders(ctx, listType, profileType, profileID)
	if err != nil {
		h.writeError(ctx, w, err, slog.String("profileID", profileID))
		return
	}

	httpx.WriteSuccess(w, "orders retrieved successfully", OrdersEntityToJSON(orders), http.StatusOK)
}

// ActiveOrdersForDelivery возвращает заказы, готовые к доставке.
// @Summary      Заказы для курьеров
// @Description  Возвращает готовые заказы с доставкой, еще не принятые курьером
// @Tags         orders
// @Success      200  {object}  httpx.Response{data=[]Order}
// @Failure      500  {object}  httpx.Response "Внутренняя ошибка сервера"
// @Router       /orders/delivery/active [get]
func (h *HTTPHandler) ActiveOrdersForDelivery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders, err := h.svc.ActiveOrdersForDelivery(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, "orders retrieved successfully", OrdersEntityToJSON(orders), http.StatusOK)
}

// UpdateOrderStatus переводит заказ в новый статус.
// @Summary      Обновить статус заказа
// @Description  Применяет переход статуса и при необходимости переносит заказ между коллекциями
// @Tags         orders
// @Param        order_id  path  string               true  "Идентификатор заказа"
// @Param        body      body  UpdateStatusRequest  true  "Целевой статус"
// @Success      200  {object}  httpx.Response
// @Failure      400  {object}  httpx.Response "Недопустимый переход"
// @Failure      404  {object}  httpx.Response "Заказ не найден"
// @Failure      500  {object}  httpx.Response "Внутренняя ошибка сервера"
// @Router       /orders/{order_id}/status [put]
func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	var req UpdateStatusRequest
	if err := httpx.DecodeBody(r, &req); err != nil {
		httpx.WriteFailure(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		httpx.WriteValidationError(w, err)
		return
	}

	status, err := entities.ParseOrderStatus(req.Status)
	if err != nil {
		statusUpdates.WithLabelValues(req.Status, "rejected").Inc()
		httpx.WriteFailure(w, "unknown order status", http.StatusBadRequest)
		return
	}

	err = h.svc.UpdateOrderStatus(ctx, orderID, status, service.StatusPayload{
		DeliveryPartnerID: req.DeliveryPartnerID,
	})
	if err != nil {
		statusUpdates.WithLabelValues(req.Status, "rejected").Inc()
		h.writeError(ctx, w, err, slog.String("orderID", orderID), slog.String("status", req.Status))
		return
	}

	statusUpdates.WithLabelValues(req.Status, "applied").Inc()
	httpx.WriteSuccess(w, "order status updated successfully", nil, http.StatusOK)
}

func (h *HTTPHandler) writeError(ctx context.Context, w http.ResponseWriter, err error, attrs ...any) {
	switch {
	case errors.Is(err, entities.ErrOrderNotFound):
		httpx.WriteFailure(w, "order not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrCartNotFound):
		httpx.WriteFailure(w, "cart not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrInvalidStatus),
		errors.Is(err, entities.ErrInvalidListType),
		errors.Is(err, entities.ErrInvalidProfileType),
		errors.Is(err, entities.ErrDeliveryNotOpted),
		errors.Is(err, entities.ErrDeliveryNotStarted),
		errors.Is(err, entities.ErrDeliveryPartnerRequired):
		httpx.WriteFailure(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.ErrorContext(ctx, "request failed", append(attrs, slog.Any("error", err))...)
		httpx.WriteFailure(w, "internal server error", http.StatusInternalServerError)
	}
}
