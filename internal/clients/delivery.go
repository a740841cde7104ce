package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/localmart/order-service/internal/entities"
)

type DeliveryClient struct {
	apiClient
}

func NewDeliveryClient(baseURL string, httpClient *http.Client, timeout time.Duration) *DeliveryClient {
	return &DeliveryClient{apiClient: newAPIClient(baseURL, httpClient, timeout)}
}

// CreateDelivery opens a delivery record when a delivery partner accepts an
// order. The remote does not guarantee idempotency, so callers must not
// retry this.
func (c *DeliveryClient) CreateDelivery(ctx context.Context, orderID, deliveryPartnerID, customerID string) error {
	query := url.Values{
		"orderId":          {orderID},
		"deliveryPersonId": {deliveryPartnerID},
		"customerId":       {customerID},
	}
	if err := c.do(ctx, http.MethodPost, "/deliveries", query, nil, nil); err != nil {
		return fmt.Errorf("failed to create delivery: %w", err)
	}
	return nil
}

type deliveryStatusJSON struct {
	OrderID          string `json:"orderId"`
	CustomerID       string `json:"customerId"`
	DeliveryPersonID string `json:"deliveryPersonId"`
	Status           string `json:"status"`
	Message          string `json:"message,omitempty"`
}

// UpdateDeliveryStatus moves an existing delivery record to the given order
// status (picked up, completed).
func (c *DeliveryClient) UpdateDeliveryStatus(ctx context.Context, orderID, customerID, deliveryPartnerID string, status entities.OrderStatus) error {
	body := deliveryStatusJSON{
		OrderID:          orderID,
		CustomerID:       customerID,
		DeliveryPersonID: deliveryPartnerID,
		Status:           string(status),
		Message:          "delivery status updated for order " + orderID,
	}
	if err := c.do(ctx, http.MethodPut, "/deliveries/status", nil, body, nil); err != nil {
		return fmt.Errorf("failed to update delivery status: %w", err)
	}
	return nil
}
