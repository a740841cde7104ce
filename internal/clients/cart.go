package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/localmart/order-service/internal/entities"
)

type CartClient struct {
	apiClient
}

func NewCartClient(baseURL string, httpClient *http.Client, timeout time.Duration) *CartClient {
	return &CartClient{apiClient: newAPIClient(baseURL, httpClient, timeout)}
}

type cartItemJSON struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartJSON struct {
	CustomerID string         `json:"customerId"`
	MerchantID string         `json:"merchantId"`
	CartItems  []cartItemJSON `json:"cartItems"`
	CreatedAt  int64          `json:"createdAt"`
	UpdatedAt  int64          `json:"updatedAt"`
}

// GetCart returns the customer's current cart. An absent or empty cart is
// reported as entities.ErrCartNotFound.
func (c *CartClient) GetCart(ctx context.Context, customerID string) (entities.Cart, error) {
	var body cartJSON
	err := c.get(ctx, "/carts/"+customerID, nil, &body)
	if errors.Is(err, ErrNotFound) {
		return entities.Cart{}, entities.ErrCartNotFound
	}
	if err != nil {
		return entities.Cart{}, fmt.Errorf("failed to get cart: %w", err)
	}
	if len(body.CartItems) == 0 {
		return entities.Cart{}, entities.ErrCartNotFound
	}

	cart := entities.Cart{
		CustomerID: body.CustomerID,
		MerchantID: body.MerchantID,
		CartItems:  make([]entities.CartItem, 0, len(body.CartItems)),
		CreatedAt:  time.UnixMilli(body.CreatedAt),
		UpdatedAt:  time.UnixMilli(body.UpdatedAt),
	}
	for _, it := range body.CartItems {
		cart.CartItems = append(cart.CartItems, entities.CartItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return cart, nil
}

func (c *CartClient) DeleteCart(ctx context.Context, customerID string) error {
	if err := c.do(ctx, http.MethodDelete, "/carts/"+customerID, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
