package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/localmart/order-service/internal/entities"
)

type ProductClient struct {
	apiClient
}

func NewProductClient(baseURL string, httpClient *http.Client, timeout time.Duration) *ProductClient {
	return &ProductClient{apiClient: newAPIClient(baseURL, httpClient, timeout)}
}

type productJSON struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	MerchantID     string `json:"merchantId"`
	CategoryID     string `json:"categoryId"`
	ListingPrice   int64  `json:"listingPrice"`
	AvailableStock int    `json:"availableStock"`
}

// GetProducts fetches authoritative listings for the given product ids in a
// single call.
func (c *ProductClient) GetProducts(ctx context.Context, productIDs []string) ([]entities.Product, error) {
	query := url.Values{"productIds": {strings.Join(productIDs, ",")}}

	var body []productJSON
	if err := c.get(ctx, "/products/ids", query, &body); err != nil {
		return nil, fmt.Errorf("failed to get product details: %w", err)
	}

	products := make([]entities.Product, 0, len(body))
	for _, p := range body {
		products = append(products, entities.Product{
			ProductID:      p.ProductID,
			ProductName:    p.ProductName,
			MerchantID:     p.MerchantID,
			CategoryID:     p.CategoryID,
			ListingPrice:   p.ListingPrice,
			AvailableStock: p.AvailableStock,
		})
	}
	return products, nil
}

// UpdateProduct overwrites a product's listing, scoped by merchant and
// product id. The saga uses it to set the decremented stock level.
func (c *ProductClient) UpdateProduct(ctx context.Context, product entities.Product) error {
	path := "/merchants/" + product.MerchantID + "/products/" + product.ProductID
	body := productJSON{
		ProductID:      product.ProductID,
		ProductName:    product.ProductName,
		MerchantID:     product.MerchantID,
		CategoryID:     product.CategoryID,
		ListingPrice:   product.ListingPrice,
		AvailableStock: product.AvailableStock,
	}
	if err := c.do(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ProductID, err)
	}
	return nil
}
