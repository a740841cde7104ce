package clients

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/localmart/order-service/internal/entities"
)

type ProfileClient struct {
	apiClient
}

func NewProfileClient(baseURL string, httpClient *http.Client, timeout time.Duration) *ProfileClient {
	return &ProfileClient{apiClient: newAPIClient(baseURL, httpClient, timeout)}
}

type rewardOffsetJSON struct {
	RewardAmount int64 `json:"rewardAmount"`
	RewardPoints int64 `json:"rewardPoints"`
}

// GetRewardOffset returns the customer's redeemable reward balance.
func (c *ProfileClient) GetRewardOffset(ctx context.Context, customerID string) (entities.RewardOffset, error) {
	var body rewardOffsetJSON
	if err := c.get(ctx, "/customers/"+customerID+"/rewards", nil, &body); err != nil {
		return entities.RewardOffset{}, fmt.Errorf("failed to get reward offset: %w", err)
	}
	return entities.RewardOffset{
		RewardAmount: body.RewardAmount,
		RewardPoints: body.RewardPoints,
	}, nil
}

// UpdateCustomerRewards sets the customer's reward balance from the given
// amount. The same endpoint serves redeeming (amount 0), crediting after a
// completed order and refunding after a cancellation.
func (c *ProfileClient) UpdateCustomerRewards(ctx context.Context, customerID string, amount int64) error {
	path := "/customers/" + customerID + "/rewards/" + strconv.FormatInt(amount, 10)
	if err := c.do(ctx, http.MethodPut, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to update customer rewards: %w", err)
	}
	return nil
}

// UpdateMerchantEarnings credits the merchant with the order amount.
func (c *ProfileClient) UpdateMerchantEarnings(ctx context.Context, merchantID string, amount int64) error {
	path := "/merchants/" + merchantID + "/rewards/" + strconv.FormatInt(amount, 10)
	if err := c.do(ctx, http.MethodPut, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to update merchant earnings: %w", err)
	}
	return nil
}
