package entities

// Product is the subset of the product service's listing used by the
// creation saga: pricing, stock and ownership.
type Product struct {
	ProductID      string
	MerchantID     string
	CategoryID     string
	ProductName    string
	ListingPrice   int64 // cents
	AvailableStock int
}

// RewardOffset is the customer's redeemable reward balance as reported by
// the profile service.
type RewardOffset struct {
	RewardAmount int64 // cents
	RewardPoints int64
}
