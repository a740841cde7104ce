package entities

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusCreated          OrderStatus = "CREATED"
	StatusAccepted         OrderStatus = "ACCEPTED"
	StatusReady            OrderStatus = "READY"
	StatusDeliveryAccepted OrderStatus = "DELIVERY_ACCEPTED"
	StatusDeliveryPickedUp OrderStatus = "DELIVERY_PICKED_UP"
	StatusCompleted        OrderStatus = "COMPLETED"
	StatusCancelled        OrderStatus = "CANCELLED"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(s))
	switch status {
	case StatusCreated, StatusAccepted, StatusReady,
		StatusDeliveryAccepted, StatusDeliveryPickedUp,
		StatusCompleted, StatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Actor identifies who performed a mutation. It is passed explicitly into
// every transition instead of being held as shared request context.
type Actor string

const (
	ActorCustomer        Actor = "CUSTOMER"
	ActorMerchant        Actor = "MERCHANT"
	ActorDeliveryPartner Actor = "DELIVERY_PARTNER"
)

// Collection names one of the three physical order stores. An order id is
// present in exactly one collection at a time.
type Collection string

const (
	CollectionActive    Collection = "active"
	CollectionCompleted Collection = "completed"
	CollectionCancelled Collection = "cancelled"
)

// ProfileType selects whose orders a listing is scoped to.
type ProfileType string

const (
	ProfileCustomer        ProfileType = "customer"
	ProfileMerchant        ProfileType = "merchant"
	ProfileDeliveryPartner ProfileType = "deliveryPartner"
)

func ParseProfileType(s string) (ProfileType, error) {
	switch {
	case strings.EqualFold(s, string(ProfileCustomer)):
		return ProfileCustomer, nil
	case strings.EqualFold(s, string(ProfileMerchant)):
		return ProfileMerchant, nil
	case strings.EqualFold(s, string(ProfileDeliveryPartner)):
		return ProfileDeliveryPartner, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidProfileType, s)
}

// ListType selects which collections a listing reads from.
type ListType string

const (
	ListActive    ListType = "active"
	ListCompleted ListType = "completed"
	ListCancelled ListType = "cancelled"
	ListAll       ListType = "all"
)

func ParseListType(s string) (ListType, error) {
	lt := ListType(strings.ToLower(s))
	switch lt {
	case ListActive, ListCompleted, ListCancelled, ListAll:
		return lt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidListType, s)
}

// StatusUpdate is the slice of an order a non-terminal transition may
// mutate in place.
type StatusUpdate struct {
	Status            OrderStatus
	UpdatedBy         Actor
	UpdatedAt         time.Time
	DeliveryPartnerID *string
}

type Item struct {
	ProductID string
	Quantity  int
	UnitPrice int64 // cents
}

type Order struct {
	OrderID           string
	CustomerID        string
	MerchantID        string
	DeliveryPartnerID string // empty until a delivery partner accepts

	OrderItems []Item
	TotalPrice int64 // cents
	Status     OrderStatus

	UseRewards  bool
	UseDelivery bool

	RewardsAmountUsed         int64 // cents
	CustomerRewardsPointsUsed int64

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy Actor
	UpdatedBy Actor
}

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrCartNotFound            = errors.New("cart not found or empty")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidProfileType      = errors.New("invalid profile type")
	ErrInvalidListType         = errors.New("invalid list type")
	ErrDeliveryNotOpted        = errors.New("order did not opt for delivery")
	ErrDeliveryNotStarted      = errors.New("delivery has not been started for order")
	ErrDeliveryPartnerRequired = errors.New("delivery partner id required")
	ErrPricingFailed           = errors.New("failed to price cart items")
	ErrStockUpdateFailed       = errors.New("failed to update product stock")
	ErrDeliveryUpdateFailed    = errors.New("failed to update delivery status")
	ErrInvalidOrder            = errors.New("invalid order data")
)

func (o *Order) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Order) Unmarshal(data []byte) error {
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	if err := dec.Decode(o); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	return nil
}

func init() {
	gob.Register(Order{})
	gob.Register(Item{})
}
