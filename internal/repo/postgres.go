package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/localmart/order-service/internal/entities"
	"github.com/localmart/order-service/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var profileColumns = map[entities.ProfileType]string{
	entities.ProfileCustomer:        "customer_id",
	entities.ProfileMerchant:        "merchant_id",
	entities.ProfileDeliveryPartner: "delivery_partner_id",
}

var collectionTables = map[entities.Collection]string{
	entities.CollectionActive:    "active_orders",
	entities.CollectionCompleted: "completed_orders",
	entities.CollectionCancelled: "cancelled_orders",
}

var orderColumns = []string{
	"order_id", "customer_id", "merchant_id", "delivery_partner_id",
	"total_price", "status", "use_rewards", "use_delivery",
	"rewards_amount_used", "customer_rewards_points_used",
	"created_at", "updated_at", "created_by", "updated_by",
}

type postgresRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewPostgresRepo(db *sqlx.DB) *postgresRepo {
	return &postgresRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert persists a freshly created order, items included, into the active
// collection. ON CONFLICT DO NOTHING keeps it idempotent on the generated id.
func (r *postgresRepo) Insert(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Insert(collectionTables[entities.CollectionActive]).
		Columns(orderColumns...).
		Values(
			o.OrderID, o.CustomerID, o.MerchantID, nullString(o.DeliveryPartnerID),
			o.TotalPrice, string(o.Status), o.UseRewards, o.UseDelivery,
			o.RewardsAmountUsed, o.CustomerRewardsPointsUsed,
			o.CreatedAt, o.UpdatedAt, string(o.CreatedBy), string(o.UpdatedBy),
		).
		Suffix("ON CONFLICT (order_id) DO NOTHING").
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if len(o.OrderItems) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").
		Columns("order_id", "product_id", "quantity", "unit_price").
		Suffix("ON CONFLICT (order_id, product_id) DO NOTHING")
	for _, it := range o.OrderItems {
		q = q.Values(o.OrderID, it.ProductID, it.Quantity, it.UnitPrice)
	}

	query, args = q.MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, coll entities.Collection, orderID string) (entities.Order, error) {
	return r.getOrder(ctx, coll, orderID, false)
}

// GetForUpdate fetches an active order holding a row lock so concurrent
// terminal transitions on the same order id serialize.
func (r *postgresRepo) GetForUpdate(ctx context.Context, orderID string) (entities.Order, error) {
	return r.getOrder(ctx, entities.CollectionActive, orderID, true)
}

func (r *postgresRepo) getOrder(ctx context.Context, coll entities.Collection, orderID string, lock bool) (entities.Order, error) {
	q := r.qb.Select(orderColumns...).
		From(collectionTables[coll]).
		Where(sq.Eq{"order_id": orderID})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	query, args := q.MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.itemsFor(ctx, []string{orderID})
	if err != nil {
		return entities.Order{}, err
	}

	return OrderToEntity(order, items[orderID]), nil
}

// UpdateStatus mutates status and audit fields of an active order in place.
func (r *postgresRepo) UpdateStatus(ctx context.Context, orderID string, upd entities.StatusUpdate) error {
	q := r.qb.Update(collectionTables[entities.CollectionActive]).
		Set("status", string(upd.Status)).
		Set("updated_at", upd.UpdatedAt).
		Set("updated_by", string(upd.UpdatedBy)).
		Where(sq.Eq{"order_id": orderID})
	if upd.DeliveryPartnerID != nil {
		q = q.Set("delivery_partner_id", *upd.DeliveryPartnerID)
	}
	query, args := q.MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return entities.ErrOrderNotFound
	}
	return nil
}

// Move writes the order into the destination collection and removes it from
// the active one. Callers wrap it in a transaction; order_items rows are
// keyed by order id only and stay untouched.
func (r *postgresRepo) Move(ctx context.Context, o entities.Order, to entities.Collection) error {
	query, args := r.qb.Insert(collectionTables[to]).
		Columns(orderColumns...).
		Values(
			o.OrderID, o.CustomerID, o.MerchantID, nullString(o.DeliveryPartnerID),
			o.TotalPrice, string(o.Status), o.UseRewards, o.UseDelivery,
			o.RewardsAmountUsed, o.CustomerRewardsPointsUsed,
			o.CreatedAt, o.UpdatedAt, string(o.CreatedBy), string(o.UpdatedBy),
		).
		Suffix("ON CONFLICT (order_id) DO NOTHING").
		MustSql()

	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order into %s: %w", to, err)
	}

	query, args = r.qb.Delete(collectionTables[entities.CollectionActive]).
		Where(sq.Eq{"order_id": o.OrderID}).
		MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete order from active: %w", err)
	}
	return nil
}

// Delete removes an active order and its items. This is the creation saga's
// compensation primitive.
func (r *postgresRepo) Delete(ctx context.Context, orderID string) error {
	query, args := r.qb.Delete(collectionTables[entities.CollectionActive]).
		Where(sq.Eq{"order_id": orderID}).
		MustSql()
	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return entities.ErrOrderNotFound
	}

	query, args = r.qb.Delete("order_items").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()
	if _, err := r.execContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListByProfile(ctx context.Context, coll entities.Collection, profile entities.ProfileType, profileID string) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From(collectionTables[coll]).
		Where(sq.Eq{profileColumns[profile]: profileID}).
		OrderBy("created_at DESC").
		MustSql()

	return r.selectOrders(ctx, query, args...)
}

// ListReadyForDelivery returns active orders a delivery partner can pick up.
func (r *postgresRepo) ListReadyForDelivery(ctx context.Context) ([]entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From(collectionTables[entities.CollectionActive]).
		Where(sq.Eq{"status": string(entities.StatusReady), "use_delivery": true}).
		OrderBy("created_at DESC").
		MustSql()

	return r.selectOrders(ctx, query, args...)
}

func (r *postgresRepo) selectOrders(ctx context.Context, query string, args ...any) ([]entities.Order, error) {
	var orders []Order
	if err := r.selectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select orders: %w", err)
	}
	if len(orders) == 0 {
		return []entities.Order{}, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToEntity(o, items[o.OrderID]))
	}
	return result, nil
}

func (r *postgresRepo) itemsFor(ctx context.Context, orderIDs []string) (map[string][]Item, error) {
	query, args := r.qb.Select("order_id", "product_id", "quantity", "unit_price").
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		MustSql()

	var items []Item
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select order items: %w", err)
	}

	grouped := make(map[string][]Item, len(orderIDs))
	for _, it := range items {
		grouped[it.OrderID] = append(grouped[it.OrderID], it)
	}
	return grouped, nil
}

func (r *postgresRepo) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *postgresRepo) getContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *postgresRepo) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}
