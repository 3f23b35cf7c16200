package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
	"github.com/polkiloo/autoparts/internal/domain/repository"
	"github.com/polkiloo/autoparts/internal/engine"
)

const (
	orderColumns = `o.id, o.checkout_key, o.user_id, o.status, o.created_at, o.updated_at,
                    o.processing_at, o.shipped_at, o.delivered_at, o.cancelled_at, i.id`
	orderFrom = ` FROM orders o LEFT JOIN invoices i ON i.order_id = o.id`
)

var statusTimestampColumn = map[model.OrderStatus]string{
	model.OrderStatusProcessing: "processing_at",
	model.OrderStatusShipped:    "shipped_at",
	model.OrderStatusDelivered:  "delivered_at",
	model.OrderStatusCancelled:  "cancelled_at",
}

// errDuplicateCheckout rolls back a creation whose checkout key already exists.
var errDuplicateCheckout = errors.New("duplicate checkout key")

type orderRepository struct {
	storage *Storage
}

func (r *orderRepository) CreateFromIntent(ctx context.Context, intent *model.OrderCreationIntent, guard repository.IntentGuard) (*model.Order, bool, error) {
	if intent == nil || len(intent.Items) == 0 {
		return nil, false, fmt.Errorf("%w: empty creation intent", domainErrors.ErrInvalidInput)
	}

	order := orderFromIntent(intent)
	var existingID int64

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		id, err := findByCheckoutKey(ctx, tx, intent.CheckoutKey)
		switch {
		case err == nil:
			existingID = id
			return errDuplicateCheckout
		case !errors.Is(err, pgx.ErrNoRows):
			return err
		}

		ids := make([]int64, 0, len(intent.Decrements))
		for _, d := range intent.Decrements {
			ids = append(ids, d.ProductID)
		}
		locked, err := lockProducts(ctx, tx, ids)
		if err != nil {
			return err
		}
		if guard != nil {
			categories, err := shareCategories(ctx, tx, locked)
			if err != nil {
				return err
			}
			if err := guard(locked, categories); err != nil {
				return err
			}
		}

		stock := stockByProduct(locked)
		for _, d := range intent.Decrements {
			ok, err := adjustStock(ctx, tx, d.ProductID, d.Quantity)
			if err != nil {
				return &domainErrors.PartialCommitError{Stage: "stock", Err: err}
			}
			if !ok {
				return &domainErrors.InsufficientStockError{Shortfalls: []domainErrors.Shortfall{{
					ProductID: d.ProductID,
					Requested: d.Quantity,
					Available: stock[d.ProductID],
				}}}
			}
		}

		const insertOrder = `INSERT INTO orders (checkout_key, user_id, status, created_at, updated_at)
                             VALUES ($1, $2, $3, $4, $4)
                             ON CONFLICT (checkout_key) DO NOTHING
                             RETURNING id`
		err = tx.QueryRow(ctx, insertOrder, intent.CheckoutKey, intent.UserID, intent.Status, intent.CreatedAt).Scan(&order.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				id, err := findByCheckoutKey(ctx, tx, intent.CheckoutKey)
				if err != nil {
					return err
				}
				existingID = id
				return errDuplicateCheckout
			}
			return &domainErrors.PartialCommitError{Stage: "order", Err: err}
		}

		if err := insertItems(ctx, tx, order.ID, intent.Items); err != nil {
			return &domainErrors.PartialCommitError{Stage: "items", Err: err}
		}

		const insertPayment = `INSERT INTO payments (order_id, method, reference, proof_url, amount, created_at)
                               VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		p := order.Payment
		p.OrderID = order.ID
		if err := tx.QueryRow(ctx, insertPayment, order.ID, p.Method, p.Reference, p.ProofURL, p.Amount, p.CreatedAt).Scan(&p.ID); err != nil {
			return &domainErrors.PartialCommitError{Stage: "payment", Err: err}
		}

		const insertShipment = `INSERT INTO shipments (order_id, method, recipient_name, recipient_national_id,
                                    recipient_phone, recipient_address, recipient_city, recipient_state, created_at)
                                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
		s := order.Shipment
		s.OrderID = order.ID
		rc := s.Recipient
		if err := tx.QueryRow(ctx, insertShipment, order.ID, s.Method, rc.Name, rc.NationalID, rc.Phone, rc.Address, rc.City, rc.State, s.CreatedAt).Scan(&s.ID); err != nil {
			return &domainErrors.PartialCommitError{Stage: "shipment", Err: err}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errDuplicateCheckout) {
			return r.existing(ctx, existingID, intent.UserID)
		}
		return nil, false, err
	}

	return order, true, nil
}

func (r *orderRepository) existing(ctx context.Context, id, userID int64) (*model.Order, bool, error) {
	order, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if order.UserID != userID {
		return nil, false, domainErrors.ErrAlreadyExists
	}
	return order, false, nil
}

func orderFromIntent(intent *model.OrderCreationIntent) *model.Order {
	items := make([]model.LineItem, len(intent.Items))
	copy(items, intent.Items)
	payment := intent.Payment
	shipment := intent.Shipment
	return &model.Order{
		CheckoutKey: intent.CheckoutKey,
		UserID:      intent.UserID,
		Items:       items,
		Status:      intent.Status,
		Payment:     &payment,
		Shipment:    &shipment,
		CreatedAt:   intent.CreatedAt,
		UpdatedAt:   intent.CreatedAt,
	}
}

func findByCheckoutKey(ctx context.Context, q querier, key uuid.UUID) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `SELECT id FROM orders WHERE checkout_key=$1`, key).Scan(&id)
	return id, err
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	order, err := loadOrder(ctx, r.storage.pool, id, false)
	if err != nil {
		return nil, err
	}

	const paymentQuery = `SELECT id, order_id, method, reference, proof_url, amount, created_at
                          FROM payments WHERE order_id=$1`
	var p model.Payment
	err = r.storage.pool.QueryRow(ctx, paymentQuery, id).Scan(&p.ID, &p.OrderID, &p.Method, &p.Reference, &p.ProofURL, &p.Amount, &p.CreatedAt)
	switch {
	case err == nil:
		order.Payment = &p
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, err
	}

	const shipmentQuery = `SELECT id, order_id, method, recipient_name, recipient_national_id, recipient_phone,
                                  recipient_address, recipient_city, recipient_state, created_at
                           FROM shipments WHERE order_id=$1`
	var s model.Shipment
	rc := &s.Recipient
	err = r.storage.pool.QueryRow(ctx, shipmentQuery, id).Scan(&s.ID, &s.OrderID, &s.Method, &rc.Name, &rc.NationalID, &rc.Phone, &rc.Address, &rc.City, &rc.State, &s.CreatedAt)
	switch {
	case err == nil:
		order.Shipment = &s
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, err
	}

	return order, nil
}

// GetByCheckoutKey returns the order created with key.
func (r *orderRepository) GetByCheckoutKey(ctx context.Context, key uuid.UUID) (*model.Order, error) {
	id, err := findByCheckoutKey(ctx, r.storage.pool, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// ListByUser returns the user's orders, newest first. Listed orders carry
// their items but not payment or shipment records.
func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.user_id=$1 ORDER BY o.created_at DESC`
	return listOrders(ctx, r.storage.pool, query, userID)
}

func (r *orderRepository) ListAll(ctx context.Context, status *model.OrderStatus) ([]model.Order, error) {
	if status == nil {
		return listOrders(ctx, r.storage.pool, `SELECT `+orderColumns+orderFrom+` ORDER BY o.created_at DESC`)
	}
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.status=$1 ORDER BY o.created_at DESC`
	return listOrders(ctx, r.storage.pool, query, *status)
}

func (r *orderRepository) Transition(ctx context.Context, orderID int64, decide repository.TransitionDecider) (*model.Order, error) {
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		order, err := loadOrder(ctx, tx, orderID, true)
		if err != nil {
			return err
		}
		change, noop, err := decide(*order)
		if err != nil || noop {
			return err
		}

		query := `UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3`
		if column, ok := statusTimestampColumn[change.To]; ok {
			query = fmt.Sprintf(`UPDATE orders SET status=$1, updated_at=$2, %s=$2 WHERE id=$3`, column)
		}
		if _, err := tx.Exec(ctx, query, change.To, change.At, orderID); err != nil {
			return err
		}

		if change.To == model.OrderStatusCancelled && change.RestoreStock {
			for _, adj := range engine.RestockFor(*order) {
				ok, err := adjustStock(ctx, tx, adj.ProductID, adj.Delta)
				if err != nil {
					return err
				}
				if !ok {
					r.storage.Logger().Warn("stock not restored, product missing",
						slog.Int64("order_id", orderID),
						slog.Int64("product_id", adj.ProductID),
						slog.Int("quantity", -adj.Delta),
					)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

func (r *orderRepository) AmendQuantities(ctx context.Context, orderID int64, plan repository.AmendmentPlanner) (*model.Order, error) {
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		order, err := loadOrder(ctx, tx, orderID, true)
		if err != nil {
			return err
		}

		ids := make([]int64, 0, len(order.Items))
		for _, item := range order.Items {
			ids = append(ids, item.ProductID)
		}
		locked, err := lockProducts(ctx, tx, ids)
		if err != nil {
			return err
		}
		stock := stockByProduct(locked)

		amendment, err := plan(*order, stock)
		if err != nil {
			return err
		}
		amended := make(map[int64]int, len(amendment.Items))
		for _, item := range amendment.Items {
			amended[item.ProductID] = item.Quantity
		}

		for _, adj := range amendment.Adjustments {
			ok, err := adjustStock(ctx, tx, adj.ProductID, adj.Delta)
			if err != nil {
				return err
			}
			if !ok {
				return &domainErrors.InsufficientStockError{Shortfalls: []domainErrors.Shortfall{{
					ProductID: adj.ProductID,
					Requested: amended[adj.ProductID],
					Available: stock[adj.ProductID],
				}}}
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, orderID); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, orderID, amendment.Items); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE payments SET amount=$1 WHERE order_id=$2`, amendment.Totals.GrandTotal, orderID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE orders SET updated_at=$1 WHERE id=$2`, amendment.At, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

// adjustStock takes delta units from a product, or returns them when delta is
// negative. It reports false when the product lacks the stock.
func adjustStock(ctx context.Context, q querier, productID int64, delta int) (bool, error) {
	const query = `UPDATE products SET stock = stock - $1 WHERE id=$2 AND stock >= $1`
	tag, err := q.Exec(ctx, query, delta, productID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func stockByProduct(products []model.Product) map[int64]int {
	stock := make(map[int64]int, len(products))
	for _, p := range products {
		stock[p.ID] = p.Stock
	}
	return stock
}

func insertItems(ctx context.Context, q querier, orderID int64, items []model.LineItem) error {
	const query = `INSERT INTO order_items (order_id, position, product_id, product_name, quantity,
                       unit_price, final_unit_price, discount_pct, discount_source)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i, item := range items {
		_, err := q.Exec(ctx, query, orderID, i, item.ProductID, item.ProductName, item.Quantity,
			item.UnitPrice, item.FinalUnitPrice, item.DiscountPct, item.DiscountSource)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.CheckoutKey, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		&o.ProcessingAt, &o.ShippedAt, &o.DeliveredAt, &o.CancelledAt, &o.InvoiceID)
	return o, err
}

func loadOrder(ctx context.Context, q querier, id int64, forUpdate bool) (*model.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.id=$1`
	if forUpdate {
		query += ` FOR UPDATE OF o`
	}
	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	items, err := loadItems(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	return &order, nil
}

func listOrders(ctx context.Context, q querier, query string, args ...any) ([]model.Order, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	ids := make([]int64, 0, len(result))
	for _, o := range result {
		ids = append(ids, o.ID)
	}
	items, err := loadItems(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Items = items[result[i].ID]
	}
	return result, nil
}

func loadItems(ctx context.Context, q querier, orderIDs []int64) (map[int64][]model.LineItem, error) {
	const query = `SELECT order_id, product_id, product_name, quantity, unit_price, final_unit_price,
                          discount_pct, discount_source
                   FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`
	rows, err := q.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.LineItem, len(orderIDs))
	for rows.Next() {
		var (
			orderID int64
			item    model.LineItem
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice,
			&item.FinalUnitPrice, &item.DiscountPct, &item.DiscountSource); err != nil {
			return nil, err
		}
		result[orderID] = append(result[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
