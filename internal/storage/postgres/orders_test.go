package postgres

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
)

var (
	orderCols = []string{"id", "checkout_key", "user_id", "status", "created_at", "updated_at",
		"processing_at", "shipped_at", "delivered_at", "cancelled_at", "invoice_id"}
	itemCols = []string{"order_id", "product_id", "product_name", "quantity", "unit_price",
		"final_unit_price", "discount_pct", "discount_source"}
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testIntent(key uuid.UUID) *model.OrderCreationIntent {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	items := []model.LineItem{
		{ProductID: 1, ProductName: "Brake pad", Quantity: 2, UnitPrice: money("25.00"), FinalUnitPrice: money("20.00"), DiscountPct: money("20"), DiscountSource: model.DiscountSourceProduct},
		{ProductID: 2, ProductName: "Oil filter", Quantity: 1, UnitPrice: money("8.50"), FinalUnitPrice: money("8.50"), DiscountPct: decimal.Zero, DiscountSource: model.DiscountSourceNone},
	}
	return &model.OrderCreationIntent{
		CheckoutKey: key,
		UserID:      9,
		Items:       items,
		Status:      model.OrderStatusPendingPaymentVerification,
		Payment:     model.Payment{Method: model.PaymentMethodCash, Amount: money("48.50"), CreatedAt: now},
		Shipment:    model.Shipment{Method: model.DeliveryMethodPickup, CreatedAt: now},
		Decrements:  []model.StockDecrement{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
		CreatedAt:   now,
	}
}

func orderRow(id, userID int64, key uuid.UUID, status model.OrderStatus) *pgxmockv3.Rows {
	now := time.Now()
	return pgxmockv3.NewRows(orderCols).AddRow(id, key, userID, status, now, now, nil, nil, nil, nil, nil)
}

func itemRows(orderID int64) *pgxmockv3.Rows {
	return pgxmockv3.NewRows(itemCols).
		AddRow(orderID, int64(1), "Brake pad", 2, money("25.00"), money("20.00"), money("20"), model.DiscountSourceProduct).
		AddRow(orderID, int64(2), "Oil filter", 1, money("8.50"), money("8.50"), decimal.Zero, model.DiscountSourceNone)
}

func lockedProducts(stock1, stock2 int) *pgxmockv3.Rows {
	return pgxmockv3.NewRows(productCols).
		AddRow(int64(1), "BP-1", "Brake pad", money("25.00"), stock1, money("20"), nil, false).
		AddRow(int64(2), "OF-2", "Oil filter", money("8.50"), stock2, decimal.Zero, nil, false)
}

func expectGetByID(mock pgxmockv3.PgxPoolIface, id, userID int64, key uuid.UUID, status model.OrderStatus) {
	now := time.Now()
	mock.ExpectQuery("SELECT o.id, o.checkout_key").WithArgs(id).WillReturnRows(orderRow(id, userID, key, status))
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{id}).WillReturnRows(itemRows(id))
	mock.ExpectQuery("FROM payments WHERE order_id=").WithArgs(id).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "order_id", "method", "reference", "proof_url", "amount", "created_at"}).
			AddRow(int64(7), id, model.PaymentMethodCash, "", "", money("48.50"), now),
	)
	mock.ExpectQuery("FROM shipments WHERE order_id=").WithArgs(id).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "order_id", "method", "recipient_name", "recipient_national_id", "recipient_phone",
			"recipient_address", "recipient_city", "recipient_state", "created_at"}).
			AddRow(int64(8), id, model.DeliveryMethodPickup, "Ana", "", "", "", "", "", now),
	)
}

func expectLockedOrder(mock pgxmockv3.PgxPoolIface, id int64, key uuid.UUID, status model.OrderStatus) {
	mock.ExpectQuery("(?s)SELECT o.id, o.checkout_key.*FOR UPDATE OF o").WithArgs(id).WillReturnRows(orderRow(id, 9, key, status))
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{id}).WillReturnRows(itemRows(id))
}

func expectLockProducts(mock pgxmockv3.PgxPoolIface, rows *pgxmockv3.Rows) {
	mock.ExpectQuery("FROM products WHERE id = ANY.*FOR UPDATE").WithArgs([]int64{1, 2}).WillReturnRows(rows)
}

func expectDecrements(mock pgxmockv3.PgxPoolIface) {
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(2, int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(1, int64(2)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
}

func expectInsertOrder(mock pgxmockv3.PgxPoolIface, intent *model.OrderCreationIntent) *pgxmockv3.ExpectedQuery {
	return mock.ExpectQuery("INSERT INTO orders").WithArgs(intent.CheckoutKey, intent.UserID, intent.Status, intent.CreatedAt)
}

func expectInsertItem(mock pgxmockv3.PgxPoolIface, orderID int64, position int) *pgxmockv3.ExpectedExec {
	names := []string{"Brake pad", "Oil filter"}
	quantities := []int{2, 1}
	sources := []model.DiscountSource{model.DiscountSourceProduct, model.DiscountSourceNone}
	return mock.ExpectExec("INSERT INTO order_items").WithArgs(orderID, position, int64(position+1), names[position], quantities[position],
		pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), sources[position])
}

func expectInsertPayment(mock pgxmockv3.PgxPoolIface, orderID int64, intent *model.OrderCreationIntent) *pgxmockv3.ExpectedQuery {
	p := intent.Payment
	return mock.ExpectQuery("INSERT INTO payments").WithArgs(orderID, p.Method, p.Reference, p.ProofURL, pgxmockv3.AnyArg(), p.CreatedAt)
}

func expectInsertShipment(mock pgxmockv3.PgxPoolIface, orderID int64, intent *model.OrderCreationIntent) *pgxmockv3.ExpectedQuery {
	s := intent.Shipment
	rc := s.Recipient
	return mock.ExpectQuery("INSERT INTO shipments").WithArgs(orderID, s.Method, rc.Name, rc.NationalID, rc.Phone, rc.Address, rc.City, rc.State, s.CreatedAt)
}

func TestOrderRepositoryCreateFromIntent(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	key := uuid.New()
	intent := testIntent(key)

	var (
		guarded    []model.Product
		categories []model.Category
	)
	guard := func(locked []model.Product, cats []model.Category) error {
		guarded, categories = locked, cats
		return nil
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(key).WillReturnError(pgx.ErrNoRows)
	expectLockProducts(mock, lockedProducts(5, 3))
	expectDecrements(mock)
	expectInsertOrder(mock, intent).WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(100)))
	expectInsertItem(mock, 100, 0).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	expectInsertItem(mock, 100, 1).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	expectInsertPayment(mock, 100, intent).WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(7)))
	expectInsertShipment(mock, 100, intent).WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(8)))
	mock.ExpectCommit()

	order, created, err := repo.CreateFromIntent(context.Background(), intent, guard)
	if err != nil || !created {
		t.Fatalf("unexpected result: created=%v err=%v", created, err)
	}
	if order.ID != 100 || order.Payment.ID != 7 || order.Payment.OrderID != 100 || order.Shipment.ID != 8 {
		t.Fatalf("unexpected order: %+v", order)
	}
	if len(guarded) != 2 || guarded[0].Stock != 5 {
		t.Fatalf("guard did not receive locked products: %+v", guarded)
	}
	if categories != nil {
		t.Fatalf("expected no categories for uncategorized products, got %+v", categories)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryCreateFromIntentSharesCategories(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	key := uuid.New()
	intent := testIntent(key)

	var categories []model.Category
	guard := func(_ []model.Product, cats []model.Category) error {
		categories = cats
		return nil
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(key).WillReturnError(pgx.ErrNoRows)
	expectLockProducts(mock, productRows())
	mock.ExpectQuery("FROM categories WHERE id = ANY.*FOR SHARE").WithArgs([]int64{10}).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "name", "discount_pct"}).AddRow(int64(10), "Brakes", money("10")),
	)
	expectDecrements(mock)
	expectInsertOrder(mock, intent).WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(100)))
	expectInsertItem(mock, 100, 0).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	expectInsertItem(mock, 100, 1).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	expectInsertPayment(mock, 100, intent).WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(7)))
	expectInsertShipment(mock, 100, intent).WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(8)))
	mock.ExpectCommit()

	if _, _, err := repo.CreateFromIntent(context.Background(), intent, guard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != 10 || !categories[0].DiscountPct.Equal(money("10")) {
		t.Fatalf("guard did not receive shared categories: %+v", categories)
	}

	// A failed category read aborts before any stock moves.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(key).WillReturnError(pgx.ErrNoRows)
	expectLockProducts(mock, productRows())
	mock.ExpectQuery("FROM categories WHERE id = ANY.*FOR SHARE").WithArgs([]int64{10}).WillReturnError(errors.New("categories"))
	mock.ExpectRollback()
	if _, _, err := repo.CreateFromIntent(context.Background(), intent, guard); err == nil {
		t.Fatal("expected category read error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryCreateFromIntentDuplicateKey(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	key := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(key).WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectRollback()
	expectGetByID(mock, 100, 9, key, model.OrderStatusProcessing)

	order, created, err := repo.CreateFromIntent(context.Background(), testIntent(key), nil)
	if err != nil || created || order.ID != 100 || order.Status != model.OrderStatusProcessing {
		t.Fatalf("unexpected result: order=%+v created=%v err=%v", order, created, err)
	}

	// A concurrent checkout with the same key wins the insert.
	intent := testIntent(key)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(key).WillReturnError(pgx.ErrNoRows)
	expectLockProducts(mock, lockedProducts(5, 3))
	expectDecrements(mock)
	expectInsertOrder(mock, intent).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(key).WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectRollback()
	expectGetByID(mock, 101, 3, key, model.OrderStatusPendingPaymentVerification)

	if _, _, err := repo.CreateFromIntent(context.Background(), intent, nil); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists for foreign key owner, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryCreateFromIntentFailures(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	key := uuid.New()
	intent := testIntent(key)
	ctx := context.Background()

	if _, _, err := repo.CreateFromIntent(ctx, &model.OrderCreationIntent{}, nil); !errors.Is(err, domainErrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	// Guard rejects the locked snapshot.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(key).WillReturnError(pgx.ErrNoRows)
	expectLockProducts(mock, lockedProducts(1, 3))
	mock.ExpectRollback()
	rejection := &domainErrors.InsufficientStockError{Shortfalls: []domainErrors.Shortfall{{ProductID: 1, Requested: 2, Available: 1}}}
	_, _, err := repo.CreateFromIntent(ctx, intent, func([]model.Product, []model.Category) error { return rejection })
	if !errors.Is(err, domainErrors.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// Conditional decrement finds no stock.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(key).WillReturnError(pgx.ErrNoRows)
	expectLockProducts(mock, lockedProducts(1, 3))
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(2, int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectRollback()
	_, _, err = repo.CreateFromIntent(ctx, intent, nil)
	var stockErr *domainErrors.InsufficientStockError
	if !errors.As(err, &stockErr) || stockErr.Shortfalls[0].Available != 1 {
		t.Fatalf("expected shortfall with locked stock, got %v", err)
	}

	// Payment insert fails after the order row exists.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(key).WillReturnError(pgx.ErrNoRows)
	expectLockProducts(mock, lockedProducts(5, 3))
	expectDecrements(mock)
	expectInsertOrder(mock, intent).WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(100)))
	expectInsertItem(mock, 100, 0).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	expectInsertItem(mock, 100, 1).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	expectInsertPayment(mock, 100, intent).WillReturnError(errors.New("payment"))
	mock.ExpectRollback()
	_, _, err = repo.CreateFromIntent(ctx, intent, nil)
	var partial *domainErrors.PartialCommitError
	if !errors.As(err, &partial) || partial.Stage != "payment" {
		t.Fatalf("expected partial commit at payment, got %v", err)
	}

	// Item insert fails.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(key).WillReturnError(pgx.ErrNoRows)
	expectLockProducts(mock, lockedProducts(5, 3))
	expectDecrements(mock)
	expectInsertOrder(mock, intent).WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(100)))
	expectInsertItem(mock, 100, 0).WillReturnError(errors.New("items"))
	mock.ExpectRollback()
	_, _, err = repo.CreateFromIntent(ctx, intent, nil)
	if !errors.As(err, &partial) || partial.Stage != "items" {
		t.Fatalf("expected partial commit at items, got %v", err)
	}

	// Lookup failure aborts before locking.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(key).WillReturnError(errors.New("lookup"))
	mock.ExpectRollback()
	if _, _, err := repo.CreateFromIntent(ctx, intent, nil); err == nil || errors.Is(err, domainErrors.ErrPartialCommit) {
		t.Fatalf("expected plain lookup error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetByID(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	key := uuid.New()

	expectGetByID(mock, 5, 9, key, model.OrderStatusShipped)
	order, err := repo.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.CheckoutKey != key || len(order.Items) != 2 || order.Payment == nil || order.Shipment == nil {
		t.Fatalf("unexpected order: %+v", order)
	}
	if order.Shipment.Recipient.Name != "Ana" || !order.Payment.Amount.Equal(money("48.50")) {
		t.Fatalf("unexpected records: %+v %+v", order.Payment, order.Shipment)
	}

	mock.ExpectQuery("SELECT o.id, o.checkout_key").WithArgs(int64(6)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 6); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("SELECT o.id, o.checkout_key").WithArgs(int64(7)).WillReturnRows(orderRow(7, 9, key, model.OrderStatusProcessing))
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{7}).WillReturnRows(itemRows(7))
	mock.ExpectQuery("FROM payments WHERE order_id=").WithArgs(int64(7)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM shipments WHERE order_id=").WithArgs(int64(7)).WillReturnError(errors.New("shipments"))
	if _, err := repo.GetByID(context.Background(), 7); err == nil {
		t.Fatal("expected shipment error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetByCheckoutKey(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	key := uuid.New()

	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(key).WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(5)))
	expectGetByID(mock, 5, 9, key, model.OrderStatusPendingPaymentVerification)
	order, err := repo.GetByCheckoutKey(context.Background(), key)
	if err != nil || order.ID != 5 {
		t.Fatalf("unexpected result: %+v %v", order, err)
	}

	other := uuid.New()
	mock.ExpectQuery("SELECT id FROM orders WHERE checkout_key=").WithArgs(other).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByCheckoutKey(context.Background(), other); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	ctx := context.Background()
	now := time.Now()
	invoiceID := int64(3)

	mock.ExpectQuery("WHERE o.user_id=").WithArgs(int64(9)).WillReturnRows(
		pgxmockv3.NewRows(orderCols).
			AddRow(int64(2), uuid.New(), int64(9), model.OrderStatusShipped, now, now, &now, &now, nil, nil, &invoiceID).
			AddRow(int64(1), uuid.New(), int64(9), model.OrderStatusPendingPaymentVerification, now, now, nil, nil, nil, nil, nil),
	)
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{2, 1}).WillReturnRows(itemRows(1))
	orders, err := repo.ListByUser(ctx, 9)
	if err != nil || len(orders) != 2 {
		t.Fatalf("unexpected result: %v err=%v", orders, err)
	}
	if orders[0].InvoiceID == nil || *orders[0].InvoiceID != 3 || orders[0].ShippedAt == nil {
		t.Fatalf("unexpected first order: %+v", orders[0])
	}
	if len(orders[0].Items) != 0 || len(orders[1].Items) != 2 {
		t.Fatalf("items attached to wrong orders: %+v", orders)
	}

	mock.ExpectQuery("WHERE o.user_id=").WithArgs(int64(10)).WillReturnRows(pgxmockv3.NewRows(orderCols))
	if orders, err := repo.ListByUser(ctx, 10); err != nil || len(orders) != 0 {
		t.Fatalf("expected empty list, got %v err=%v", orders, err)
	}

	status := model.OrderStatusProcessing
	mock.ExpectQuery("WHERE o.status=").WithArgs(status).WillReturnRows(orderRow(4, 9, uuid.New(), status))
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{4}).WillReturnRows(itemRows(4))
	if orders, err := repo.ListAll(ctx, &status); err != nil || len(orders) != 1 {
		t.Fatalf("unexpected filtered list: %v err=%v", orders, err)
	}

	mock.ExpectQuery("LEFT JOIN invoices i ON i.order_id = o.id ORDER BY").WillReturnRows(orderRow(4, 9, uuid.New(), status))
	mock.ExpectQuery("FROM order_items WHERE order_id = ANY").WithArgs([]int64{4}).WillReturnError(errors.New("items"))
	if _, err := repo.ListAll(ctx, nil); err == nil {
		t.Fatal("expected items error")
	}

	mock.ExpectQuery("WHERE o.user_id=").WithArgs(int64(11)).WillReturnRows(
		pgxmockv3.NewRows(orderCols).AddRow("bad", uuid.New(), int64(9), status, now, now, nil, nil, nil, nil, nil),
	)
	if _, err := repo.ListByUser(ctx, 11); err == nil {
		t.Fatal("expected scan error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &orderRepository{storage: storage}

	if _, err := repo.ListByUser(context.Background(), 1); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestOrderRepositoryTransition(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	key := uuid.New()
	ctx := context.Background()
	at := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	cancel := func(order model.Order) (model.StatusChange, bool, error) {
		return model.StatusChange{OrderID: order.ID, From: order.Status, To: model.OrderStatusCancelled, RestoreStock: true, At: at}, false, nil
	}

	mock.ExpectBegin()
	expectLockedOrder(mock, 5, key, model.OrderStatusPendingPaymentVerification)
	mock.ExpectExec("UPDATE orders SET status=.*cancelled_at").WithArgs(model.OrderStatusCancelled, at, int64(5)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(-2, int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(-1, int64(2)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	expectGetByID(mock, 5, 9, key, model.OrderStatusCancelled)

	order, err := repo.Transition(ctx, 5, cancel)
	if err != nil || order.Status != model.OrderStatusCancelled {
		t.Fatalf("unexpected result: %+v err=%v", order, err)
	}

	// Advancing never touches stock.
	mock.ExpectBegin()
	expectLockedOrder(mock, 5, key, model.OrderStatusProcessing)
	mock.ExpectExec("UPDATE orders SET status=.*shipped_at").WithArgs(model.OrderStatusShipped, at, int64(5)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	expectGetByID(mock, 5, 9, key, model.OrderStatusShipped)
	_, err = repo.Transition(ctx, 5, func(order model.Order) (model.StatusChange, bool, error) {
		return model.StatusChange{OrderID: 5, From: order.Status, To: model.OrderStatusShipped, At: at}, false, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Noop commits without writes.
	mock.ExpectBegin()
	expectLockedOrder(mock, 5, key, model.OrderStatusCancelled)
	mock.ExpectCommit()
	expectGetByID(mock, 5, 9, key, model.OrderStatusCancelled)
	if _, err := repo.Transition(ctx, 5, func(model.Order) (model.StatusChange, bool, error) {
		return model.StatusChange{}, true, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectBegin()
	expectLockedOrder(mock, 5, key, model.OrderStatusDelivered)
	mock.ExpectRollback()
	rejected := &domainErrors.InvalidTransitionError{From: "DELIVERED", To: "CANCELLED"}
	if _, err := repo.Transition(ctx, 5, func(model.Order) (model.StatusChange, bool, error) {
		return model.StatusChange{}, false, rejected
	}); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("(?s)SELECT o.id, o.checkout_key.*FOR UPDATE OF o").WithArgs(int64(6)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()
	if _, err := repo.Transition(ctx, 6, cancel); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryTransitionLogsMissingRestock(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	var logs bytes.Buffer
	storage.logger = slog.New(slog.NewJSONHandler(&logs, nil))
	repo := &orderRepository{storage: storage}
	key := uuid.New()
	at := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	expectLockedOrder(mock, 5, key, model.OrderStatusPendingPaymentVerification)
	mock.ExpectExec("UPDATE orders SET status=.*cancelled_at").WithArgs(model.OrderStatusCancelled, at, int64(5)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(-2, int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(-1, int64(2)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectCommit()
	expectGetByID(mock, 5, 9, key, model.OrderStatusCancelled)

	order, err := repo.Transition(context.Background(), 5, func(order model.Order) (model.StatusChange, bool, error) {
		return model.StatusChange{OrderID: order.ID, From: order.Status, To: model.OrderStatusCancelled, RestoreStock: true, At: at}, false, nil
	})
	if err != nil || order.Status != model.OrderStatusCancelled {
		t.Fatalf("cancel should succeed without the product row: %+v err=%v", order, err)
	}
	out := logs.String()
	if !strings.Contains(out, "stock not restored") || !strings.Contains(out, `"product_id":2`) || !strings.Contains(out, `"quantity":1`) {
		t.Fatalf("expected restock warning, got %q", out)
	}
	if strings.Contains(out, `"product_id":1`) {
		t.Fatalf("restored product should not be logged: %q", out)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryAmendQuantities(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	key := uuid.New()
	ctx := context.Background()
	at := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)

	var seenStock map[int64]int
	plan := func(order model.Order, stock map[int64]int) (model.OrderAmendment, error) {
		seenStock = stock
		items := []model.LineItem{order.Items[0]}
		items[0].Quantity = 3
		return model.OrderAmendment{
			OrderID:     order.ID,
			Items:       items,
			Adjustments: []model.StockAdjustment{{ProductID: 1, Delta: 1}, {ProductID: 2, Delta: -1}},
			Totals:      model.Totals{GrandTotal: money("60.00")},
			At:          at,
		}, nil
	}

	mock.ExpectBegin()
	expectLockedOrder(mock, 5, key, model.OrderStatusPendingPaymentVerification)
	mock.ExpectQuery("FROM products WHERE id = ANY.*FOR UPDATE").WithArgs([]int64{1, 2}).WillReturnRows(lockedProducts(4, 0))
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(1, int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(-1, int64(2)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM order_items WHERE order_id=").WithArgs(int64(5)).WillReturnResult(pgxmockv3.NewResult("DELETE", 2))
	mock.ExpectExec("INSERT INTO order_items").WithArgs(int64(5), 0, int64(1), "Brake pad", 3, pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), model.DiscountSourceProduct).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE payments SET amount=").WithArgs(money("60.00"), int64(5)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE orders SET updated_at=").WithArgs(at, int64(5)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	expectGetByID(mock, 5, 9, key, model.OrderStatusPendingPaymentVerification)

	if _, err := repo.AmendQuantities(ctx, 5, plan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seenStock[1] != 4 || seenStock[2] != 0 {
		t.Fatalf("planner got wrong stock: %v", seenStock)
	}

	mock.ExpectBegin()
	expectLockedOrder(mock, 5, key, model.OrderStatusPendingPaymentVerification)
	expectLockProducts(mock, lockedProducts(0, 0))
	mock.ExpectExec("UPDATE products SET stock = stock -").WithArgs(1, int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectRollback()
	_, err := repo.AmendQuantities(ctx, 5, plan)
	var stockErr *domainErrors.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if got := stockErr.Shortfalls[0]; got.ProductID != 1 || got.Requested != 3 || got.Available != 0 {
		t.Fatalf("shortfall should report the amended quantity: %+v", got)
	}

	mock.ExpectBegin()
	expectLockedOrder(mock, 5, key, model.OrderStatusProcessing)
	expectLockProducts(mock, lockedProducts(4, 0))
	mock.ExpectRollback()
	if _, err := repo.AmendQuantities(ctx, 5, func(model.Order, map[int64]int) (model.OrderAmendment, error) {
		return model.OrderAmendment{}, domainErrors.ErrOrderLocked
	}); !errors.Is(err, domainErrors.ErrOrderLocked) {
		t.Fatalf("expected locked order, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
