package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
)

type invoiceRepository struct {
	storage *Storage
}

// Create stores the invoice unless the order already has one, in which case
// the existing invoice is returned with created=false.
func (r *invoiceRepository) Create(ctx context.Context, inv model.Invoice) (*model.Invoice, bool, error) {
	const query = `INSERT INTO invoices (number, order_id, user_id, customer_name, customer_national_id,
                       customer_phone, customer_address, customer_city, customer_state, issued_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                   ON CONFLICT (order_id) DO NOTHING
                   RETURNING id`
	c := inv.Customer
	err := r.storage.pool.QueryRow(ctx, query, inv.Number, inv.OrderID, c.UserID, c.FullName, c.NationalID,
		c.Phone, c.Address, c.City, c.State, inv.IssuedAt).Scan(&inv.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, err := r.GetByOrder(ctx, inv.OrderID)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return &inv, true, nil
}

func (r *invoiceRepository) GetByOrder(ctx context.Context, orderID int64) (*model.Invoice, error) {
	const query = `SELECT id, number, order_id, user_id, customer_name, customer_national_id, customer_phone,
                          customer_address, customer_city, customer_state, issued_at
                   FROM invoices WHERE order_id=$1`
	var inv model.Invoice
	c := &inv.Customer
	err := r.storage.pool.QueryRow(ctx, query, orderID).Scan(&inv.ID, &inv.Number, &inv.OrderID, &c.UserID, &c.FullName,
		&c.NationalID, &c.Phone, &c.Address, &c.City, &c.State, &inv.IssuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}
