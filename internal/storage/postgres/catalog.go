package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/autoparts/internal/domain/errors"
	"github.com/polkiloo/autoparts/internal/domain/model"
)

const productColumns = `id, sku, name, price, stock, discount_pct, category_id, apply_category_discount`

type catalogRepository struct {
	storage *Storage
}

func (r *catalogRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	return queryProducts(ctx, r.storage.pool, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (r *catalogRepository) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	row := r.storage.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepository) GetProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return queryProducts(ctx, r.storage.pool, `SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id`, ids)
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	return queryCategories(ctx, r.storage.pool, `SELECT id, name, discount_pct FROM categories ORDER BY id`)
}

func (r *catalogRepository) GetCategoriesByIDs(ctx context.Context, ids []int64) ([]model.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return queryCategories(ctx, r.storage.pool, `SELECT id, name, discount_pct FROM categories WHERE id = ANY($1) ORDER BY id`, ids)
}

// lockProducts selects the given products FOR UPDATE in id order.
func lockProducts(ctx context.Context, q querier, ids []int64) ([]model.Product, error) {
	return queryProducts(ctx, q, `SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
}

// shareCategories reads the categories referenced by products FOR SHARE, so
// discounts cannot change until the surrounding transaction ends.
func shareCategories(ctx context.Context, q querier, products []model.Product) ([]model.Category, error) {
	var ids []int64
	seen := make(map[int64]bool)
	for _, p := range products {
		if p.CategoryID != nil && !seen[*p.CategoryID] {
			seen[*p.CategoryID] = true
			ids = append(ids, *p.CategoryID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return queryCategories(ctx, q, `SELECT id, name, discount_pct FROM categories WHERE id = ANY($1) ORDER BY id FOR SHARE`, ids)
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.Stock, &p.DiscountPct, &p.CategoryID, &p.ApplyCategoryDiscount)
	return p, err
}

func queryProducts(ctx context.Context, q querier, query string, args ...any) ([]model.Product, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func queryCategories(ctx context.Context, q querier, query string, args ...any) ([]model.Category, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.DiscountPct); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
