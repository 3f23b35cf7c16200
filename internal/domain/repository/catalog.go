package repository

import (
	"context"

	"github.com/polkiloo/autoparts/internal/domain/model"
)

// CatalogRepository reads products and categories.
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoriesByIDs(ctx context.Context, ids []int64) ([]model.Category, error)
}
