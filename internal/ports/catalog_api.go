package ports

import (
	"context"

	"github.com/Gunvolt24/partstore/internal/domain"
)

// ProductFilter — фильтры GET /products. Нулевые значения не передаются.
type ProductFilter struct {
	CategoryID int64
	BrandID    int64
	ModelID    int64
	Search     string
	SortBy     string
}

// CatalogAPI — чтение каталога (кэшируемые GET-запросы).
type CatalogAPI interface {
	Brands(ctx context.Context) ([]domain.Brand, error)
	ModelsByBrand(ctx context.Context, brandID int64) ([]domain.CarModel, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Products(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Product(ctx context.Context, id int64) (*domain.Product, error)
	SearchSuggestions(ctx context.Context, query string) ([]domain.Suggestion, error)
	PopularSearches(ctx context.Context) ([]string, error)
}

// OrderAPI — оформление заказа.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req *domain.OrderRequest) (*domain.Order, error)
}
