package ports

import (
	"context"

	"github.com/Gunvolt24/partstore/internal/domain"
)

// AdminAPI — операции панели администратора. Все вызовы требуют токен,
// кроме Login, который его выдаёт.
type AdminAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	SetToken(token string)

	CreateBrand(ctx context.Context, b *domain.Brand) (*domain.Brand, error)
	UpdateBrand(ctx context.Context, b *domain.Brand) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id int64) error

	Models(ctx context.Context) ([]domain.CarModel, error)
	CreateModel(ctx context.Context, m *domain.CarModel) (*domain.CarModel, error)
	UpdateModel(ctx context.Context, m *domain.CarModel) (*domain.CarModel, error)
	DeleteModel(ctx context.Context, id int64) error

	CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	Orders(ctx context.Context) ([]domain.Order, error)
	Order(ctx context.Context, id int64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (*domain.Order, error)
}
