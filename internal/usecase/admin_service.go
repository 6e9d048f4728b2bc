package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Gunvolt24/partstore/internal/domain"
	"github.com/Gunvolt24/partstore/internal/ports"
)

// ErrInvalidInput — не заполнены обязательные поля формы администратора.
var ErrInvalidInput = errors.New("invalid input")

// AdminService — панель администратора: вход, правка каталога, заказы.
// Запись делегируется клиенту API, который сам сбрасывает затронутые ключи кэша.
type AdminService struct {
	api ports.AdminAPI
	log ports.Logger
}

func NewAdminService(api ports.AdminAPI, log ports.Logger) *AdminService {
	return &AdminService{api: api, log: log}
}

func (s *AdminService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrInvalidInput)
	}
	session, err := s.api.Login(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		s.log.Warnf(ctx, "admin login failed email=%s err=%v", email, err)
		return nil, err
	}
	s.log.Infof(ctx, "admin logged in email=%s", email)
	return session, nil
}

// Logout сбрасывает токен.
func (s *AdminService) Logout() { s.api.SetToken("") }

// SaveBrand создаёт марку (ID == 0) или обновляет существующую.
func (s *AdminService) SaveBrand(ctx context.Context, b *domain.Brand) (*domain.Brand, error) {
	if err := requireName(b.Name); err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return s.api.CreateBrand(ctx, b)
	}
	return s.api.UpdateBrand(ctx, b)
}

func (s *AdminService) DeleteBrand(ctx context.Context, id int64) error {
	return s.api.DeleteBrand(ctx, id)
}

func (s *AdminService) Models(ctx context.Context) ([]domain.CarModel, error) {
	return s.api.Models(ctx)
}

func (s *AdminService) SaveModel(ctx context.Context, m *domain.CarModel) (*domain.CarModel, error) {
	if err := requireName(m.Name); err != nil {
		return nil, err
	}
	if m.BrandID <= 0 {
		return nil, fmt.Errorf("%w: brand_id required", ErrInvalidInput)
	}
	if m.ID == 0 {
		return s.api.CreateModel(ctx, m)
	}
	return s.api.UpdateModel(ctx, m)
}

func (s *AdminService) DeleteModel(ctx context.Context, id int64) error {
	return s.api.DeleteModel(ctx, id)
}

func (s *AdminService) SaveCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	if err := requireName(c.Name); err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return s.api.CreateCategory(ctx, c)
	}
	return s.api.UpdateCategory(ctx, c)
}

func (s *AdminService) DeleteCategory(ctx context.Context, id int64) error {
	return s.api.DeleteCategory(ctx, id)
}

// SaveProduct — цена и остаток не могут быть отрицательными, категория обязательна.
func (s *AdminService) SaveProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if err := requireName(p.Name); err != nil {
		return nil, err
	}
	switch {
	case p.Price < 0:
		return nil, fmt.Errorf("%w: negative price", ErrInvalidInput)
	case p.StockQuantity < 0:
		return nil, fmt.Errorf("%w: negative stock", ErrInvalidInput)
	case p.CategoryID <= 0:
		return nil, fmt.Errorf("%w: category_id required", ErrInvalidInput)
	}
	if p.ID == 0 {
		return s.api.CreateProduct(ctx, p)
	}
	return s.api.UpdateProduct(ctx, p)
}

func (s *AdminService) DeleteProduct(ctx context.Context, id int64) error {
	return s.api.DeleteProduct(ctx, id)
}

func (s *AdminService) Orders(ctx context.Context) ([]domain.Order, error) {
	return s.api.Orders(ctx)
}

func (s *AdminService) Order(ctx context.Context, id int64) (*domain.Order, error) {
	return s.api.Order(ctx, id)
}

// UpdateOrderStatus — неизвестный статус отклоняется без обращения к бэкенду.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !domain.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, status)
	}
	order, err := s.api.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		s.log.Errorf(ctx, "update order status failed id=%d status=%s err=%v", id, status, err)
		return nil, err
	}
	s.log.Infof(ctx, "order status updated id=%d status=%s", id, status)
	return order, nil
}

func requireName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	return nil
}
