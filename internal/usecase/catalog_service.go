package usecase

import (
	"context"
	"strings"

	"github.com/Gunvolt24/partstore/internal/domain"
	"github.com/Gunvolt24/partstore/internal/ports"
)

// DefaultMinQueryLen — подсказки запрашиваются начиная с этой длины запроса.
const DefaultMinQueryLen = 2

// CatalogService — навигация по каталогу: марка -> модель -> запчасти, карточка товара, поиск.
type CatalogService struct {
	api         ports.CatalogAPI
	log         ports.Logger
	minQueryLen int
}

// NewCatalogService — DI-конструктор.
func NewCatalogService(api ports.CatalogAPI, log ports.Logger, minQueryLen int) *CatalogService {
	if minQueryLen <= 0 {
		minQueryLen = DefaultMinQueryLen
	}
	return &CatalogService{api: api, log: log, minQueryLen: minQueryLen}
}

func (s *CatalogService) Brands(ctx context.Context) ([]domain.Brand, error) {
	return s.api.Brands(ctx)
}

func (s *CatalogService) Models(ctx context.Context, brandID int64) ([]domain.CarModel, error) {
	return s.api.ModelsByBrand(ctx, brandID)
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.api.Categories(ctx)
}

// Parts — запчасти для марки и (необязательно) модели; modelID <= 0 — все модели марки.
func (s *CatalogService) Parts(ctx context.Context, brandID, modelID int64, sortBy string) ([]domain.Product, error) {
	return s.api.Products(ctx, ports.ProductFilter{BrandID: brandID, ModelID: modelID, SortBy: sortBy})
}

// Browse — произвольный список с фильтрами.
func (s *CatalogService) Browse(ctx context.Context, filter ports.ProductFilter) ([]domain.Product, error) {
	return s.api.Products(ctx, filter)
}

func (s *CatalogService) ProductDetails(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.api.Product(ctx, id)
	if err != nil {
		s.log.Warnf(ctx, "product details failed id=%d err=%v", id, err)
		return nil, err
	}
	return p, nil
}

// Search — полнотекстовый поиск товаров. Пустой запрос не уходит на бэкенд.
func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Product{}, nil
	}
	return s.api.Products(ctx, ports.ProductFilter{Search: query})
}

// Suggestions — подсказки для строки поиска; короткие запросы дают пустой результат.
func (s *CatalogService) Suggestions(ctx context.Context, query string) ([]domain.Suggestion, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < s.minQueryLen {
		return []domain.Suggestion{}, nil
	}
	return s.api.SearchSuggestions(ctx, query)
}

func (s *CatalogService) Popular(ctx context.Context) ([]string, error) {
	return s.api.PopularSearches(ctx)
}
