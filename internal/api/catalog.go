package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Gunvolt24/partstore/internal/domain"
	"github.com/Gunvolt24/partstore/internal/ports"
	"github.com/Gunvolt24/partstore/pkg/httpx"
)

func (c *Client) Brands(ctx context.Context) ([]domain.Brand, error) {
	var out []domain.Brand
	if err := c.getJSON(ctx, "/brands", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ModelsByBrand — модели марки (GET /brands/{id}/models).
func (c *Client) ModelsByBrand(ctx context.Context, brandID int64) ([]domain.CarModel, error) {
	var out []domain.CarModel
	path := "/brands/" + strconv.FormatInt(brandID, 10) + "/models"
	if err := c.getJSON(ctx, path, nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Models — все модели всех марок (нужны панели администратора).
func (c *Client) Models(ctx context.Context) ([]domain.CarModel, error) {
	var out []domain.CarModel
	if err := c.getJSON(ctx, "/models", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := c.getJSON(ctx, "/categories", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Products — список товаров. Пустые фильтры в запрос не попадают, поэтому
// одинаковые по смыслу фильтры дают одну и ту же сигнатуру кэша.
func (c *Client) Products(ctx context.Context, filter ports.ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	httpx.SetInt64(q, "category_id", filter.CategoryID)
	httpx.SetInt64(q, "brand_id", filter.BrandID)
	httpx.SetInt64(q, "model_id", filter.ModelID)
	httpx.SetString(q, "search", filter.Search)
	httpx.SetString(q, "sort_by", filter.SortBy)

	ttl := c.ttl
	if q.Has("search") {
		ttl = c.searchTTL
	}

	var out []domain.Product
	if err := c.getJSON(ctx, "/products", q, ttl, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Product(ctx context.Context, id int64) (*domain.Product, error) {
	var out domain.Product
	if err := c.getJSON(ctx, "/products/"+strconv.FormatInt(id, 10), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchSuggestions — подсказки для строки поиска (GET /search/suggestions?q=).
func (c *Client) SearchSuggestions(ctx context.Context, query string) ([]domain.Suggestion, error) {
	q := url.Values{}
	httpx.SetString(q, "q", query)

	var out []domain.Suggestion
	if err := c.getJSON(ctx, "/search/suggestions", q, c.searchTTL, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PopularSearches(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, "/search/popular", nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out, nil
}
