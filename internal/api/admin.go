package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Gunvolt24/partstore/internal/domain"
)

// Login — вход администратора; при успехе токен запоминается в клиенте.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	var out domain.Session
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrUnauthorized)
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}

// ---- марки ----

func (c *Client) CreateBrand(ctx context.Context, b *domain.Brand) (*domain.Brand, error) {
	return writeForm[domain.Brand](ctx, c, http.MethodPost, "/brands", brandForm(b))
}

// UpdateBrand — при обновлении без нового логотипа бэкенд сохраняет existing_logo.
func (c *Client) UpdateBrand(ctx context.Context, b *domain.Brand) (*domain.Brand, error) {
	return writeForm[domain.Brand](ctx, c, http.MethodPut, idPath("/brands", b.ID), brandForm(b))
}

func (c *Client) DeleteBrand(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, idPath("/brands", id), nil, nil, "", nil)
}

// ---- модели ----

func (c *Client) CreateModel(ctx context.Context, m *domain.CarModel) (*domain.CarModel, error) {
	return writeForm[domain.CarModel](ctx, c, http.MethodPost, "/models", modelForm(m))
}

func (c *Client) UpdateModel(ctx context.Context, m *domain.CarModel) (*domain.CarModel, error) {
	return writeForm[domain.CarModel](ctx, c, http.MethodPut, idPath("/models", m.ID), modelForm(m))
}

func (c *Client) DeleteModel(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, idPath("/models", id), nil, nil, "", nil)
}

// ---- категории (JSON) ----

func (c *Client) CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	var out domain.Category
	if err := c.sendJSON(ctx, http.MethodPost, "/categories", cat, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	var out domain.Category
	if err := c.sendJSON(ctx, http.MethodPut, idPath("/categories", cat.ID), cat, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, idPath("/categories", id), nil, nil, "", nil)
}

// ---- товары ----

func (c *Client) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	return writeForm[domain.Product](ctx, c, http.MethodPost, "/products", productForm(p))
}

func (c *Client) UpdateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	return writeForm[domain.Product](ctx, c, http.MethodPut, idPath("/products", p.ID), productForm(p))
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, idPath("/products", id), nil, nil, "", nil)
}

// formField — поле multipart-формы; пустые необязательные поля не отправляются.
type formField struct {
	name     string
	value    string
	optional bool
}

func brandForm(b *domain.Brand) []formField {
	return []formField{
		{name: "name", value: b.Name},
		{name: "description", value: b.Description},
		{name: "color", value: b.Color},
		{name: "existing_logo", value: b.LogoURL, optional: true},
	}
}

func modelForm(m *domain.CarModel) []formField {
	return []formField{
		{name: "name", value: m.Name},
		{name: "brand_id", value: strconv.FormatInt(m.BrandID, 10)},
		{name: "description", value: m.Description, optional: true},
		{name: "existing_image", value: m.ImageURL, optional: true},
	}
}

func productForm(p *domain.Product) []formField {
	fields := []formField{
		{name: "name", value: p.Name},
		{name: "price", value: strconv.FormatFloat(p.Price, 'f', -1, 64)},
		{name: "category_id", value: strconv.FormatInt(p.CategoryID, 10)},
		{name: "stock_quantity", value: strconv.Itoa(p.StockQuantity)},
		{name: "description", value: p.Description, optional: true},
	}
	// brand_id/model_id не задаются у универсальных товаров.
	if p.BrandID > 0 {
		fields = append(fields, formField{name: "brand_id", value: strconv.FormatInt(p.BrandID, 10)})
	}
	if p.ModelID > 0 {
		fields = append(fields, formField{name: "model_id", value: strconv.FormatInt(p.ModelID, 10)})
	}
	return fields
}

func writeForm[T any](ctx context.Context, c *Client, method, path string, fields []formField) (*T, error) {
	body, contentType, err := encodeForm(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	var out T
	if err := c.send(ctx, method, path, nil, body, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func encodeForm(fields []formField) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if f.optional && f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func idPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}
