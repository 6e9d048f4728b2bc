package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Gunvolt24/partstore/internal/domain"
)

// ordersPath — ресурс заказов; чтение требует токен администратора.
const ordersPath = "/orders"

// CreateOrder — оформление заказа (POST /orders). Итог пересчитывает бэкенд,
// возвращённый заказ создаётся в статусе pending.
func (c *Client) CreateOrder(ctx context.Context, req *domain.OrderRequest) (*domain.Order, error) {
	var out domain.Order
	if err := c.sendJSON(ctx, http.MethodPost, ordersPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Orders — все заказы (требует токен администратора).
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.getJSON(ctx, ordersPath, nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Order(ctx context.Context, id int64) (*domain.Order, error) {
	var out domain.Order
	if err := c.getJSON(ctx, "/orders/"+strconv.FormatInt(id, 10), nil, c.ttl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrderStatus — смена статуса; бэкенд принимает статус параметром запроса.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	var out domain.Order
	q := url.Values{"status": []string{status}}
	path := "/orders/" + strconv.FormatInt(id, 10) + "/status"
	if err := c.send(ctx, http.MethodPut, path, q, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
