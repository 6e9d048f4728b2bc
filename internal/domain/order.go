package domain

import "time"

// Статусы заказа.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Customer — контактные данные покупателя из формы оформления.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// OrderItem — строка заказа в теле запроса на оформление.
type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderRequest — тело POST /orders.
type OrderRequest struct {
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerAddress string      `json:"customer_address,omitempty"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"total_amount"`
}

// Order — заказ в ответах бэкенда.
type Order struct {
	ID              int64            `json:"id"`
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email"`
	CustomerPhone   string           `json:"customer_phone"`
	CustomerAddress string           `json:"customer_address,omitempty"`
	PaymentMethod   string           `json:"payment_method,omitempty"`
	TotalAmount     float64          `json:"total_amount"`
	DepositAmount   float64          `json:"deposit_amount,omitempty"`
	Status          string           `json:"status"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	Items           []OrderedProduct `json:"items,omitempty"`
}

// OrderedProduct — позиция сохранённого заказа.
type OrderedProduct struct {
	ProductID   int64   `json:"product_id"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	ProductName string  `json:"product_name,omitempty"`
}

// ValidOrderStatus — известен ли статус.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}
