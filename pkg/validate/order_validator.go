package validate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"

	"github.com/Gunvolt24/partstore/internal/domain"
	"github.com/Gunvolt24/partstore/internal/ports"
)

// Проверка, что OrderValidator удовлетворяет интерфейсу OrderValidator.
var _ ports.OrderValidator = (*OrderValidator)(nil)

// ErrInvalidOrder — базовая (sentinel error) ошибка валидации.
var ErrInvalidOrder = errors.New("order validation failed")

// totalTolerance — допустимое расхождение total_amount и суммы строк (полкопейки).
const totalTolerance = 0.005

// OrderValidator — валидация тела заказа перед отправкой на бэкенд.
type OrderValidator struct{}

// NewOrderValidator — конструктор OrderValidator.
// Возвращает ErrInvalidOrder (с обёрнутой причиной) при любой проблеме.
func NewOrderValidator() *OrderValidator { return &OrderValidator{} }

// Validate — проверяет контакты покупателя, строки и итоговую сумму.
func (v *OrderValidator) Validate(_ context.Context, order *domain.OrderRequest) error {
	if order == nil {
		return fmt.Errorf("%w: заказ не может быть nil", ErrInvalidOrder)
	}
	if err := v.validateCustomer(order); err != nil {
		return err
	}
	if err := v.validateItems(order.Items); err != nil {
		return err
	}
	return v.validateTotal(order)
}

// validateCustomer — контактные данные.
func (v *OrderValidator) validateCustomer(order *domain.OrderRequest) error {
	if strings.TrimSpace(order.CustomerName) == "" {
		return fmt.Errorf("%w: customer_name обязателен", ErrInvalidOrder)
	}
	if strings.TrimSpace(order.CustomerPhone) == "" {
		return fmt.Errorf("%w: customer_phone обязателен", ErrInvalidOrder)
	}
	if order.CustomerEmail == "" {
		return fmt.Errorf("%w: customer_email обязателен", ErrInvalidOrder)
	}
	if _, err := mail.ParseAddress(order.CustomerEmail); err != nil {
		return fmt.Errorf("%w: customer_email некорректен", ErrInvalidOrder)
	}
	return nil
}

// Валидация строк
func (v *OrderValidator) validateItems(items []domain.OrderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: items не должен быть пустым", ErrInvalidOrder)
	}

	seen := make(map[int64]struct{}, len(items))
	for i := range items {
		item := &items[i]

		if item.ProductID <= 0 {
			return fmt.Errorf("%w: items[%d].product_id должен быть положительным", ErrInvalidOrder, i)
		}
		if _, dup := seen[item.ProductID]; dup {
			return fmt.Errorf("%w: items[%d].product_id=%d повторяется", ErrInvalidOrder, i, item.ProductID)
		}
		seen[item.ProductID] = struct{}{}

		if item.Quantity < 1 {
			return fmt.Errorf("%w: items[%d].quantity должен быть >= 1", ErrInvalidOrder, i)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: items[%d].price должен быть неотрицательным", ErrInvalidOrder, i)
		}
	}
	return nil
}

// Сверка итоговой суммы
func (v *OrderValidator) validateTotal(order *domain.OrderRequest) error {
	sum := ItemsTotal(order.Items)
	if math.Abs(sum-order.TotalAmount) > totalTolerance {
		return fmt.Errorf("%w: total_amount=%.2f не совпадает с суммой строк %.2f",
			ErrInvalidOrder, order.TotalAmount, sum)
	}
	return nil
}

// ItemsTotal — сумма price*quantity в порядке строк.
func ItemsTotal(items []domain.OrderItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}
