package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Gunvolt24/partstore/internal/cart"
	"github.com/Gunvolt24/partstore/internal/domain"
	"github.com/Gunvolt24/partstore/internal/ports"
	"github.com/Gunvolt24/partstore/pkg/metrics"
)

// ErrEmptyCart — оформление пустой корзины.
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutService — оформление заказа из корзины.
type CheckoutService struct {
	orders    ports.OrderAPI
	validator ports.OrderValidator
	log       ports.Logger
}

// NewCheckoutService — DI-конструктор.
func NewCheckoutService(orders ports.OrderAPI, validator ports.OrderValidator, log ports.Logger) *CheckoutService {
	return &CheckoutService{orders: orders, validator: validator, log: log}
}

// Checkout собирает заказ из корзины, проверяет его и отправляет на бэкенд.
// Корзина очищается только после успешного ответа; при любой ошибке она остаётся как была.
func (s *CheckoutService) Checkout(ctx context.Context, customer domain.Customer, store *cart.Store) (*domain.Order, error) {
	if store.IsEmpty() {
		metrics.Checkouts.WithLabelValues("empty").Inc()
		return nil, ErrEmptyCart
	}

	req := BuildOrderRequest(customer, store)

	if err := s.validator.Validate(ctx, req); err != nil {
		metrics.Checkouts.WithLabelValues("invalid").Inc()
		s.log.Warnf(ctx, "checkout rejected items=%d err=%v", len(req.Items), err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	order, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		metrics.Checkouts.WithLabelValues("failed").Inc()
		s.log.Errorf(ctx, "create order failed items=%d total=%.2f err=%v", len(req.Items), req.TotalAmount, err)
		return nil, fmt.Errorf("create order: %w", err)
	}

	store.Clear()
	metrics.Checkouts.WithLabelValues("ok").Inc()
	s.log.Infof(ctx, "order placed id=%d items=%d total=%.2f", order.ID, len(req.Items), order.TotalAmount)
	return order, nil
}

// BuildOrderRequest — тело POST /orders из контактов и текущего содержимого корзины.
func BuildOrderRequest(customer domain.Customer, store *cart.Store) *domain.OrderRequest {
	return &domain.OrderRequest{
		CustomerName:    strings.TrimSpace(customer.Name),
		CustomerEmail:   strings.TrimSpace(customer.Email),
		CustomerPhone:   strings.TrimSpace(customer.Phone),
		CustomerAddress: strings.TrimSpace(customer.Address),
		Items:           store.OrderItems(),
		TotalAmount:     store.TotalPrice(),
	}
}
