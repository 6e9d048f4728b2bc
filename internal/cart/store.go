// Package cart — состояние корзины покупателя: строки по товарам и производные итоги.
package cart

import (
	"sync"

	"github.com/Gunvolt24/partstore/internal/domain"
)

// LineItem — строка корзины: снимок товара на момент первого добавления и количество (>= 1).
type LineItem struct {
	Product  domain.Product
	Quantity int
}

// Subtotal — цена строки.
func (li LineItem) Subtotal() float64 {
	return li.Product.Price * float64(li.Quantity)
}

// Store — корзина. Одна строка на ID товара, порядок первых добавлений сохраняется.
// Операции над несуществующим товаром — no-op.
type Store struct {
	items []LineItem
	index map[int64]int // id товара -> позиция в items

	mu sync.RWMutex
}

func NewStore() *Store {
	return &Store{index: make(map[int64]int)}
}

// AddItem увеличивает количество на 1 или добавляет новую строку.
// Цена и прочие поля фиксируются при первом добавлении.
func (s *Store) AddItem(product *domain.Product) {
	if product == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[product.ID]; ok {
		s.items[i].Quantity++
		s.report()
		return
	}

	s.index[product.ID] = len(s.items)
	s.items = append(s.items, LineItem{Product: snapshot(product), Quantity: 1})
	s.report()
}

func (s *Store) RemoveItem(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(productID)
}

// SetQuantity задаёт количество; n <= 0 удаляет строку.
func (s *Store) SetQuantity(productID int64, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		s.remove(productID)
		return
	}
	if i, ok := s.index[productID]; ok {
		s.items[i].Quantity = n
		s.report()
	}
}

// TotalItemCount — сумма количеств по всем строкам.
func (s *Store) TotalItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count()
}

// TotalPrice считается заново на каждый вызов, в порядке строк.
func (s *Store) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, li := range s.items {
		total += li.Subtotal()
	}
	return total
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.index = make(map[int64]int)
	s.report()
}

// Items — копия строк в порядке добавления.
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]LineItem, len(s.items))
	for i, li := range s.items {
		out[i] = LineItem{Product: snapshot(&li.Product), Quantity: li.Quantity}
	}
	return out
}

// Len — число различных товаров.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) IsEmpty() bool { return s.Len() == 0 }

// Quantity — количество товара в корзине (0, если его нет).
func (s *Store) Quantity(productID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.index[productID]; ok {
		return s.items[i].Quantity
	}
	return 0
}

// OrderItems — строки для тела заказа (product_id, quantity, price).
func (s *Store) OrderItems() []domain.OrderItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.OrderItem, 0, len(s.items))
	for _, li := range s.items {
		out = append(out, domain.OrderItem{
			ProductID: li.Product.ID,
			Quantity:  li.Quantity,
			Price:     li.Product.Price,
		})
	}
	return out
}
