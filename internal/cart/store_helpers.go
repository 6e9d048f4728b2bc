package cart

import (
	"github.com/Gunvolt24/partstore/internal/domain"
	"github.com/Gunvolt24/partstore/pkg/metrics"
)

// remove удаляет строку и пересобирает индекс позиций. Вызывается под блокировкой.
func (s *Store) remove(productID int64) {
	i, ok := s.index[productID]
	if !ok {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, productID)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].Product.ID] = j
	}
	s.report()
}

func (s *Store) count() int {
	n := 0
	for _, li := range s.items {
		n += li.Quantity
	}
	return n
}

func (s *Store) report() {
	metrics.CartItems.Set(float64(s.count()))
}

// snapshot — копия товара, чтобы внешние изменения каталога не меняли корзину.
func snapshot(p *domain.Product) domain.Product {
	cp := *p
	if p.Images != nil {
		cp.Images = append([]string(nil), p.Images...)
	}
	return cp
}
