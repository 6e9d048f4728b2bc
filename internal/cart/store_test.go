package cart_test

import (
	"sync"
	"testing"

	"github.com/Gunvolt24/partstore/internal/cart"
	"github.com/Gunvolt24/partstore/internal/domain"
)

func product(id int64, price float64) *domain.Product {
	return &domain.Product{ID: id, Name: "part", Price: price, ImageURL: "img.png"}
}

func TestAddItem_MergesByID(t *testing.T) {
	t.Parallel()
	s := cart.NewStore()

	s.AddItem(product(1, 10))
	s.AddItem(product(1, 10))

	items := s.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("want one line with quantity 2, got %+v", items)
	}
	if got := s.TotalItemCount(); got != 2 {
		t.Fatalf("TotalItemCount: want 2, got %d", got)
	}
	if got := s.TotalPrice(); got != 20 {
		t.Fatalf("TotalPrice: want 20, got %v", got)
	}
}

func TestSetQuantity_ZeroRemoves(t *testing.T) {
	t.Parallel()
	s := cart.NewStore()

	s.AddItem(product(1, 10))
	s.SetQuantity(1, 0)

	if s.Len() != 0 || s.Quantity(1) != 0 {
		t.Fatalf("item must be absent after quantity 0, items=%+v", s.Items())
	}

	s.AddItem(product(2, 5))
	s.SetQuantity(2, -3)
	if !s.IsEmpty() {
		t.Fatalf("negative quantity must remove the line, items=%+v", s.Items())
	}
}

func TestSetQuantity_UpdatesAndIgnoresUnknown(t *testing.T) {
	t.Parallel()
	s := cart.NewStore()

	s.AddItem(product(1, 2.5))
	s.SetQuantity(1, 4)
	s.SetQuantity(99, 7) // no-op

	if got := s.Quantity(1); got != 4 {
		t.Fatalf("want quantity 4, got %d", got)
	}
	if s.Len() != 1 {
		t.Fatalf("unknown id must not create a line, len=%d", s.Len())
	}
	if got := s.TotalPrice(); got != 10 {
		t.Fatalf("TotalPrice: want 10, got %v", got)
	}
}

func TestAddItem_SnapshotsPrice(t *testing.T) {
	t.Parallel()
	s := cart.NewStore()

	p := product(1, 10)
	s.AddItem(p)
	p.Price = 20 // цена изменилась в каталоге
	p.Name = "renamed"

	items := s.Items()
	if items[0].Product.Price != 10 || items[0].Product.Name != "part" {
		t.Fatalf("cart must keep the snapshot, got %+v", items[0].Product)
	}

	// повторное добавление увеличивает количество, но не переписывает цену
	s.AddItem(p)
	if got := s.TotalPrice(); got != 20 {
		t.Fatalf("TotalPrice: want 20 (2 x 10), got %v", got)
	}
}

func TestEmptyCart_Totals(t *testing.T) {
	t.Parallel()
	s := cart.NewStore()

	if s.TotalPrice() != 0 || s.TotalItemCount() != 0 {
		t.Fatalf("empty cart totals must be zero")
	}
	if !s.IsEmpty() || len(s.Items()) != 0 || len(s.OrderItems()) != 0 {
		t.Fatalf("empty cart must have no lines")
	}
}

func TestScenario_AddRemove(t *testing.T) {
	t.Parallel()
	s := cart.NewStore()

	a := product(1, 15)
	b := product(2, 5)
	s.AddItem(a)
	s.AddItem(b)
	s.AddItem(b)
	s.RemoveItem(a.ID)

	if got := s.TotalItemCount(); got != 2 {
		t.Fatalf("TotalItemCount: want 2, got %d", got)
	}
	if got := s.TotalPrice(); got != 10 {
		t.Fatalf("TotalPrice: want 10, got %v", got)
	}
}

func TestRemoveItem_PreservesOrderAndIndex(t *testing.T) {
	t.Parallel()
	s := cart.NewStore()

	for id := int64(1); id <= 4; id++ {
		s.AddItem(product(id, float64(id)))
	}
	s.RemoveItem(2)
	s.RemoveItem(42) // no-op

	// после удаления из середины индекс должен указывать на правильные строки
	s.AddItem(product(4, 4))
	s.SetQuantity(3, 5)

	items := s.Items()
	wantIDs := []int64{1, 3, 4}
	wantQty := []int{1, 5, 2}
	if len(items) != len(wantIDs) {
		t.Fatalf("want %d lines, got %+v", len(wantIDs), items)
	}
	for i := range items {
		if items[i].Product.ID != wantIDs[i] || items[i].Quantity != wantQty[i] {
			t.Fatalf("line %d: want id=%d qty=%d, got %+v", i, wantIDs[i], wantQty[i], items[i])
		}
	}
}

func TestItems_ReturnsCopy(t *testing.T) {
	t.Parallel()
	s := cart.NewStore()

	s.AddItem(product(1, 10))
	items := s.Items()
	items[0].Quantity = 100
	items[0].Product.Price = 0

	if s.Quantity(1) != 1 || s.TotalPrice() != 10 {
		t.Fatalf("mutating Items() result must not affect the cart")
	}
}

func TestOrderItems_Payload(t *testing.T) {
	t.Parallel()
	s := cart.NewStore()

	s.AddItem(product(7, 3.5))
	s.AddItem(product(9, 1))
	s.SetQuantity(7, 3)

	got := s.OrderItems()
	want := []domain.OrderItem{
		{ProductID: 7, Quantity: 3, Price: 3.5},
		{ProductID: 9, Quantity: 1, Price: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("want %d items, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d: want %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestClear(t *testing.T) {
	t.Parallel()
	s := cart.NewStore()

	s.AddItem(product(1, 10))
	s.AddItem(product(2, 10))
	s.Clear()

	if !s.IsEmpty() || s.TotalItemCount() != 0 {
		t.Fatalf("cart must be empty after Clear")
	}
	// после очистки корзина снова работает
	s.AddItem(product(1, 10))
	if s.Quantity(1) != 1 {
		t.Fatalf("cart must accept items after Clear")
	}
}

func TestAddItem_NilIgnored(t *testing.T) {
	t.Parallel()
	s := cart.NewStore()
	s.AddItem(nil)
	if !s.IsEmpty() {
		t.Fatalf("nil product must be ignored")
	}
}

func TestConcurrentAdds(t *testing.T) {
	t.Parallel()
	s := cart.NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddItem(product(1, 1))
		}()
	}
	wg.Wait()

	if s.Len() != 1 || s.Quantity(1) != 50 {
		t.Fatalf("want single line with 50, got %+v", s.Items())
	}
}
