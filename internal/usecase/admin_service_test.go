package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Gunvolt24/partstore/internal/domain"
	"github.com/Gunvolt24/partstore/internal/ports/mocks"
	"github.com/Gunvolt24/partstore/internal/usecase"
	"github.com/golang/mock/gomock"
)

func TestAdmin_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAdminAPI(ctrl)

	api.EXPECT().
		Login(gomock.Any(), domain.Credentials{Email: "admin@example.com", Password: "secret"}).
		Return(&domain.Session{AccessToken: "tok"}, nil)

	svc := usecase.NewAdminService(api, noopLogger{})
	s, err := svc.Login(context.Background(), " admin@example.com ", "secret")
	if err != nil || s.AccessToken != "tok" {
		t.Fatalf("unexpected login result: %+v err=%v", s, err)
	}

	if _, err := svc.Login(context.Background(), "", "secret"); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestAdmin_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAdminAPI(ctrl)
	api.EXPECT().SetToken("")

	usecase.NewAdminService(api, noopLogger{}).Logout()
}

func TestAdmin_SaveProduct(t *testing.T) {
	cases := []struct {
		name    string
		product domain.Product
		call    string // create|update|""
	}{
		{name: "create", product: domain.Product{Name: "pads", Price: 10, CategoryID: 1}, call: "create"},
		{name: "update", product: domain.Product{ID: 5, Name: "pads", Price: 10, CategoryID: 1}, call: "update"},
		{name: "free item ok", product: domain.Product{Name: "sticker", Price: 0, CategoryID: 1}, call: "create"},
		{name: "empty name", product: domain.Product{Name: "  ", Price: 10, CategoryID: 1}},
		{name: "negative price", product: domain.Product{Name: "pads", Price: -1, CategoryID: 1}},
		{name: "negative stock", product: domain.Product{Name: "pads", Price: 1, StockQuantity: -1, CategoryID: 1}},
		{name: "no category", product: domain.Product{Name: "pads", Price: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			api := mocks.NewMockAdminAPI(ctrl)
			p := tc.product

			switch tc.call {
			case "create":
				api.EXPECT().CreateProduct(gomock.Any(), &p).Return(&p, nil)
			case "update":
				api.EXPECT().UpdateProduct(gomock.Any(), &p).Return(&p, nil)
			}

			_, err := usecase.NewAdminService(api, noopLogger{}).SaveProduct(context.Background(), &p)
			if tc.call == "" && !errors.Is(err, usecase.ErrInvalidInput) {
				t.Fatalf("want ErrInvalidInput, got %v", err)
			}
			if tc.call != "" && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}

func TestAdmin_SaveModelRequiresBrand(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAdminAPI(ctrl)

	svc := usecase.NewAdminService(api, noopLogger{})
	if _, err := svc.SaveModel(context.Background(), &domain.CarModel{Name: "X3"}); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}

	m := &domain.CarModel{BrandID: 2, Name: "X3"}
	api.EXPECT().CreateModel(gomock.Any(), m).Return(&domain.CarModel{ID: 21, BrandID: 2, Name: "X3"}, nil)
	got, err := svc.SaveModel(context.Background(), m)
	if err != nil || got.ID != 21 {
		t.Fatalf("unexpected result: %+v err=%v", got, err)
	}
}

func TestAdmin_SaveBrandAndCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAdminAPI(ctrl)
	svc := usecase.NewAdminService(api, noopLogger{})
	ctx := context.Background()

	b := &domain.Brand{ID: 1, Name: "Toyota"}
	api.EXPECT().UpdateBrand(gomock.Any(), b).Return(b, nil)
	if _, err := svc.SaveBrand(ctx, b); err != nil {
		t.Fatalf("save brand: %v", err)
	}

	c := &domain.Category{Name: "Lights"}
	api.EXPECT().CreateCategory(gomock.Any(), c).Return(&domain.Category{ID: 9, Name: "Lights"}, nil)
	if got, err := svc.SaveCategory(ctx, c); err != nil || got.ID != 9 {
		t.Fatalf("save category: %+v %v", got, err)
	}

	if _, err := svc.SaveCategory(ctx, &domain.Category{}); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestAdmin_Deletes(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAdminAPI(ctrl)
	svc := usecase.NewAdminService(api, noopLogger{})
	ctx := context.Background()

	api.EXPECT().DeleteBrand(gomock.Any(), int64(1)).Return(nil)
	api.EXPECT().DeleteModel(gomock.Any(), int64(2)).Return(nil)
	api.EXPECT().DeleteCategory(gomock.Any(), int64(3)).Return(nil)
	api.EXPECT().DeleteProduct(gomock.Any(), int64(4)).Return(nil)

	for _, err := range []error{
		svc.DeleteBrand(ctx, 1),
		svc.DeleteModel(ctx, 2),
		svc.DeleteCategory(ctx, 3),
		svc.DeleteProduct(ctx, 4),
	} {
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}
}

func TestAdmin_UpdateOrderStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAdminAPI(ctrl)
	svc := usecase.NewAdminService(api, noopLogger{})

	if _, err := svc.UpdateOrderStatus(context.Background(), 1, "lost"); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}

	api.EXPECT().UpdateOrderStatus(gomock.Any(), int64(1), domain.OrderStatusShipped).
		Return(&domain.Order{ID: 1, Status: domain.OrderStatusShipped}, nil)
	got, err := svc.UpdateOrderStatus(context.Background(), 1, " Shipped ")
	if err != nil || got.Status != domain.OrderStatusShipped {
		t.Fatalf("unexpected result: %+v err=%v", got, err)
	}
}
