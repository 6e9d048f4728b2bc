package api_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Gunvolt24/partstore/internal/api"
	"github.com/Gunvolt24/partstore/internal/cache/memory"
	"github.com/Gunvolt24/partstore/internal/clock"
	"github.com/Gunvolt24/partstore/internal/domain"
	"github.com/Gunvolt24/partstore/internal/ports"
	"github.com/Gunvolt24/partstore/internal/testutil"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

func newClient(t *testing.T, opts ...memory.Option) (*api.Client, *testutil.Backend, *memory.TTLCache[[]byte]) {
	t.Helper()
	backend := testutil.NewBackend()
	cache := memory.NewTTLCache[[]byte](100, opts...)
	client := api.NewClient(api.Config{
		BaseURL: backend.Serve(t),
		TTL:     5 * time.Minute,
	}, http.DefaultClient, cache, noopLogger{})
	return client, backend, cache
}

func TestClient_CachesGet(t *testing.T) {
	client, backend, _ := newClient(t)
	ctx := context.Background()

	first, err := client.Brands(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := client.Brands(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, backend.Hits(http.MethodGet, "/brands"))
}

func TestClient_CachedValuesAreNotShared(t *testing.T) {
	client, _, _ := newClient(t)
	ctx := context.Background()

	first, err := client.Brands(ctx)
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := client.Brands(ctx)
	require.NoError(t, err)
	require.Equal(t, "Toyota", second[0].Name)
}

func TestClient_ExpiredEntryRefetched(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	client, backend, _ := newClient(t, memory.WithClock(clk))
	ctx := context.Background()

	_, err := client.Categories(ctx)
	require.NoError(t, err)

	clk.Advance(5 * time.Minute)
	_, err = client.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, backend.Hits(http.MethodGet, "/categories"), "entry is still valid at exact expiry")

	clk.Advance(time.Millisecond)
	_, err = client.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, backend.Hits(http.MethodGet, "/categories"))
}

func TestClient_QueryOrderDoesNotSplitCache(t *testing.T) {
	client, backend, _ := newClient(t)
	ctx := context.Background()

	_, err := client.Products(ctx, ports.ProductFilter{BrandID: 1, ModelID: 10})
	require.NoError(t, err)
	_, err = client.Products(ctx, ports.ProductFilter{ModelID: 10, BrandID: 1, Search: "  "})
	require.NoError(t, err)

	require.Equal(t, 1, backend.Hits(http.MethodGet, "/products"))
}

func TestClient_ProductsFilters(t *testing.T) {
	client, _, _ := newClient(t)

	got, err := client.Products(context.Background(), ports.ProductFilter{CategoryID: 1, SortBy: domain.SortPriceDesc})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(3), got[0].ID)
	require.Equal(t, int64(1), got[1].ID)
}

func TestClient_CoalescesConcurrentGets(t *testing.T) {
	client, backend, _ := newClient(t)
	ctx := context.Background()

	release := backend.Hold()
	const callers = 8

	var wg sync.WaitGroup
	results := make([][]domain.CarModel, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = client.ModelsByBrand(ctx, 1)
		}(i)
	}

	require.Eventually(t, func() bool {
		return backend.Hits(http.MethodGet, "/brands/1/models") == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	release()
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Len(t, results[i], 2)
	}
	require.Equal(t, 1, backend.Hits(http.MethodGet, "/brands/1/models"))
}

func TestClient_CanceledWaiterDoesNotBreakSharedFetch(t *testing.T) {
	client, backend, cache := newClient(t)

	release := backend.Hold()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := client.Brands(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return backend.Hits(http.MethodGet, "/brands") == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	release()
	require.Eventually(t, func() bool {
		_, ok := cache.Get("/brands")
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestClient_ErrorsNotCached(t *testing.T) {
	client, backend, cache := newClient(t)
	ctx := context.Background()

	backend.FailNext("/categories", http.StatusInternalServerError)
	_, err := client.Categories(ctx)

	var httpErr *api.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	require.True(t, httpErr.Temporary())
	require.Equal(t, 0, cache.Len())

	got, err := client.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 2, backend.Hits(http.MethodGet, "/categories"))
}

func TestClient_RetriesTemporaryFailure(t *testing.T) {
	backend := testutil.NewBackend()
	cache := memory.NewTTLCache[[]byte](10)
	client := api.NewClient(api.Config{
		BaseURL:      backend.Serve(t),
		TTL:          time.Minute,
		Retries:      2,
		RetryInitial: time.Millisecond,
		RetryMax:     2 * time.Millisecond,
	}, http.DefaultClient, cache, noopLogger{})

	backend.FailNext("/brands", http.StatusServiceUnavailable)
	got, err := client.Brands(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 2, backend.Hits(http.MethodGet, "/brands"))
	require.Equal(t, 1, cache.Len())
}

func TestClient_NotFound(t *testing.T) {
	client, _, cache := newClient(t)

	_, err := client.Product(context.Background(), 999)
	require.ErrorIs(t, err, api.ErrNotFound)
	require.Contains(t, err.Error(), "Product not found")
	require.Equal(t, 0, cache.Len())
}

func TestClient_AdminRequiresToken(t *testing.T) {
	client, backend, _ := newClient(t)
	ctx := context.Background()

	_, err := client.Orders(ctx)
	require.ErrorIs(t, err, api.ErrUnauthorized)

	_, err = client.Login(ctx, domain.Credentials{Email: testutil.AdminEmail, Password: "wrong"})
	require.ErrorIs(t, err, api.ErrUnauthorized)

	session, err := client.Login(ctx, domain.Credentials{Email: testutil.AdminEmail, Password: testutil.AdminPassword})
	require.NoError(t, err)
	require.Equal(t, testutil.AdminToken, session.AccessToken)

	_, err = client.Orders(ctx)
	require.NoError(t, err)
	require.Equal(t, "Bearer "+testutil.AdminToken, backend.LastAuthorization())
}

func TestClient_LogoutDropsCachedOrders(t *testing.T) {
	client, backend, cache := newClient(t)
	ctx := context.Background()

	_, err := client.Login(ctx, domain.Credentials{Email: testutil.AdminEmail, Password: testutil.AdminPassword})
	require.NoError(t, err)
	_, err = client.Orders(ctx)
	require.NoError(t, err)
	_, ok := cache.Get("/orders")
	require.True(t, ok)

	client.SetToken("")
	_, ok = cache.Get("/orders")
	require.False(t, ok)

	_, err = client.Orders(ctx)
	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.Equal(t, 2, backend.Hits(http.MethodGet, "/orders"))
}

func TestClient_SameTokenKeepsCache(t *testing.T) {
	client, backend, _ := newClient(t)
	ctx := context.Background()

	client.SetToken(testutil.AdminToken)
	_, err := client.Orders(ctx)
	require.NoError(t, err)

	client.SetToken(testutil.AdminToken)
	_, err = client.Orders(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, backend.Hits(http.MethodGet, "/orders"))
}

// stubDoer отвечает 200 с заданным телом, не обращаясь к сети.
type stubDoer struct {
	body []byte
}

func (d stubDoer) Do(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(d.body)),
	}, nil
}

func TestClient_BadBodiesNotCached(t *testing.T) {
	t.Parallel()

	oversized := append([]byte("["), bytes.Repeat([]byte(" "), 11<<20)...)
	oversized = append(oversized, ']')

	cases := []struct {
		name string
		body []byte
		want error
	}{
		{name: "oversized", body: oversized, want: api.ErrBodyTooLarge},
		{name: "not json", body: []byte("<html>maintenance</html>")},
		{name: "cut json", body: []byte(`[{"id":1,"name":"Toy`)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cache := memory.NewTTLCache[[]byte](10)
			client := api.NewClient(api.Config{BaseURL: "http://backend/api", TTL: time.Minute},
				stubDoer{body: tc.body}, cache, noopLogger{})

			_, err := client.Brands(context.Background())
			require.Error(t, err)
			if tc.want != nil {
				require.ErrorIs(t, err, tc.want)
			}
			require.Equal(t, 0, cache.Len())
		})
	}
}

func TestClient_CallerAfterInvalidateDoesNotJoinOldFetch(t *testing.T) {
	client, backend, cache := newClient(t)
	ctx := context.Background()

	release := backend.Hold()
	first := make(chan error, 1)
	go func() {
		_, err := client.Brands(ctx)
		first <- err
	}()
	require.Eventually(t, func() bool {
		return backend.Hits(http.MethodGet, "/brands") == 1
	}, time.Second, 5*time.Millisecond)

	client.Invalidate(ctx, "/brands")

	second := make(chan error, 1)
	go func() {
		_, err := client.Brands(ctx)
		second <- err
	}()
	require.Eventually(t, func() bool {
		return backend.Hits(http.MethodGet, "/brands") == 2
	}, time.Second, 5*time.Millisecond)

	release()
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	_, ok := cache.Get("/brands")
	require.True(t, ok)
}

func TestClient_WriteInvalidatesFamily(t *testing.T) {
	client, backend, cache := newClient(t)
	ctx := context.Background()
	client.SetToken(testutil.AdminToken)

	_, err := client.Products(ctx, ports.ProductFilter{BrandID: 1})
	require.NoError(t, err)
	_, err = client.SearchSuggestions(ctx, "br")
	require.NoError(t, err)
	_, err = client.Brands(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, cache.Len())

	created, err := client.CreateProduct(ctx, &domain.Product{Name: "Brake hose", Price: 12, CategoryID: 1, BrandID: 1, StockQuantity: 3})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	// Товары и поиск сброшены, марки остались.
	require.Equal(t, 1, cache.Len())
	_, ok := cache.Get("/brands")
	require.True(t, ok)

	got, err := client.Products(ctx, ports.ProductFilter{BrandID: 1})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, 2, backend.Hits(http.MethodGet, "/products"))
}

func TestClient_BrandModelsInvalidatedByModelWrite(t *testing.T) {
	client, _, _ := newClient(t)
	ctx := context.Background()
	client.SetToken(testutil.AdminToken)

	models, err := client.ModelsByBrand(ctx, 2)
	require.NoError(t, err)
	require.Len(t, models, 1)

	_, err = client.CreateModel(ctx, &domain.CarModel{BrandID: 2, Name: "X3"})
	require.NoError(t, err)

	models, err = client.ModelsByBrand(ctx, 2)
	require.NoError(t, err)
	require.Len(t, models, 2)
}

func TestClient_FailedWriteKeepsCache(t *testing.T) {
	client, _, cache := newClient(t)
	ctx := context.Background()

	_, err := client.Categories(ctx)
	require.NoError(t, err)

	// без токена
	_, err = client.CreateCategory(ctx, &domain.Category{Name: "Lights"})
	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.Equal(t, 1, cache.Len())
}

func TestClient_CreateOrder(t *testing.T) {
	client, backend, _ := newClient(t)

	order, err := client.CreateOrder(context.Background(), &domain.OrderRequest{
		CustomerName:  "Ivan",
		CustomerEmail: "ivan@example.com",
		CustomerPhone: "+7 900 000-00-00",
		Items:         []domain.OrderItem{{ProductID: 1, Quantity: 2, Price: 49.9}},
		TotalAmount:   99.8,
	})
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, order.Status)
	require.InDelta(t, 99.8, order.TotalAmount, 1e-9)
	require.Len(t, backend.Orders(), 1)
}

func TestClient_UpdateOrderStatus(t *testing.T) {
	client, _, _ := newClient(t)
	ctx := context.Background()

	order, err := client.CreateOrder(ctx, &domain.OrderRequest{
		CustomerName: "A", CustomerEmail: "a@example.com", CustomerPhone: "1",
		Items: []domain.OrderItem{{ProductID: 4, Quantity: 1, Price: 15}}, TotalAmount: 15,
	})
	require.NoError(t, err)

	client.SetToken(testutil.AdminToken)
	before, err := client.Order(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, before.Status)

	updated, err := client.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusShipped, updated.Status)

	after, err := client.Order(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusShipped, after.Status)
}

func TestClient_Purge(t *testing.T) {
	client, _, cache := newClient(t)
	ctx := context.Background()

	_, err := client.Brands(ctx)
	require.NoError(t, err)
	_, err = client.PopularSearches(ctx)
	require.NoError(t, err)

	client.Purge()
	require.Equal(t, 0, cache.Len())
}

func TestHTTPError_Is(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		target error
		want   bool
	}{
		{http.StatusNotFound, api.ErrNotFound, true},
		{http.StatusUnauthorized, api.ErrUnauthorized, true},
		{http.StatusForbidden, api.ErrUnauthorized, true},
		{http.StatusBadRequest, api.ErrNotFound, false},
		{http.StatusNotFound, api.ErrUnauthorized, false},
	}
	for _, tc := range cases {
		err := error(&api.HTTPError{Method: http.MethodGet, Path: "/x", StatusCode: tc.status})
		if got := errors.Is(err, tc.target); got != tc.want {
			t.Fatalf("status %d is %v: got %v, want %v", tc.status, tc.target, got, tc.want)
		}
	}
}
