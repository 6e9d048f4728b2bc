// Package testutil — фейковый REST-бэкенд витрины на gin для тестов клиента и приложения.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Gunvolt24/partstore/internal/domain"
	"github.com/gin-gonic/gin"
)

// Учётные данные администратора фейкового бэкенда.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "secret"
	AdminToken    = "test-token"
)

// Backend — хранит каталог в памяти, считает обращения по "METHOD /path" (без /api)
// и умеет имитировать ошибки и медленные ответы.
type Backend struct {
	mu sync.Mutex

	brands     []domain.Brand
	models     []domain.CarModel
	categories []domain.Category
	products   []domain.Product
	orders     []domain.Order
	nextID     int64

	hits     map[string]int
	failures map[string]int // путь -> статус следующего ответа
	gate     chan struct{}
	lastAuth string
}

// NewBackend — бэкенд с небольшим засеянным каталогом.
func NewBackend() *Backend {
	b := &Backend{
		hits:     make(map[string]int),
		failures: make(map[string]int),
		nextID:   100,
	}
	b.brands = []domain.Brand{
		{ID: 1, Name: "Toyota", Description: "Japan", Color: "#eb0a1e"},
		{ID: 2, Name: "BMW", Description: "Germany", Color: "#0066b1"},
	}
	b.models = []domain.CarModel{
		{ID: 10, BrandID: 1, Name: "Camry"},
		{ID: 11, BrandID: 1, Name: "Corolla"},
		{ID: 20, BrandID: 2, Name: "X5"},
	}
	b.categories = []domain.Category{
		{ID: 1, Name: "Brakes"},
		{ID: 2, Name: "Filters"},
	}
	b.products = []domain.Product{
		{ID: 1, Name: "Brake pads Camry", Price: 49.9, CategoryID: 1, BrandID: 1, ModelID: 10, StockQuantity: 5, Rating: 4.5},
		{ID: 2, Name: "Oil filter Corolla", Price: 9.5, CategoryID: 2, BrandID: 1, ModelID: 11, StockQuantity: 0, Rating: 4.1},
		{ID: 3, Name: "Brake disc X5", Price: 120, CategoryID: 1, BrandID: 2, ModelID: 20, StockQuantity: 2, Rating: 4.8},
		{ID: 4, Name: "Universal wiper", Price: 15, CategoryID: 2, StockQuantity: 40},
	}
	return b
}

// Serve поднимает httptest-сервер и возвращает базовый URL API (".../api").
func (b *Backend) Serve(t testing.TB) string {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

// Hits — сколько раз бэкенд получил запрос method path (путь без /api и без query).
func (b *Backend) Hits(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+path]
}

// FailNext — следующий запрос на path получит status.
func (b *Backend) FailNext(path string, status int) {
	b.mu.Lock()
	b.failures[path] = status
	b.mu.Unlock()
}

// Hold задерживает все запросы до вызова release.
func (b *Backend) Hold() (release func()) {
	gate := make(chan struct{})
	b.mu.Lock()
	b.gate = gate
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.gate = nil
			b.mu.Unlock()
			close(gate)
		})
	}
}

// LastAuthorization — заголовок Authorization последнего запроса.
func (b *Backend) LastAuthorization() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth
}

// Orders — копия принятых заказов.
func (b *Backend) Orders() []domain.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Order(nil), b.orders...)
}

// AddProduct добавляет товар в обход API (имитация изменений на стороне сервера).
func (b *Backend) AddProduct(p domain.Product) {
	b.mu.Lock()
	b.products = append(b.products, p)
	b.mu.Unlock()
}

// Handler — gin-роутер с маршрутами бэкенда под /api.
func (b *Backend) Handler() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(b.track())

	api := r.Group("/api")
	admin := api.Group("", b.requireToken())

	api.GET("/brands", b.listBrands)
	api.GET("/brands/:id/models", b.brandModels)
	admin.POST("/brands", b.createBrand)
	admin.PUT("/brands/:id", b.updateBrand)
	admin.DELETE("/brands/:id", b.deleteBrand)

	api.GET("/models", b.listModels)
	admin.POST("/models", b.createModel)
	admin.PUT("/models/:id", b.updateModel)
	admin.DELETE("/models/:id", b.deleteModel)

	api.GET("/categories", b.listCategories)
	admin.POST("/categories", b.createCategory)
	admin.PUT("/categories/:id", b.updateCategory)
	admin.DELETE("/categories/:id", b.deleteCategory)

	api.GET("/products", b.listProducts)
	api.GET("/products/:id", b.getProduct)
	admin.POST("/products", b.createProduct)
	admin.PUT("/products/:id", b.updateProduct)
	admin.DELETE("/products/:id", b.deleteProduct)

	api.GET("/search/suggestions", b.suggestions)
	api.GET("/search/popular", b.popular)

	api.POST("/orders", b.createOrder)
	admin.GET("/orders", b.listOrders)
	admin.GET("/orders/:id", b.getOrder)
	admin.PUT("/orders/:id/status", b.updateOrderStatus)

	api.POST("/auth/login", b.login)

	return r
}

// track считает обращения, применяет Hold и FailNext.
func (b *Backend) track() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := strings.TrimPrefix(c.Request.URL.Path, "/api")

		b.mu.Lock()
		b.hits[c.Request.Method+" "+path]++
		b.lastAuth = c.GetHeader("Authorization")
		gate := b.gate
		status, fail := b.failures[path]
		delete(b.failures, path)
		b.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-c.Request.Context().Done():
				c.AbortWithStatus(http.StatusServiceUnavailable)
				return
			case <-time.After(5 * time.Second):
			}
		}
		if fail {
			c.AbortWithStatusJSON(status, gin.H{"detail": http.StatusText(status)})
			return
		}
		c.Next()
	}
}

func (b *Backend) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer "+AdminToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or missing token"})
			return
		}
		c.Next()
	}
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return v
}

func formID(c *gin.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.PostForm(name), 10, 64)
	return v
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"detail": what + " not found"})
}

// ---- марки ----

func (b *Backend) listBrands(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.brands)
}

func (b *Backend) brandModels(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []domain.CarModel{}
	for _, m := range b.models {
		if m.BrandID == id {
			out = append(out, m)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) createBrand(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	brand := domain.Brand{
		ID:          b.nextID,
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Color:       c.PostForm("color"),
		LogoURL:     c.PostForm("existing_logo"),
	}
	b.brands = append(b.brands, brand)
	c.JSON(http.StatusOK, brand)
}

func (b *Backend) updateBrand(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.brands {
		if b.brands[i].ID == id {
			b.brands[i].Name = c.PostForm("name")
			b.brands[i].Description = c.PostForm("description")
			b.brands[i].Color = c.PostForm("color")
			b.brands[i].LogoURL = c.PostForm("existing_logo")
			c.JSON(http.StatusOK, b.brands[i])
			return
		}
	}
	notFound(c, "Brand")
}

func (b *Backend) deleteBrand(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.brands = removeWhere(b.brands, func(v domain.Brand) bool { return v.ID == id })
	c.JSON(http.StatusOK, gin.H{"message": "Brand deleted"})
}

// ---- модели ----

func (b *Backend) listModels(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.models)
}

func (b *Backend) createModel(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	m := domain.CarModel{
		ID:          b.nextID,
		BrandID:     formID(c, "brand_id"),
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
	}
	b.models = append(b.models, m)
	c.JSON(http.StatusOK, m)
}

func (b *Backend) updateModel(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.models {
		if b.models[i].ID == id {
			b.models[i].Name = c.PostForm("name")
			b.models[i].BrandID = formID(c, "brand_id")
			b.models[i].Description = c.PostForm("description")
			b.models[i].ImageURL = c.PostForm("existing_image")
			c.JSON(http.StatusOK, b.models[i])
			return
		}
	}
	notFound(c, "Model")
}

func (b *Backend) deleteModel(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.models = removeWhere(b.models, func(v domain.CarModel) bool { return v.ID == id })
	c.JSON(http.StatusOK, gin.H{"message": "Model deleted"})
}

// ---- категории ----

func (b *Backend) listCategories(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.categories)
}

func (b *Backend) createCategory(c *gin.Context) {
	var in domain.Category
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	in.ID = b.nextID
	b.categories = append(b.categories, in)
	c.JSON(http.StatusOK, in)
}

func (b *Backend) updateCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in domain.Category
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.categories {
		if b.categories[i].ID == id {
			in.ID = id
			b.categories[i] = in
			c.JSON(http.StatusOK, in)
			return
		}
	}
	notFound(c, "Category")
}

func (b *Backend) deleteCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.categories = removeWhere(b.categories, func(v domain.Category) bool { return v.ID == id })
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// ---- товары ----

func (b *Backend) listProducts(c *gin.Context) {
	categoryID, brandID, modelID := queryID(c, "category_id"), queryID(c, "brand_id"), queryID(c, "model_id")
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))

	b.mu.Lock()
	out := []domain.Product{}
	for _, p := range b.products {
		if categoryID > 0 && p.CategoryID != categoryID {
			continue
		}
		if brandID > 0 && p.BrandID != brandID {
			continue
		}
		if modelID > 0 && p.ModelID != modelID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, p)
	}
	b.mu.Unlock()

	switch c.Query("sort_by") {
	case domain.SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case domain.SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case domain.SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) getProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.products {
		if p.ID == id {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	notFound(c, "Product")
}

func productFromForm(c *gin.Context) domain.Product {
	price, _ := strconv.ParseFloat(c.PostForm("price"), 64)
	stock, _ := strconv.Atoi(c.PostForm("stock_quantity"))
	return domain.Product{
		Name:          c.PostForm("name"),
		Price:         price,
		CategoryID:    formID(c, "category_id"),
		BrandID:       formID(c, "brand_id"),
		ModelID:       formID(c, "model_id"),
		StockQuantity: stock,
		Description:   c.PostForm("description"),
	}
}

func (b *Backend) createProduct(c *gin.Context) {
	p := productFromForm(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	p.ID = b.nextID
	b.products = append(b.products, p)
	c.JSON(http.StatusOK, p)
}

func (b *Backend) updateProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	p := productFromForm(c)
	p.ID = id
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == id {
			b.products[i] = p
			c.JSON(http.StatusOK, p)
			return
		}
	}
	notFound(c, "Product")
}

func (b *Backend) deleteProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.products = removeWhere(b.products, func(v domain.Product) bool { return v.ID == id })
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// ---- поиск ----

func (b *Backend) suggestions(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	out := []domain.Suggestion{}
	if len(q) < 2 {
		c.JSON(http.StatusOK, out)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	add := func(text, kind string) {
		if len(out) < 10 && strings.Contains(strings.ToLower(text), q) {
			out = append(out, domain.Suggestion{Text: text, Type: kind})
		}
	}
	for _, v := range b.brands {
		add(v.Name, "brand")
	}
	for _, v := range b.models {
		add(v.Name, "model")
	}
	for _, v := range b.categories {
		add(v.Name, "category")
	}
	for _, v := range b.products {
		add(v.Name, "product")
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) popular(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.brands)+len(b.categories))
	for _, v := range b.brands {
		out = append(out, v.Name)
	}
	for _, v := range b.categories {
		out = append(out, v.Name)
	}
	if len(out) > 10 {
		out = out[:10]
	}
	c.JSON(http.StatusOK, out)
}

// ---- заказы ----

func (b *Backend) createOrder(c *gin.Context) {
	var in domain.OrderRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	order := domain.Order{
		ID:              b.nextID,
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		CustomerPhone:   in.CustomerPhone,
		CustomerAddress: in.CustomerAddress,
		Status:          domain.OrderStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	for _, it := range in.Items {
		order.TotalAmount += it.Price * float64(it.Quantity)
		order.Items = append(order.Items, domain.OrderedProduct{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	b.orders = append(b.orders, order)
	c.JSON(http.StatusOK, order)
}

func (b *Backend) listOrders(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := append([]domain.Order{}, b.orders...)
	c.JSON(http.StatusOK, out)
}

func (b *Backend) getOrder(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.orders {
		if o.ID == id {
			c.JSON(http.StatusOK, o)
			return
		}
	}
	notFound(c, "Order")
}

func (b *Backend) updateOrderStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	status := c.Query("status")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == id {
			b.orders[i].Status = status
			c.JSON(http.StatusOK, b.orders[i])
			return
		}
	}
	notFound(c, "Order")
}

func (b *Backend) login(c *gin.Context) {
	var in domain.Credentials
	if err := c.ShouldBindJSON(&in); err != nil || in.Email != AdminEmail || in.Password != AdminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": AdminToken, "user": gin.H{"email": in.Email}})
}

func removeWhere[T any](s []T, match func(T) bool) []T {
	out := s[:0]
	for _, v := range s {
		if !match(v) {
			out = append(out, v)
		}
	}
	return out
}
