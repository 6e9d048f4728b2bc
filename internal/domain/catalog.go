package domain

// Brand — марка автомобиля (верхний уровень каталога).
type Brand struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
	Color       string `json:"color"`
}

// CarModel — модель внутри марки.
type CarModel struct {
	ID          int64  `json:"id"`
	BrandID     int64  `json:"brand_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product — запчасть. BrandID/ModelID не заданы (0) для универсальных товаров.
type Product struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	CategoryID    int64    `json:"category_id"`
	BrandID       int64    `json:"brand_id,omitempty"`
	ModelID       int64    `json:"model_id,omitempty"`
	ImageURL      string   `json:"image_url"`
	Images        []string `json:"images,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	ReviewsCount  int      `json:"reviews_count,omitempty"`
	StockQuantity int      `json:"stock_quantity"`
	Description   string   `json:"description,omitempty"`
}

// InStock — есть ли товар на складе.
func (p *Product) InStock() bool { return p.StockQuantity > 0 }

// Suggestion — подсказка поиска (brand|model|category|product).
type Suggestion struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Сортировки списка товаров, которые понимает бэкенд.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortNewest    = "newest"
)
