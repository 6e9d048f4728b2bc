// Package rest — служебный HTTP-сервер клиента витрины: проверка живости, метрики,
// состояние кэша ответов и корзины.
package rest

import (
	"net/http"
	"time"

	"github.com/Gunvolt24/partstore/internal/cart"
	"github.com/Gunvolt24/partstore/internal/ports"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CacheInspector — то, что нужно от кэша ответов для отладки.
type CacheInspector interface {
	Len() int
	Keys() []string
}

// CachePurger сбрасывает кэш ответов (реализует api.Client).
type CachePurger interface {
	Purge()
}

type Handler struct {
	cache  CacheInspector
	purger CachePurger
	cart   *cart.Store
	log    ports.Logger
}

func NewHandler(cache CacheInspector, purger CachePurger, store *cart.Store, log ports.Logger) *Handler {
	return &Handler{cache: cache, purger: purger, cart: store, log: log}
}

// NewRouter — gin-роутер служебного сервера. ginMode: debug|release|test.
func NewRouter(h *Handler, ginMode string) *gin.Engine {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	debug := r.Group("/debug")
	debug.GET("/cache", h.cacheState)
	debug.DELETE("/cache", h.purgeCache)
	debug.GET("/cart", h.cartState)

	r.HandleMethodNotAllowed = true
	return r
}

type cacheStateResponse struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

func (h *Handler) cacheState(c *gin.Context) {
	c.JSON(http.StatusOK, cacheStateResponse{Size: h.cache.Len(), Keys: h.cache.Keys()})
}

func (h *Handler) purgeCache(c *gin.Context) {
	size := h.cache.Len()
	h.purger.Purge()
	h.log.Infof(c.Request.Context(), "response cache purged entries=%d", size)
	c.Status(http.StatusNoContent)
}

type cartLine struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type cartStateResponse struct {
	Items      []cartLine `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice float64    `json:"total_price"`
}

func (h *Handler) cartState(c *gin.Context) {
	items := h.cart.Items()
	resp := cartStateResponse{
		Items:      make([]cartLine, 0, len(items)),
		TotalItems: h.cart.TotalItemCount(),
		TotalPrice: h.cart.TotalPrice(),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, cartLine{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func requestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		log.Infof(c.Request.Context(), "request method=%s path=%s status=%d duration=%s", c.Request.Method, c.FullPath(), c.Writer.Status(), duration)
	}
}
