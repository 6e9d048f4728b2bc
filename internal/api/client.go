// Package api — обёртка над REST-бэкендом витрины: GET-запросы идут через кэш ответов
// с объединением одновременных запросов, записи сбрасывают связанные ключи кэша.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gunvolt24/partstore/internal/ports"
	"github.com/Gunvolt24/partstore/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

var (
	_ ports.CatalogAPI = (*Client)(nil)
	_ ports.OrderAPI   = (*Client)(nil)
	_ ports.AdminAPI   = (*Client)(nil)
)

// maxBodySize — предел размера тела ответа.
const maxBodySize = 10 << 20

// Doer — минимальный контракт HTTP-клиента (подменяется в тестах).
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config — параметры клиента.
type Config struct {
	BaseURL   string        // например, http://127.0.0.1:8000/api
	TTL       time.Duration // TTL ответов каталога
	SearchTTL time.Duration // TTL результатов поиска и подсказок
	Token     string        // токен администратора, если уже известен

	Retries      int           // повторы GET после временной ошибки; 0 — без повторов
	RetryInitial time.Duration // первая пауза перед повтором
	RetryMax     time.Duration // предел паузы
}

type Client struct {
	baseURL   string
	ttl       time.Duration
	searchTTL time.Duration

	http  Doer
	retry *retryPolicy
	cache ports.ResponseCache
	log   ports.Logger

	group singleflight.Group
	// generation растёт при каждой инвалидации; ответ, запрошенный до неё, не кэшируется.
	generation atomic.Uint64

	mu    sync.RWMutex
	token string
}

// NewClient — DI-конструктор.
func NewClient(cfg Config, doer Doer, cache ports.ResponseCache, log ports.Logger) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 10 * time.Second}
	}
	searchTTL := cfg.SearchTTL
	if searchTTL <= 0 {
		searchTTL = cfg.TTL
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		ttl:       cfg.TTL,
		searchTTL: searchTTL,
		http:      doer,
		retry:     newRetryPolicy(cfg.Retries, cfg.RetryInitial, cfg.RetryMax),
		cache:     cache,
		log:       log,
		token:     cfg.Token,
	}
}

// SetToken задаёт bearer-токен для админских запросов (пустая строка — сброс).
// Смена токена сбрасывает закэшированные ответы защищённых ресурсов.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	changed := c.token != token
	c.token = token
	c.mu.Unlock()

	if changed {
		c.Invalidate(context.Background(), ordersPath)
	}
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Invalidate сбрасывает кэшированные ответы семейства ресурса, к которому относится path.
func (c *Client) Invalidate(ctx context.Context, path string) int {
	fragments := affectedFragments(path)
	if len(fragments) == 0 {
		return 0
	}
	c.generation.Add(1)
	n := c.cache.DeleteFunc(func(key string) bool { return matchesAny(key, fragments) })
	if n > 0 {
		c.log.Infof(ctx, "cache invalidated path=%s keys=%d", path, n)
	}
	return n
}

// Purge полностью очищает кэш ответов.
func (c *Client) Purge() {
	c.generation.Add(1)
	c.cache.Clear()
}

// getJSON — кэшируемый GET. Одновременные запросы с одной сигнатурой объединяются:
// в сеть уходит один запрос, остальные получают его результат. Ошибки не кэшируются.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, ttl time.Duration, out any) error {
	key := RequestKey(path, query)

	if body, ok := c.cache.Get(key); ok {
		return decode(body, out)
	}

	// Поколение входит в ключ группы: после инвалидации к старому запросу не присоединяются.
	gen := c.generation.Load()
	flight := key + "#" + strconv.FormatUint(gen, 10)

	ch := c.group.DoChan(flight, func() (any, error) {
		if body, ok := c.cache.Get(key); ok {
			return body, nil
		}

		// Запрос общий для всех ожидающих: отмена первого вызывающего не должна рвать его для остальных.
		fetchCtx := context.WithoutCancel(ctx)
		body, err := c.retry.do(fetchCtx, c.log, http.MethodGet, path, func() ([]byte, error) {
			return c.do(fetchCtx, http.MethodGet, path, query, nil, "")
		})
		if err != nil {
			return nil, err
		}
		if !json.Valid(body) {
			return nil, fmt.Errorf("decode response %s: invalid JSON", path)
		}
		if c.generation.Load() == gen {
			c.cache.Set(key, body, ttl)
		}
		return body, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		if res.Shared {
			metrics.APICoalesced.Inc()
		}
		return decode(res.Val.([]byte), out)
	}
}

// send — некэшируемый запрос на запись; после успеха инвалидирует семейство ресурса.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	respBody, err := c.do(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	c.Invalidate(ctx, path)

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	return decode(respBody, out)
}

// sendJSON — send с JSON-телом.
func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	return c.send(ctx, method, path, nil, bytes.NewReader(raw), "application/json", out)
}

// do выполняет запрос и возвращает тело 2xx-ответа; иначе *HTTPError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if len(respBody) > maxBodySize {
		return nil, fmt.Errorf("%w: %s %s", ErrBodyTooLarge, method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := newHTTPError(method, path, resp.StatusCode, respBody)
		c.log.Warnf(ctx, "backend error: %v", httpErr)
		return nil, httpErr
	}
	return respBody, nil
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
