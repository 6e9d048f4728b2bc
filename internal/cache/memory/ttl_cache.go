package memory

import (
	"container/list"
	"sync"
	"time"

	"github.com/Gunvolt24/partstore/internal/clock"
	"github.com/Gunvolt24/partstore/internal/ports"
	"github.com/Gunvolt24/partstore/pkg/metrics"
)

// Проверка, что кэш тел ответов удовлетворяет порту.
var _ ports.ResponseCache = (*TTLCache[[]byte])(nil)

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time // нулевое значение — без истечения
}

// TTLCache — ограниченный по размеру кэш с TTL на каждую запись.
// Вытеснение FIFO: при переполнении удаляется самая ранняя по вставке запись.
// Перезапись ключа считается новой вставкой и переносит его в хвост очереди.
type TTLCache[V any] struct {
	capacity int
	clock    ports.Clock

	ll    *list.List // front — самая старая вставка
	index map[string]*list.Element

	mu sync.Mutex
}

// Option — настройка TTLCache.
type Option func(*options)

type options struct {
	clock ports.Clock
}

// WithClock подменяет источник времени.
func WithClock(c ports.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func NewTTLCache[V any](capacity int, opts ...Option) *TTLCache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	o := options{clock: clock.System{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTLCache[V]{
		capacity: capacity,
		clock:    o.clock,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Get возвращает значение, если оно есть и не истекло. Истёкшая запись удаляется.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return zero, false
	}
	ent := elem.Value.(*entry[V])
	if isExpired(ent, now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		c.reportSize()
		return zero, false
	}

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return ent.value, true
}

// Set сохраняет значение с истечением now+ttl (ttl <= 0 — бессрочно).
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		ent := elem.Value.(*entry[V])
		ent.value = value
		ent.expiresAt = expiryFrom(now, ttl)
		c.ll.MoveToBack(elem)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.pruneExpiredFromFront(now)
	}
	for c.ll.Len() >= c.capacity {
		c.evictOldest()
	}

	c.index[key] = c.ll.PushBack(&entry[V]{
		key:       key,
		value:     value,
		expiresAt: expiryFrom(now, ttl),
	})
	c.reportSize()
}

func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		c.removeElement(elem)
		c.reportSize()
	}
}

// DeleteFunc удаляет все записи, ключ которых подходит под match.
func (c *TTLCache[V]) DeleteFunc(match func(key string) bool) int {
	if match == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.ll.Front(); elem != nil; {
		next := elem.Next()
		if match(elem.Value.(*entry[V]).key) {
			c.removeElement(elem)
			removed++
		}
		elem = next
	}
	if removed > 0 {
		metrics.CacheOps.WithLabelValues("invalidated").Add(float64(removed))
		c.reportSize()
	}
	return removed
}

func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.index = make(map[string]*list.Element)
	c.reportSize()
}

// Len — число хранимых записей, включая истёкшие, до которых ещё не дошла очистка.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// PurgeExpired удаляет все истёкшие записи; возвращает их число.
func (c *TTLCache[V]) PurgeExpired() int {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.ll.Front(); elem != nil; {
		next := elem.Next()
		if isExpired(elem.Value.(*entry[V]), now) {
			c.removeElement(elem)
			removed++
		}
		elem = next
	}
	if removed > 0 {
		metrics.CacheOps.WithLabelValues("expired").Add(float64(removed))
		c.reportSize()
	}
	return removed
}

// Keys — ключи в порядке вставки (от старых к новым).
func (c *TTLCache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.ll.Len())
	for elem := c.ll.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*entry[V]).key)
	}
	return keys
}
