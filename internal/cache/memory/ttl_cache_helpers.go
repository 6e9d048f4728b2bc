package memory

import (
	"container/list"
	"time"

	"github.com/Gunvolt24/partstore/pkg/metrics"
)

// evictOldest удаляет самую раннюю по вставке запись.
func (c *TTLCache[V]) evictOldest() {
	if front := c.ll.Front(); front != nil {
		c.removeElement(front)
		metrics.CacheOps.WithLabelValues("evicted").Inc()
		c.reportSize()
	}
}

// removeElement удаляет элемент из списка и индекса.
func (c *TTLCache[V]) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}
	if ent, ok := elem.Value.(*entry[V]); ok {
		delete(c.index, ent.key)
	}
	c.ll.Remove(elem)
}

// pruneExpiredFromFront удаляет истёкшие записи с головы очереди до первой актуальной.
func (c *TTLCache[V]) pruneExpiredFromFront(now time.Time) {
	for {
		front := c.ll.Front()
		if front == nil {
			return
		}
		ent, ok := front.Value.(*entry[V])
		if ok && !isExpired(ent, now) {
			return
		}
		c.removeElement(front)
		if ok {
			metrics.CacheOps.WithLabelValues("expired").Inc()
		}
	}
}

func (c *TTLCache[V]) reportSize() {
	metrics.CacheSize.Set(float64(c.ll.Len()))
}

func isExpired[V any](ent *entry[V], now time.Time) bool {
	if ent.expiresAt.IsZero() {
		return false
	}
	return now.After(ent.expiresAt)
}

func expiryFrom(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
