package httpx

import (
	"net/url"
	"strconv"
	"strings"
)

// ClampInt — ограничение значения v в диапазоне [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetInt64 добавляет числовой параметр в query; ноль и отрицательные значения пропускаются.
func SetInt64(q url.Values, key string, v int64) {
	if v > 0 {
		q.Set(key, strconv.FormatInt(v, 10))
	}
}

// SetString добавляет строковый параметр; пустые (после trim) пропускаются.
func SetString(q url.Values, key, v string) {
	if v = strings.TrimSpace(v); v != "" {
		q.Set(key, v)
	}
}
