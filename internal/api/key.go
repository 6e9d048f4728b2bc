package api

import (
	"net/url"
	"strings"
)

// RequestKey — сигнатура кэшируемого запроса: нормализованный путь и параметры,
// отсортированные по имени (url.Values.Encode сортирует ключи).
//
// Пример: /products?brand_id=3&model_id=7
func RequestKey(path string, query url.Values) string {
	p := "/" + strings.Trim(path, "/")
	if len(query) == 0 {
		return p
	}
	if encoded := query.Encode(); encoded != "" {
		return p + "?" + encoded
	}
	return p
}
