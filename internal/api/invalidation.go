package api

import "strings"

// Семейства ресурсов: запись в ресурс сбрасывает все кэшированные ответы,
// ключ которых содержит хотя бы один из фрагментов. Модели марки кэшируются
// под /brands/{id}/models и поэтому попадают под фрагмент "/models".
var families = []struct {
	prefix string
	drop   []string
}{
	{prefix: "/models", drop: []string{"/models", "/search"}},
	{prefix: "/brands", drop: []string{"/brands", "/search"}},
	{prefix: "/products", drop: []string{"/products", "/search"}},
	{prefix: "/categories", drop: []string{"/categories", "/search"}},
	{prefix: "/orders", drop: []string{"/orders"}},
}

// affectedFragments — фрагменты ключей, которые устаревают после записи в path.
func affectedFragments(path string) []string {
	p := "/" + strings.Trim(path, "/")
	for _, f := range families {
		if p == f.prefix || strings.HasPrefix(p, f.prefix+"/") {
			return f.drop
		}
	}
	return nil
}

func matchesAny(key string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}
