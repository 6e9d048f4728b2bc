package ports

import "time"

// ResponseCache — кэш ответов бэкенда по сигнатуре запроса (путь + отсортированные параметры).
// Хранит только успешно полученные тела; промах и истечение TTL неразличимы для вызывающего.
type ResponseCache interface {
	// Get — (тело, true) при попадании, (nil, false) при промахе/истечении.
	Get(key string) ([]byte, bool)

	// Set — сохранить/перезаписать тело; ttl <= 0 — без истечения.
	Set(key string, body []byte, ttl time.Duration)

	Delete(key string)

	// DeleteFunc — удалить все ключи, подходящие под match; возвращает число удалённых.
	DeleteFunc(match func(key string) bool) int

	Clear()
}
