package ports

import "time"

// Clock — источник времени; подменяется в тестах, чтобы проверять TTL без sleep.
type Clock interface {
	Now() time.Time
}
