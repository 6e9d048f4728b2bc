package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBodyTooLarge = errors.New("response body too large")
)

// HTTPError — ответ бэкенда со статусом вне 2xx. Такие ответы не кэшируются.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

// Is сопоставляет статусы с ErrNotFound/ErrUnauthorized для errors.Is.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// Temporary — имеет ли смысл повторить запрос позже.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// newHTTPError достаёт `detail` из тела ошибки бэкенда, иначе берёт тело как есть (обрезанное).
func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	detail := strings.TrimSpace(string(body))

	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok {
			detail = s
		} else if raw, mErr := json.Marshal(payload.Detail); mErr == nil {
			detail = string(raw)
		}
	}

	return &HTTPError{Method: method, Path: path, StatusCode: status, Detail: truncate(detail, maxDetail)}
}

const maxDetail = 512

// truncate обрезает s до n байт, не разрезая UTF-8 символ.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
