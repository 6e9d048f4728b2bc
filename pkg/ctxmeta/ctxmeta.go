// Пакет ctxmeta — метаданные вызова, которые едут через context.Context
// (request_id исходящего запроса, session_id сессии витрины, trace/span).
// HTTP-клиент и логгер зависят от этого пакета, но не друг от друга.
package ctxmeta

import "context"

type ctxKey string

const (
	// Ключи контекста (неэкспортируемый тип — чтобы избежать коллизий).
	KeyRequestID ctxKey = "request_id"
	KeySessionID ctxKey = "session_id"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withString(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeyRequestID)
}

// WithSessionID помечает контекст идентификатором сессии витрины.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return withString(ctx, KeySessionID, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, KeySessionID)
}

// Fields — пары ключ/значение для структурного логгера; пустые значения пропускаются.
func Fields(ctx context.Context) []any {
	var out []any
	if v, ok := RequestIDFromContext(ctx); ok {
		out = append(out, string(KeyRequestID), v)
	}
	if v, ok := SessionIDFromContext(ctx); ok {
		out = append(out, string(KeySessionID), v)
	}
	if v, ok := TraceIDFromContext(ctx); ok {
		out = append(out, "trace_id", v)
	}
	return out
}

func withString(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil || v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func stringFrom(ctx context.Context, key ctxKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
