package httpx

import (
	"net/http"

	"github.com/Gunvolt24/partstore/pkg/ctxmeta"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestIDTransport:
// - берёт request_id из контекста запроса или генерирует UUID
// - выставляет заголовок X-Request-ID исходящего запроса
// - кладёт request_id в контекст, чтобы нижние транспорты и логгер видели его
type RequestIDTransport struct {
	Next http.RoundTripper
}

func (t *RequestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID, ok := ctxmeta.RequestIDFromContext(req.Context())
	if !ok {
		requestID = req.Header.Get(HeaderRequestID)
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}

	// RoundTripper не должен менять исходный запрос.
	out := req.Clone(ctxmeta.WithRequestID(req.Context(), requestID))
	out.Header.Set(HeaderRequestID, requestID)

	return next(t.Next).RoundTrip(out)
}

func next(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}
