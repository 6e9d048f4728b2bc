package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Gunvolt24/partstore/internal/ports"
	"github.com/Gunvolt24/partstore/pkg/metrics"
)

// LoggingTransport логирует исходящие запросы к бэкенду и считает метрики.
type LoggingTransport struct {
	Next http.RoundTripper
	Log  ports.Logger
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := next(t.Next).RoundTrip(req)
	duration := time.Since(start)

	metrics.APIRequestDuration.WithLabelValues(req.Method).Observe(duration.Seconds())

	if err != nil {
		metrics.APIRequests.WithLabelValues(req.Method, "error").Inc()
		if t.Log != nil {
			t.Log.Warnf(req.Context(), "request method=%s path=%s failed duration=%s err=%v",
				req.Method, req.URL.Path, duration, err)
		}
		return nil, err
	}

	metrics.APIRequests.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()
	if t.Log != nil {
		t.Log.Infof(req.Context(), "request method=%s path=%s status=%d duration=%s",
			req.Method, req.URL.Path, resp.StatusCode, duration)
	}
	return resp, nil
}

// Chain собирает транспорт: request id -> логирование -> base.
func Chain(base http.RoundTripper, log ports.Logger) http.RoundTripper {
	return &RequestIDTransport{Next: &LoggingTransport{Next: base, Log: log}}
}
