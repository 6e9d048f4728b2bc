package api

import (
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewHTTPError_TruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// "Ж" занимает 2 байта; смещаем на 1 байт, чтобы граница 512 пришлась на середину символа.
	detail := "x" + strings.Repeat("Ж", 400)
	body := []byte(`{"detail":"` + detail + `"}`)

	err := newHTTPError(http.MethodGet, "/products", http.StatusBadRequest, body)
	if !utf8.ValidString(err.Detail) {
		t.Fatalf("detail is not valid UTF-8: %q", err.Detail[len(err.Detail)-4:])
	}
	if len(err.Detail) > maxDetail {
		t.Fatalf("detail too long: %d", len(err.Detail))
	}
	if len(err.Detail) != maxDetail-1 {
		t.Fatalf("want %d bytes, got %d", maxDetail-1, len(err.Detail))
	}
}

func TestNewHTTPError_ShortDetailKept(t *testing.T) {
	t.Parallel()

	err := newHTTPError(http.MethodGet, "/products/9", http.StatusNotFound, []byte(`{"detail":"Товар не найден"}`))
	if err.Detail != "Товар не найден" {
		t.Fatalf("unexpected detail: %q", err.Detail)
	}
}
