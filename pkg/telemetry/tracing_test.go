package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClampRatio(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-1, 0}, {0, 0}, {0.25, 0.25}, {1, 1}, {3, 1},
	}
	for _, c := range cases {
		if got := clampRatio(c.in); got != c.want {
			t.Fatalf("clampRatio(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestWrapTransport_PassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	client := &http.Client{Transport: WrapTransport(nil)}
	resp, err := client.Get(srv.URL + "/brands")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("want 418, got %d", resp.StatusCode)
	}
}
