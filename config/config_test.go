package config_test

import (
	"testing"
	"time"

	cfg "github.com/Gunvolt24/partstore/config"
)

// TestLoadWithPrefix_Defaults — проверка наличия значений по умолчанию.
func TestLoadWithPrefix_Defaults(t *testing.T) {
	t.Parallel()

	c, err := cfg.LoadWithPrefix("STOREFRONT_TEST_DEFAULTS")
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	// API
	if c.API.BaseURL != "http://127.0.0.1:8000/api" {
		t.Fatalf("API.BaseURL: want http://127.0.0.1:8000/api, got %q", c.API.BaseURL)
	}
	if c.API.Timeout != 10*time.Second || c.API.AdminToken != "" {
		t.Fatalf("API defaults wrong: %+v", c.API)
	}
	if c.API.Retries != 2 || c.API.RetryInitial != 200*time.Millisecond || c.API.RetryMax != 2*time.Second {
		t.Fatalf("API retry defaults wrong: %+v", c.API)
	}

	// Cache
	if c.Cache.Capacity != 100 || c.Cache.TTL != 5*time.Minute {
		t.Fatalf("Cache defaults wrong: %+v", c.Cache)
	}
	if c.Cache.SearchTTL != time.Minute || c.Cache.JanitorInterval != time.Minute {
		t.Fatalf("Cache search/janitor defaults wrong: %+v", c.Cache)
	}

	// Search
	if c.Search.Debounce != 300*time.Millisecond || c.Search.MinQueryLen != 2 {
		t.Fatalf("Search defaults wrong: %+v", c.Search)
	}

	// Metrics
	if !c.Metrics.Enabled || c.Metrics.Addr != ":2112" || c.Metrics.ShutdownTimeout != 5*time.Second {
		t.Fatalf("Metrics defaults wrong: %+v", c.Metrics)
	}

	// Tracing
	if c.Tracing.Enabled {
		t.Fatalf("Tracing.Enabled: want false, got true")
	}
	if c.Tracing.ServiceName != "partstore" || c.Tracing.Endpoint != "localhost:4318" || c.Tracing.SampleRatio != 1 {
		t.Fatalf("Tracing defaults wrong: %+v", c.Tracing)
	}

	// Logger
	if c.Logger.IsProd {
		t.Fatalf("Logger.IsProd: want false, got true")
	}
}

// Меняем окружение.
func TestLoadWithPrefix_Overrides(t *testing.T) {
	const p = "STOREFRONT_TEST_OVR"

	// API
	t.Setenv(p+"_API_BASE_URL", "https://shop.example.com/api")
	t.Setenv(p+"_API_TIMEOUT", "2500ms")
	t.Setenv(p+"_API_ADMIN_TOKEN", "tok")
	t.Setenv(p+"_API_RETRIES", "0")

	// Cache
	t.Setenv(p+"_CACHE_CAPACITY", "777")
	t.Setenv(p+"_CACHE_TTL", "30m")
	t.Setenv(p+"_CACHE_SEARCH_TTL", "15s")
	t.Setenv(p+"_CACHE_JANITOR_INTERVAL", "0s")

	// Search
	t.Setenv(p+"_SEARCH_DEBOUNCE", "150ms")
	t.Setenv(p+"_SEARCH_MIN_QUERY_LEN", "3")

	// Metrics
	t.Setenv(p+"_METRICS_ENABLED", "false")
	t.Setenv(p+"_METRICS_ADDR", ":9998")

	// Tracing
	t.Setenv(p+"_TRACING_OTEL_ENABLED", "true")
	t.Setenv(p+"_TRACING_OTEL_SERVICE_NAME", "svc")
	t.Setenv(p+"_TRACING_OTEL_ENDPOINT", "collector:4318")
	t.Setenv(p+"_TRACING_OTEL_SAMPLE_RATIO", "0.25")

	// Logger
	t.Setenv(p+"_LOGGER_IS_PROD", "true")

	c, err := cfg.LoadWithPrefix(p)
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	// Проверки
	if c.API.BaseURL != "https://shop.example.com/api" || c.API.Timeout != 2500*time.Millisecond || c.API.AdminToken != "tok" || c.API.Retries != 0 {
		t.Fatalf("API overrides wrong: %+v", c.API)
	}
	if c.Cache.Capacity != 777 || c.Cache.TTL != 30*time.Minute ||
		c.Cache.SearchTTL != 15*time.Second || c.Cache.JanitorInterval != 0 {
		t.Fatalf("Cache overrides wrong: %+v", c.Cache)
	}
	if c.Search.Debounce != 150*time.Millisecond || c.Search.MinQueryLen != 3 {
		t.Fatalf("Search overrides wrong: %+v", c.Search)
	}
	if c.Metrics.Enabled || c.Metrics.Addr != ":9998" {
		t.Fatalf("Metrics overrides wrong: %+v", c.Metrics)
	}
	if !c.Tracing.Enabled || c.Tracing.ServiceName != "svc" || c.Tracing.Endpoint != "collector:4318" || c.Tracing.SampleRatio != 0.25 {
		t.Fatalf("Tracing overrides wrong: %+v", c.Tracing)
	}
	if !c.Logger.IsProd {
		t.Fatalf("Logger.IsProd override wrong: %+v", c.Logger)
	}
}

// Тоже меняем окружение — но с невалидным значением.
func TestLoadWithPrefix_InvalidValue_ReturnsError(t *testing.T) {
	const p = "STOREFRONT_TEST_BAD"
	t.Setenv(p+"_CACHE_TTL", "not-a-duration")

	if _, err := cfg.LoadWithPrefix(p); err == nil {
		t.Fatalf("expected error for invalid duration, got nil")
	}
}
