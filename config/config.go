package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultPrefix — префикс переменных окружения (STOREFRONT_API_BASE_URL и т.д.).
const DefaultPrefix = "STOREFRONT"

// API — REST-бэкенд витрины.
type API struct {
	BaseURL    string        `default:"http://127.0.0.1:8000/api" envconfig:"BASE_URL"`
	Timeout    time.Duration `default:"10s"                       envconfig:"TIMEOUT"`
	AdminToken string        `envconfig:"ADMIN_TOKEN"`

	// Повтор GET-запросов после 5xx/429/сетевых ошибок.
	Retries      int           `default:"2"     envconfig:"RETRIES"`
	RetryInitial time.Duration `default:"200ms" envconfig:"RETRY_INITIAL"`
	RetryMax     time.Duration `default:"2s"    envconfig:"RETRY_MAX"`
}

// Cache — кэш ответов бэкенда.
type Cache struct {
	Capacity        int           `default:"100" envconfig:"CAPACITY"`
	TTL             time.Duration `default:"5m"  envconfig:"TTL"`
	SearchTTL       time.Duration `default:"1m"  envconfig:"SEARCH_TTL"`
	JanitorInterval time.Duration `default:"1m"  envconfig:"JANITOR_INTERVAL"` // 0 — без фоновой очистки
}

type Search struct {
	Debounce    time.Duration `default:"300ms" envconfig:"DEBOUNCE"`
	MinQueryLen int           `default:"2"     envconfig:"MIN_QUERY_LEN"`
}

// Metrics — служебный HTTP-сервер (/ping, /metrics).
type Metrics struct {
	Enabled         bool          `default:"true"  envconfig:"ENABLED"`
	Addr            string        `default:":2112" envconfig:"ADDR"`
	ShutdownTimeout time.Duration `default:"5s"    envconfig:"SHUTDOWN_TIMEOUT"`
}

type Tracing struct {
	Enabled     bool    `default:"false"          envconfig:"OTEL_ENABLED"`
	ServiceName string  `default:"partstore"      envconfig:"OTEL_SERVICE_NAME"`
	Endpoint    string  `default:"localhost:4318" envconfig:"OTEL_ENDPOINT"`
	SampleRatio float64 `default:"1"              envconfig:"OTEL_SAMPLE_RATIO"`
}

type Logger struct {
	IsProd bool `default:"false" envconfig:"IS_PROD"`
}

type Config struct {
	API     API
	Cache   Cache
	Search  Search
	Metrics Metrics
	Tracing Tracing
	Logger  Logger
}

func Load() (Config, error) {
	return LoadWithPrefix(DefaultPrefix)
}

// LoadWithPrefix — чтение конфигурации из окружения с заданным префиксом.
func LoadWithPrefix(prefix string) (Config, error) {
	var c Config

	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, err
	}

	return c, nil
}
