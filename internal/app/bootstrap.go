package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Gunvolt24/partstore/config"
	"github.com/Gunvolt24/partstore/internal/api"
	cachemem "github.com/Gunvolt24/partstore/internal/cache/memory"
	"github.com/Gunvolt24/partstore/internal/cart"
	"github.com/Gunvolt24/partstore/internal/ports"
	rest "github.com/Gunvolt24/partstore/internal/transport/http"
	"github.com/Gunvolt24/partstore/internal/usecase"
	"github.com/Gunvolt24/partstore/pkg/httpx"
	"github.com/Gunvolt24/partstore/pkg/logger"
	"github.com/Gunvolt24/partstore/pkg/metrics"
	"github.com/Gunvolt24/partstore/pkg/telemetry"
	"github.com/Gunvolt24/partstore/pkg/validate"
	"github.com/gin-gonic/gin"
)

// Purger — кэш, который умеет удалять истёкшие записи заранее.
type Purger interface {
	PurgeExpired() int
}

// App — собранное приложение: интерактивная сессия, служебный HTTP-сервер, очистка кэша.
type App struct {
	Logger     ports.Logger  // логгер
	Session    *Session      // интерактивная сессия
	HTTPServer *http.Server  // служебный сервер (/ping, /metrics); nil — выключен
	Cache      Purger        // кэш ответов для фоновой очистки
	Janitor    time.Duration // период фоновой очистки кэша; 0 — выключена

	gracefulTimeout time.Duration // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — режим gin по режиму логгера.
func applyGinMode(isProd bool) string {
	if isProd {
		return gin.ReleaseMode
	}
	return gin.DebugMode
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	app, shutdownTrace, err := build(ctx, cfg, logg, nil)
	if err != nil {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if cerr := cleanupLogger(); cerr != nil && !isSyncOnTerminal(cerr) {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}
	return app, cleanup, nil
}

// build — сборка без создания логгера; base — транспорт до обёрток (nil — http.DefaultTransport).
func build(ctx context.Context, cfg *config.Config, logg ports.Logger, base http.RoundTripper) (*App, func(context.Context) error, error) {
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return nil, nil, errors.New("api base url is empty")
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// HTTP-клиент к бэкенду: спаны -> request id -> логирование/метрики -> сеть.
	httpClient := &http.Client{
		Timeout:   cfg.API.Timeout,
		Transport: telemetry.WrapTransport(httpx.Chain(base, logg)),
	}

	responseCache := cachemem.NewTTLCache[[]byte](cfg.Cache.Capacity)
	client := api.NewClient(api.Config{
		BaseURL:   cfg.API.BaseURL,
		TTL:       cfg.Cache.TTL,
		SearchTTL: cfg.Cache.SearchTTL,
		Token:     cfg.API.AdminToken,

		Retries:      cfg.API.Retries,
		RetryInitial: cfg.API.RetryInitial,
		RetryMax:     cfg.API.RetryMax,
	}, httpClient, responseCache, logg)

	// Сборка зависимостей доменного слоя.
	store := cart.NewStore()
	catalog := usecase.NewCatalogService(client, logg, cfg.Search.MinQueryLen)
	checkout := usecase.NewCheckoutService(client, validate.NewOrderValidator(), logg)
	admin := usecase.NewAdminService(client, logg)
	session := NewSession(catalog, checkout, admin, store, logg, cfg.Search.Debounce)

	app := &App{
		Logger:          logg,
		Session:         session,
		Cache:           responseCache,
		Janitor:         cfg.Cache.JanitorInterval,
		gracefulTimeout: cfg.Metrics.ShutdownTimeout,
	}

	// Служебный сервер.
	if cfg.Metrics.Enabled {
		handler := rest.NewHandler(responseCache, client, store, logg)
		app.HTTPServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           rest.NewRouter(handler, applyGinMode(cfg.Logger.IsProd)),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	logg.Infof(ctx, "storefront client ready api=%s cache_capacity=%d ttl=%s",
		cfg.API.BaseURL, cfg.Cache.Capacity, cfg.Cache.TTL)
	return app, shutdownTrace, nil
}

// Run — запускает служебный сервер и очистку кэша, обслуживает сессию на in/out;
// ждёт завершения сессии, отмены контекста или ошибки сервера и всё останавливает.
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	sessionDone := make(chan error, 1)

	// Запуск HTTP-сервера.
	if a.HTTPServer != nil {
		go func() {
			a.Logger.Infof(ctx, "ops http server starting (addr=%s)", a.HTTPServer.Addr)
			if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	// Фоновая очистка истёкших ответов.
	if a.Cache != nil && a.Janitor > 0 {
		go a.runJanitor(ctx)
	}

	go func() {
		sessionDone <- a.Session.Serve(ctx, in, out)
	}()

	// Ожидание завершения сессии, сигнала остановки или фоновой ошибки.
	var runErr error
	select {
	case err := <-sessionDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
		}
		a.Logger.Infof(ctx, "session finished")
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		a.Logger.Warnf(ctx, "ops server error: %v", err)
		runErr = err
	}
	cancel()

	a.shutdownHTTP(ctx)
	a.Logger.Infof(ctx, "storefront stopped")
	return runErr
}

func (a *App) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(a.Janitor)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.Cache.PurgeExpired(); n > 0 {
				a.Logger.Infof(ctx, "cache janitor removed %d expired entries", n)
			}
		}
	}
}

func (a *App) shutdownHTTP(ctx context.Context) {
	if a.HTTPServer == nil {
		return
	}
	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}
}

// isSyncOnTerminal — zap.Sync на stdout/stderr терминала возвращает EINVAL/ENOTTY, это не ошибка.
func isSyncOnTerminal(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}
