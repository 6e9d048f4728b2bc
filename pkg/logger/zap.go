package logger

import (
	"context"

	"github.com/Gunvolt24/partstore/internal/ports"
	"github.com/Gunvolt24/partstore/pkg/ctxmeta"
	"go.uber.org/zap"
)

var _ ports.Logger = (*ZapLogger)(nil)

type ZapLogger struct {
	base   *zap.Logger
	sugar  *zap.SugaredLogger
	isProd bool
}

func NewZapLogger(isProd bool) (*ZapLogger, func() error, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if isProd {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, nil, err
	}

	loggerWrap := FromZap(logger)
	loggerWrap.isProd = isProd

	cleanup := func() error { return loggerWrap.base.Sync() }
	return loggerWrap, cleanup, nil
}

// FromZap оборачивает готовый *zap.Logger (например, из zaptest/observer).
func FromZap(l *zap.Logger) *ZapLogger {
	return &ZapLogger{base: l, sugar: l.Sugar()}
}

// Метаданные из контекста (request_id, session_id, trace_id) уходят отдельными полями.
func (z *ZapLogger) Infof(ctx context.Context, format string, args ...any) {
	z.with(ctx).Infof(format, args...)
}
func (z *ZapLogger) Warnf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Warnf(format, args...)
}
func (z *ZapLogger) Errorf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Errorf(format, args...)
}

func (z *ZapLogger) Base() *zap.Logger           { return z.base }
func (z *ZapLogger) Sugared() *zap.SugaredLogger { return z.sugar }

func (z *ZapLogger) with(ctx context.Context) *zap.SugaredLogger {
	if fields := ctxmeta.Fields(ctx); len(fields) > 0 {
		return z.sugar.With(fields...)
	}
	return z.sugar
}
