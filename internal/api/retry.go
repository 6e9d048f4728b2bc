package api

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/Gunvolt24/partstore/internal/ports"
	"github.com/Gunvolt24/partstore/pkg/metrics"
)

// retryPolicy — повтор GET-запросов после временных ошибок (5xx, 429, сеть)
// с экспоненциальной паузой и equal-jitter. Запись не повторяется никогда.
type retryPolicy struct {
	retries int // дополнительных попыток; 0 — без повторов
	initial time.Duration
	max     time.Duration

	mu         sync.Mutex
	jitterRand *rand.Rand
}

func newRetryPolicy(retries int, initial, maxDelay time.Duration) *retryPolicy {
	if retries < 0 {
		retries = 0
	}
	if initial <= 0 {
		initial = 200 * time.Millisecond
	}
	if maxDelay < initial {
		maxDelay = initial
	}
	return &retryPolicy{
		retries: retries,
		initial: initial,
		max:     maxDelay,
		// jitterRand — чтобы повторы разных клиентов не приходили синхронно.
		jitterRand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// do вызывает fetch, пока он не вернёт успех, невременную ошибку или не кончатся попытки.
func (p *retryPolicy) do(ctx context.Context, log ports.Logger, method, path string, fetch func() ([]byte, error)) ([]byte, error) {
	delay := p.initial
	for attempt := 0; ; attempt++ {
		body, err := fetch()
		if err == nil || attempt >= p.retries || !isTemporary(err) {
			return body, err
		}

		sleep := p.withJitterEqual(delay)
		log.Warnf(ctx, "%s %s failed: %v (retry %d/%d in %s)", method, path, err, attempt+1, p.retries, sleep)
		metrics.APIRetries.WithLabelValues(method).Inc()
		if !sleepWithContext(ctx, sleep) {
			return nil, ctx.Err()
		}
		delay = p.nextBackoff(delay)
	}
}

// nextBackoff — следующая пауза с учётом max.
func (p *retryPolicy) nextBackoff(current time.Duration) time.Duration {
	current *= 2
	if current > p.max {
		return p.max
	}
	return current
}

// withJitterEqual — половина паузы фиксирована, вторая половина случайна.
func (p *retryPolicy) withJitterEqual(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	p.mu.Lock()
	jitter := time.Duration(p.jitterRand.Int63n(int64(d-half) + 1))
	p.mu.Unlock()
	return half + jitter
}

// sleepWithContext ждёт d или отмену контекста.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func isTemporary(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
