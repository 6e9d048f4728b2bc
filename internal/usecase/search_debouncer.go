package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/partstore/internal/domain"
)

// DefaultSearchDebounce — пауза ввода, после которой запускается поиск.
const DefaultSearchDebounce = 300 * time.Millisecond

// SearchResult — результат отложенного поиска.
type SearchResult struct {
	Query    string
	Products []domain.Product
	Err      error
}

// SearchFunc — сам поиск (обычно CatalogService.Search).
type SearchFunc func(ctx context.Context, query string) ([]domain.Product, error)

// SearchDebouncer запускает поиск только после паузы во вводе.
// Побеждает последний запрос: новый Submit отменяет ожидающий таймер и выполняющийся поиск,
// а результат устаревшего запроса не доставляется. deliver вызывается под внутренней
// блокировкой и не должен обращаться к самому дебаунсеру.
type SearchDebouncer struct {
	delay   time.Duration
	search  SearchFunc
	deliver func(SearchResult)

	mu      sync.Mutex
	seq     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	stopped bool
}

func NewSearchDebouncer(delay time.Duration, search SearchFunc, deliver func(SearchResult)) *SearchDebouncer {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	return &SearchDebouncer{delay: delay, search: search, deliver: deliver}
}

// Submit планирует поиск query через delay.
func (d *SearchDebouncer) Submit(ctx context.Context, query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.seq++
	d.resetLocked()

	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() { d.run(ctx, query, seq) })
}

// Stop отменяет ожидающий и выполняющийся поиск; дальнейшие Submit игнорируются.
func (d *SearchDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.resetLocked()
}

func (d *SearchDebouncer) run(ctx context.Context, query string, seq uint64) {
	d.mu.Lock()
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.mu.Unlock()

	products, err := d.search(runCtx, query)
	cancel()

	// Проверка актуальности и доставка под одной блокировкой: Submit между ними
	// дождётся окончания доставки. Поэтому deliver не должен вызывать Submit и Stop.
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || seq != d.seq || d.deliver == nil {
		return
	}
	d.deliver(SearchResult{Query: query, Products: products, Err: err})
}

func (d *SearchDebouncer) resetLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
