// Package clock содержит реализации ports.Clock: системные часы и ручные для тестов.
package clock

import (
	"sync"
	"time"

	"github.com/Gunvolt24/partstore/internal/ports"
)

var (
	_ ports.Clock = System{}
	_ ports.Clock = (*Manual)(nil)
)

// System — настенные часы.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Manual — часы, которые двигаются только через Advance/Set.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance сдвигает время вперёд на d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}
