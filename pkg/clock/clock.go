// Package clock предоставляет абстракцию текущего времени
// для детерминированного тестирования временной логики.
package clock

import (
	"sync"
	"time"
)

// Clock возвращает текущее время.
type Clock interface {
	Now() time.Time
}

// System использует системное время.
type System struct{}

// NewSystem создает часы на основе системного времени.
func NewSystem() *System {
	return &System{}
}

// Now возвращает текущее системное время в UTC.
func (*System) Now() time.Time {
	return time.Now().UTC()
}

// Fake - управляемые часы для тестов.
type Fake struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFake создает часы, остановленные на указанном времени.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

// Now возвращает установленное время.
func (f *Fake) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Set устанавливает текущее время.
func (f *Fake) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// Advance сдвигает время вперед на указанную продолжительность.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
