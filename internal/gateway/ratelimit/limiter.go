// Package ratelimit реализует ограничение частоты запросов на границе
// системы: фиксированное окно в одну минуту на клиентский адрес.
package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"campusauth/pkg/clock"
)

// DefaultRequestsPerMinute - потолок запросов с одного адреса в минуту.
const DefaultRequestsPerMinute = 100

// Limiter считает запросы в фиксированных минутных окнах. Ключ счетчика -
// пара адрес:окно, поэтому счетчик обнуляется на границе каждой минуты.
type Limiter struct {
	limit int
	clock clock.Clock

	counters sync.Map // string -> *atomic.Int64

	cleanupMu  sync.Mutex
	lastSweep  int64
	sweepEvery int64
}

// New создает ограничитель с указанным потолком запросов в минуту.
func New(limit int, clk clock.Clock) *Limiter {
	if limit <= 0 {
		limit = DefaultRequestsPerMinute
	}
	return &Limiter{
		limit:      limit,
		clock:      clk,
		sweepEvery: 2,
	}
}

// windowKey строит ключ счетчика для адреса в текущем минутном окне.
func windowKey(clientIP string, window int64) string {
	return fmt.Sprintf("%s:%d", clientIP, window)
}

// Allow регистрирует запрос с адреса и сообщает, укладывается ли он
// в лимит текущего окна.
func (l *Limiter) Allow(clientIP string) bool {
	window := l.clock.Now().Unix() / 60

	counter := l.counter(windowKey(clientIP, window))
	count := counter.Add(1)

	l.sweep(window)

	return count <= int64(l.limit)
}

// Remaining возвращает остаток лимита для адреса в текущем окне.
func (l *Limiter) Remaining(clientIP string) int {
	window := l.clock.Now().Unix() / 60

	value, ok := l.counters.Load(windowKey(clientIP, window))
	if !ok {
		return l.limit
	}

	used := value.(*atomic.Int64).Load()
	remaining := int64(l.limit) - used
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// Limit возвращает настроенный потолок запросов в минуту.
func (l *Limiter) Limit() int {
	return l.limit
}

func (l *Limiter) counter(key string) *atomic.Int64 {
	if value, ok := l.counters.Load(key); ok {
		return value.(*atomic.Int64)
	}

	value, _ := l.counters.LoadOrStore(key, &atomic.Int64{})
	return value.(*atomic.Int64)
}

// sweep удаляет счетчики устаревших окон, чтобы карта не росла бесконечно.
func (l *Limiter) sweep(window int64) {
	l.cleanupMu.Lock()
	if window-l.lastSweep < l.sweepEvery {
		l.cleanupMu.Unlock()
		return
	}
	l.lastSweep = window
	l.cleanupMu.Unlock()

	l.counters.Range(func(key, _ any) bool {
		k := key.(string)
		idx := strings.LastIndexByte(k, ':')
		if idx < 0 {
			l.counters.Delete(key)
			return true
		}
		keyWindow, err := strconv.ParseInt(k[idx+1:], 10, 64)
		if err != nil || keyWindow < window {
			l.counters.Delete(key)
		}
		return true
	})
}

// RetryAfter возвращает время до начала следующего окна.
func (l *Limiter) RetryAfter() time.Duration {
	now := l.clock.Now()
	next := now.Truncate(time.Minute).Add(time.Minute)
	return next.Sub(now)
}
