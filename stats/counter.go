package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// RpsCounter counts events and their rate since the last Tick.
type RpsCounter struct {
	counter  int64
	lastAdd  int64
	mu       sync.Mutex
	start    time.Time
	lastTick time.Time
	lastRps  float64
	now      func() time.Time
}

func NewRpsCounter() *RpsCounter {
	return &RpsCounter{now: time.Now}
}

func (r *RpsCounter) Add(n int) {
	if n <= 0 {
		return
	}
	atomic.AddInt64(&r.counter, int64(n))
	atomic.AddInt64(&r.lastAdd, int64(n))
	r.mu.Lock()
	if r.start.IsZero() {
		r.start = r.now()
		r.lastTick = r.start
	}
	r.mu.Unlock()
}

func (r *RpsCounter) Value() int64 {
	return atomic.LoadInt64(&r.counter)
}

// Rps returns the average rate since the first Add.
func (r *RpsCounter) Rps() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.start.IsZero() {
		return 0
	}
	d := r.now().Sub(r.start).Seconds()
	if d <= 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&r.counter)) / d
}

// LastRps returns the rate between the last two ticks.
func (r *RpsCounter) LastRps() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRps
}

func (r *RpsCounter) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := atomic.SwapInt64(&r.lastAdd, 0)
	if r.lastTick.IsZero() {
		return
	}
	now := r.now()
	if d := now.Sub(r.lastTick).Seconds(); d > 0 {
		r.lastRps = float64(n) / d
	}
	r.lastTick = now
}
