package quota

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process counter. With a zero window it lasts for the
// lifetime of the process; otherwise usage resets at each fixed window
// boundary. Usage is lost on restart: use Redis when that matters.
type Memory struct {
	mu          sync.Mutex
	max         int
	window      time.Duration
	used        int
	windowStart time.Time
	now         func() time.Time
}

// NewMemory creates an in-process counter
func NewMemory(max int, window time.Duration) *Memory {
	m := &Memory{
		max:    max,
		window: window,
		now:    time.Now,
	}
	if window > 0 {
		m.windowStart, _ = windowBounds(m.now(), window)
	}
	return m
}

// Take implements Counter
func (m *Memory) Take(_ context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rollover()
	if m.used >= m.max {
		st := m.snapshot()
		return st, exceeded(st)
	}
	m.used++
	return m.snapshot(), nil
}

// Status implements Counter
func (m *Memory) Status(_ context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rollover()
	return m.snapshot(), nil
}

func (m *Memory) rollover() {
	if m.window <= 0 {
		return
	}
	start, _ := windowBounds(m.now(), m.window)
	if start.After(m.windowStart) {
		m.windowStart = start
		m.used = 0
	}
}

func (m *Memory) snapshot() Status {
	if m.window <= 0 {
		return newStatus(m.used, m.max, nil)
	}
	resets := m.windowStart.Add(m.window)
	return newStatus(m.used, m.max, &resets)
}
