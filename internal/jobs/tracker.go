// Package jobs runs uploaded link batches and tracks their progress for the
// status endpoint.
package jobs

import (
	"fmt"
	"sync"
	"time"

	"eiractl/internal/models"
)

// DefaultMaxLogs is how many recent log lines a tracker keeps.
const DefaultMaxLogs = 200

type Tracker struct {
	mu      sync.Mutex
	total   int
	current int
	logs    []string
	maxLogs int
	now     func() time.Time
}

func NewTracker(maxLogs int) *Tracker {
	if maxLogs <= 0 {
		maxLogs = DefaultMaxLogs
	}
	return &Tracker{
		logs:    []string{},
		maxLogs: maxLogs,
		now:     time.Now,
	}
}

// Begin registers n more items. When the previous work has finished the
// counters and logs start over; otherwise n is added to the running total.
func (t *Tracker) Begin(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current >= t.total {
		t.total = 0
		t.current = 0
		t.logs = []string{}
	}
	t.total += n
}

// Advance marks one item done.
func (t *Tracker) Advance() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current < t.total {
		t.current++
	}
}

func (t *Tracker) Logf(format string, args ...any) {
	line := fmt.Sprintf("[%s] %s", t.now().Format("15:04:05"), fmt.Sprintf(format, args...))

	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs = append(t.logs, line)
	if over := len(t.logs) - t.maxLogs; over > 0 {
		t.logs = append([]string(nil), t.logs[over:]...)
	}
}

// Snapshot returns a copy safe to encode while work continues.
func (t *Tracker) Snapshot() models.StatusSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.StatusSnapshot{
		Total:   t.total,
		Current: t.current,
		Logs:    append([]string{}, t.logs...),
	}
}
