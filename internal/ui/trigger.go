package ui

import "sync"

// Trigger mirrors a button that is disabled while its action runs. It does
// not stop a second Run from starting while one is already in flight.
type Trigger struct {
	mu       sync.Mutex
	disabled bool
	onChange func(disabled bool)
}

func NewTrigger(onChange func(disabled bool)) *Trigger {
	return &Trigger{onChange: onChange}
}

func (t *Trigger) Disabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disabled
}

// Run disables the trigger, runs fn, and re-enables it whatever fn does.
func (t *Trigger) Run(fn func()) {
	t.set(true)
	defer t.set(false)
	fn()
}

func (t *Trigger) set(disabled bool) {
	t.mu.Lock()
	t.disabled = disabled
	t.mu.Unlock()
	if t.onChange != nil {
		t.onChange(disabled)
	}
}
