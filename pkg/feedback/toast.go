// Package feedback shows one short-lived notification at a time, optionally with an undo.
package feedback

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout is how long a toast stays up when nobody closes it.
const DefaultTimeout = 3 * time.Second

// Icon names the glyph shown next to the message.
type Icon string

const (
	IconCheck Icon = "check"
	IconTrash Icon = "trash-can-outline"
	IconInfo  Icon = "information-outline"
	IconError Icon = "alert-outline"
)

// Toast is the notification currently shown.
type Toast struct {
	ID      uint64
	Icon    Icon
	Message string
	// Undo reverts the action the toast reports on. Nil when there is nothing to undo.
	Undo func(ctx context.Context) error
}

// CanUndo reports whether the toast offers an undo.
func (t Toast) CanUndo() bool {
	return t.Undo != nil
}

type stopper interface {
	Stop() bool
}

// Manager holds the single active toast.
type Manager struct {
	mu        sync.Mutex
	current   *Toast
	lastID    uint64
	timer     stopper
	timeout   time.Duration
	afterFunc func(d time.Duration, f func()) stopper
	listeners []func(*Toast)
}

// NewManager creates a Manager whose toasts expire after timeout, or DefaultTimeout if zero.
func NewManager(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Manager{
		timeout: timeout,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// OnChange registers fn to be called with the new toast, or nil once it is gone.
func (m *Manager) OnChange(fn func(*Toast)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, fn)
}

// Show replaces the current toast and returns the id of the new one.
func (m *Manager) Show(icon Icon, message string, undo func(ctx context.Context) error) uint64 {
	m.mu.Lock()

	if m.timer != nil {
		m.timer.Stop()
	}

	m.lastID++
	id := m.lastID
	m.current = &Toast{ID: id, Icon: icon, Message: message, Undo: undo}
	m.timer = m.afterFunc(m.timeout, func() { m.dismiss(id) })
	toast := *m.current

	m.mu.Unlock()

	m.notify(&toast)

	return id
}

// Current returns a copy of the toast shown, if any.
func (m *Manager) Current() (Toast, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Toast{}, false
	}

	return *m.current, true
}

// Close dismisses the current toast.
func (m *Manager) Close() {
	m.mu.Lock()

	if m.current == nil {
		m.mu.Unlock()

		return
	}

	id := m.current.ID
	m.mu.Unlock()

	m.dismiss(id)
}

// Undo runs the undo of the current toast and dismisses it. The undo runs at most once.
func (m *Manager) Undo(ctx context.Context) error {
	m.mu.Lock()

	if m.current == nil || m.current.Undo == nil {
		m.mu.Unlock()

		return nil
	}

	id := m.current.ID
	undo := m.current.Undo
	m.current.Undo = nil

	m.mu.Unlock()

	err := undo(ctx)

	m.dismiss(id)

	return err
}

// dismiss hides the toast with the given id. A toast that was already replaced stays.
func (m *Manager) dismiss(id uint64) {
	m.mu.Lock()

	if m.current == nil || m.current.ID != id {
		m.mu.Unlock()

		return
	}

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	m.current = nil

	m.mu.Unlock()

	m.notify(nil)
}

func (m *Manager) notify(toast *Toast) {
	m.mu.Lock()
	listeners := m.listeners
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(toast)
	}
}
