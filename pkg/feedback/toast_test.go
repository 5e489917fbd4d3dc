package feedback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeTimer struct {
	fire    func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true

	return true
}

// fakeTimers collects every timer started so tests decide when they fire.
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
	delays []time.Duration
}

func (f *fakeTimers) afterFunc(d time.Duration, fn func()) stopper {
	f.mu.Lock()
	defer f.mu.Unlock()

	timer := &fakeTimer{fire: fn}
	f.timers = append(f.timers, timer)
	f.delays = append(f.delays, d)

	return timer
}

func newTestManager() (*Manager, *fakeTimers) {
	timers := &fakeTimers{}
	m := NewManager(0)
	m.afterFunc = timers.afterFunc

	return m, timers
}

func TestShowExpires(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	m, timers := newTestManager()

	var seen []*Toast
	m.OnChange(func(toast *Toast) { seen = append(seen, toast) })

	m.Show(IconCheck, "Todo completed", nil)

	toast, ok := m.Current()
	assert.True(ok)
	assert.Equal("Todo completed", toast.Message)
	assert.False(toast.CanUndo())
	assert.Equal(DefaultTimeout, timers.delays[0])

	timers.timers[0].fire()

	_, ok = m.Current()
	assert.False(ok)
	assert.Equal(2, len(seen))
	assert.Nil(seen[1])
}

func TestOldTimerKeepsNewerToast(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	m, timers := newTestManager()

	m.Show(IconTrash, "Todo deleted", nil)
	second := m.Show(IconCheck, "Todo completed", nil)

	assert.True(timers.timers[0].stopped)

	// a stopped time.AfterFunc may still run if it already fired
	timers.timers[0].fire()

	toast, ok := m.Current()
	assert.True(ok)
	assert.Equal(second, toast.ID)

	timers.timers[1].fire()

	_, ok = m.Current()
	assert.False(ok)
}

func TestClose(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	m, timers := newTestManager()

	m.Close()
	m.Show(IconInfo, "hello", nil)
	m.Close()

	_, ok := m.Current()
	assert.False(ok)
	assert.True(timers.timers[0].stopped)
}

func TestUndo(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	m, _ := newTestManager()

	calls := 0
	m.Show(IconTrash, "Todo deleted", func(ctx context.Context) error {
		calls++

		return nil
	})

	assert.Nil(m.Undo(context.Background()))
	assert.Nil(m.Undo(context.Background()))
	assert.Equal(1, calls)

	_, ok := m.Current()
	assert.False(ok)
}

func TestUndoFailureStillDismisses(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	m, _ := newTestManager()
	boom := errors.New("boom")

	m.Show(IconTrash, "Todo deleted", func(ctx context.Context) error { return boom })

	assert.ErrorIs(m.Undo(context.Background()), boom)

	_, ok := m.Current()
	assert.False(ok)
}

func TestUndoDoesNotDismissNewerToast(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)
	m, _ := newTestManager()

	m.Show(IconTrash, "Todo deleted", func(ctx context.Context) error {
		m.Show(IconCheck, "Todo completed", nil)

		return nil
	})

	assert.Nil(m.Undo(context.Background()))

	toast, ok := m.Current()
	assert.True(ok)
	assert.Equal("Todo completed", toast.Message)
}

func TestRealTimerExpires(t *testing.T) {
	t.Parallel()

	m := NewManager(10 * time.Millisecond)
	m.Show(IconInfo, "soon gone", nil)

	assert.Eventually(t, func() bool {
		_, ok := m.Current()

		return !ok
	}, time.Second, 5*time.Millisecond)
}
