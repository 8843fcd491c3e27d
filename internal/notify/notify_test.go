package notify_test

import (
	"sync"
	"testing"
	"time"

	"github.com/nikbrunner/quill/internal/notify"
	"go.uber.org/goleak"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/poll"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// manualClock collects scheduled callbacks so tests decide when they fire.
type manualClock struct {
	mu      sync.Mutex
	pending map[int]func()
	delays  []time.Duration
	next    int
}

func newManualClock() *manualClock {
	return &manualClock{pending: make(map[int]func())}
}

func (m *manualClock) schedule(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	m.pending[id] = fn
	m.delays = append(m.delays, d)
	return func() {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
	}
}

func (m *manualClock) fireAll() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.pending))
	for id, fn := range m.pending {
		fns = append(fns, fn)
		delete(m.pending, id)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (m *manualClock) pendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func TestCenter_AddSchedulesDismiss(t *testing.T) {
	clock := newManualClock()
	c := notify.NewCenter(notify.CenterParams{Schedule: clock.schedule})

	id := c.Add("Saved", notify.KindSuccess, 2*time.Second)

	items := c.List()
	assert.Equal(t, len(items), 1)
	assert.Equal(t, items[0].ID, id)
	assert.Equal(t, items[0].Kind, notify.KindSuccess)
	assert.DeepEqual(t, clock.delays, []time.Duration{2 * time.Second})

	clock.fireAll()
	assert.Equal(t, len(c.List()), 0)
}

func TestCenter_ImmediateScheduleDoesNotBlock(t *testing.T) {
	var cancels int
	immediate := func(_ time.Duration, fn func()) func() {
		fn()
		return func() { cancels++ }
	}
	var changes int
	c := notify.NewCenter(notify.CenterParams{
		Schedule: immediate,
		OnChange: func() { changes++ },
	})

	c.Add("Saved", notify.KindSuccess, time.Millisecond)

	assert.Equal(t, len(c.List()), 0)
	assert.Equal(t, cancels, 1)
	assert.Equal(t, changes, 2)
}

func TestCenter_DefaultAndStickyDurations(t *testing.T) {
	clock := newManualClock()
	c := notify.NewCenter(notify.CenterParams{Schedule: clock.schedule})

	c.Add("default", notify.KindInfo, -1)
	c.Add("sticky", notify.KindWarning, 0)

	assert.DeepEqual(t, clock.delays, []time.Duration{notify.DefaultDuration})

	clock.fireAll()
	items := c.List()
	assert.Equal(t, len(items), 1)
	assert.Equal(t, items[0].Message, "sticky")
}

func TestCenter_RemoveEarlyCancelsTimer(t *testing.T) {
	clock := newManualClock()
	c := notify.NewCenter(notify.CenterParams{Schedule: clock.schedule})

	first := c.Add("one", notify.KindInfo, time.Second)
	c.Add("two", notify.KindError, time.Second)

	c.Remove(first)
	assert.Equal(t, clock.pendingCount(), 1)

	items := c.List()
	assert.Equal(t, len(items), 1)
	assert.Equal(t, items[0].Message, "two")

	// Unknown ids are ignored
	c.Remove("nope")
	assert.Equal(t, len(c.List()), 1)
}

func TestCenter_OnChange(t *testing.T) {
	clock := newManualClock()
	calls := 0
	c := notify.NewCenter(notify.CenterParams{
		Schedule: clock.schedule,
		OnChange: func() { calls++ },
	})

	id := c.Add("x", notify.KindInfo, time.Second)
	c.Remove(id)
	c.Remove(id)

	assert.Equal(t, calls, 2)
}

func TestCenter_Clear(t *testing.T) {
	clock := newManualClock()
	c := notify.NewCenter(notify.CenterParams{Schedule: clock.schedule})
	c.Add("a", notify.KindInfo, time.Second)
	c.Add("b", notify.KindInfo, time.Second)

	c.Clear()

	assert.Equal(t, len(c.List()), 0)
	assert.Equal(t, clock.pendingCount(), 0)
}

func TestCenter_RealTimerDismisses(t *testing.T) {
	c := notify.NewCenter(notify.CenterParams{})
	c.Add("soon gone", notify.KindInfo, 10*time.Millisecond)

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if len(c.List()) == 0 {
			return poll.Success()
		}
		return poll.Continue("notification still visible")
	}, poll.WithTimeout(2*time.Second), poll.WithDelay(5*time.Millisecond))
}
