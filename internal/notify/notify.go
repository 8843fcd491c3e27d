// Package notify keeps short-lived user notifications that dismiss
// themselves after a delay.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification for display.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// DefaultDuration is used when Add is given a negative duration.
const DefaultDuration = 3 * time.Second

// Notification is a single message shown to the user.
type Notification struct {
	ID       string
	Message  string
	Kind     Kind
	Duration time.Duration // 0 = stays until removed
}

// ScheduleFunc runs fn once after d. The returned function cancels it.
type ScheduleFunc func(d time.Duration, fn func()) (cancel func())

// AfterFunc schedules with time.AfterFunc.
func AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Center holds the visible notifications. Dismiss timers fire on their own
// goroutines, so all access is guarded.
type Center struct {
	mu       sync.Mutex
	items    []Notification
	cancels  map[string]func()
	schedule ScheduleFunc
	onChange func()
}

// CenterParams holds parameters for creating a new Center.
type CenterParams struct {
	Schedule ScheduleFunc // optional, uses AfterFunc if nil
	OnChange func()       // optional, called after every add or removal
}

// NewCenter creates an empty Center.
func NewCenter(params CenterParams) *Center {
	schedule := params.Schedule
	if schedule == nil {
		schedule = AfterFunc
	}
	return &Center{
		cancels:  make(map[string]func()),
		schedule: schedule,
		onChange: params.OnChange,
	}
}

// Add shows a message. A positive duration schedules its removal; zero
// keeps it until Remove; a negative one uses DefaultDuration.
func (c *Center) Add(message string, kind Kind, d time.Duration) string {
	if d < 0 {
		d = DefaultDuration
	}
	n := Notification{
		ID:       uuid.New().String(),
		Message:  message,
		Kind:     kind,
		Duration: d,
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()

	if d > 0 {
		id := n.ID
		cancel := c.schedule(d, func() { c.Remove(id) })

		c.mu.Lock()
		if c.indexOf(id) == -1 {
			// dismissed before the timer was registered
			c.mu.Unlock()
			cancel()
		} else {
			c.cancels[id] = cancel
			c.mu.Unlock()
		}
	}

	c.changed()
	return n.ID
}

// indexOf returns the position of id in items, or -1. c.mu must be held.
func (c *Center) indexOf(id string) int {
	for i, n := range c.items {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// Remove dismisses a notification early. Unknown ids are ignored.
func (c *Center) Remove(id string) {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx == -1 {
		c.mu.Unlock()
		return
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	if cancel, ok := c.cancels[id]; ok {
		cancel()
		delete(c.cancels, id)
	}
	c.mu.Unlock()

	c.changed()
}

// List returns the visible notifications, oldest first.
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Clear removes everything and stops pending timers.
func (c *Center) Clear() {
	c.mu.Lock()
	for _, cancel := range c.cancels {
		cancel()
	}
	c.items = nil
	c.cancels = make(map[string]func())
	c.mu.Unlock()

	c.changed()
}

func (c *Center) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
