// Package events is the in-process push channel between the reconciler and the bot.
package events

// Kind names a domain event.
type Kind string

const (
	KindScheduleDone   Kind = "schedule_done"
	KindProfileChanged Kind = "profile_changed"
	KindLevelUp        Kind = "level_up"
)

// Event carries only ids and small values; consumers read the rest from the store.
type Event struct {
	Kind       Kind
	UserID     uint
	ScheduleID string
	Title      string
	Points     int
	Level      int
}

// Bus is a lightweight pub-sub backed by a buffered channel.
type Bus struct {
	ch chan Event
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan Event, buffer)}
}

// Publish enqueues without blocking and reports whether the event fit in the buffer.
// Polling stays the source of truth, so a dropped event only delays a notification.
func (b *Bus) Publish(evt Event) bool {
	if b == nil {
		return false
	}
	select {
	case b.ch <- evt:
		return true
	default:
		return false
	}
}

// Subscribe returns the receive side. A nil bus yields a closed channel.
func (b *Bus) Subscribe() <-chan Event {
	if b == nil {
		c := make(chan Event)
		close(c)
		return c
	}
	return b.ch
}
