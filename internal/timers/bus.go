package timers

import "sync"

type EventType string

const (
	EventTimersChanged EventType = "timers_changed"
	EventRestFinished  EventType = "rest_finished"
	EventTimerStopped  EventType = "timer_stopped"
	EventNotification  EventType = "notification"
)

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationFailure NotificationKind = "failure"
	NotificationInfo    NotificationKind = "info"
)

// Notification is a transient, user visible message.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	TimerID string           `json:"timerId,omitempty"`
}

type Event struct {
	Type         EventType     `json:"type"`
	RestTimer    *RestTimer    `json:"restTimer,omitempty"`
	StoppedTimer *ActiveTimer  `json:"stoppedTimer,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// Bus fans events out to every subscriber, synchronously, in no particular order.
type Bus struct {
	mu          sync.RWMutex
	nextID      uint64
	subscribers map[uint64]func(Event)
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[uint64]func(Event)),
	}
}

func (b *Bus) Subscribe(callback func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = callback
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
		})
	}
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	callbacks := make([]func(Event), 0, len(b.subscribers))
	for _, cb := range b.subscribers {
		callbacks = append(callbacks, cb)
	}
	b.mu.RUnlock()

	// called outside the lock, so a callback may (un)subscribe
	for _, cb := range callbacks {
		cb(e)
	}
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
