package handleguard

import "sync"

// EventType identifies a guard lifecycle event.
type EventType uint8

const (
	EventInstalled EventType = iota
	EventReleased
	EventCollected
)

func (t EventType) String() string {
	switch t {
	case EventInstalled:
		return "installed"
	case EventReleased:
		return "released"
	case EventCollected:
		return "collected"
	default:
		return "unknown"
	}
}

// Event represents a guard lifecycle event.
type Event struct {
	Family string
	Handle Handle
	Type   EventType
}

// Observer receives notifications about guard lifecycle events.
// Collected events arrive on the runtime cleanup goroutine, so observers
// must not block.
type Observer interface {
	OnGuardEvent(Event)
}

var (
	observers []Observer
	obsMu     sync.RWMutex
)

// Subscribe adds a process-wide observer for guard events.
func Subscribe(o Observer) {
	obsMu.Lock()
	defer obsMu.Unlock()
	observers = append(observers, o)
}

// Unsubscribe removes an observer added with Subscribe.
func Unsubscribe(o Observer) {
	obsMu.Lock()
	defer obsMu.Unlock()
	for i, obs := range observers {
		if obs == o {
			observers = append(observers[:i:i], observers[i+1:]...)
			return
		}
	}
}

// notify calls observers outside the lock so they may Subscribe or
// Unsubscribe from OnGuardEvent.
func notify(e Event) {
	obsMu.RLock()
	snapshot := observers
	obsMu.RUnlock()

	for _, o := range snapshot {
		o.OnGuardEvent(e)
	}
}
