package notify

import (
	"sync"
)

// Kind classifies an event the way the UI distinguishes toasts from the
// upload progress bar.
type Kind string

const (
	KindSuccess  Kind = "success"
	KindError    Kind = "error"
	KindInfo     Kind = "info"
	KindProgress Kind = "progress"
)

// Event is a single user-facing notification.
type Event struct {
	Kind    Kind
	Message string
	Percent int // meaningful for KindProgress only
}

// Notifier is the side-effect sink components report through. Failures are
// converted to events here and never propagate further.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
	Progress(pct int)
}

// Hub is an in-memory pub/sub hub for notification events. Components
// publish; frontends (the CLI) subscribe and render.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func New() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a listener. Returns a receive-only channel and an
// unsubscribe function.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	unsub := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		// drain so a blocked publisher select can never leak
		for {
			select {
			case <-ch:
			default:
				return
			}
		}
	}

	return ch, unsub
}

// Publish sends an event to all subscribers.
// Non-blocking: slow subscribers are skipped.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	channels := make([]chan Event, 0, len(h.subs))
	for ch := range h.subs {
		channels = append(channels, ch)
	}
	h.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) Success(msg string) { h.Publish(Event{Kind: KindSuccess, Message: msg}) }
func (h *Hub) Error(msg string)   { h.Publish(Event{Kind: KindError, Message: msg}) }
func (h *Hub) Info(msg string)    { h.Publish(Event{Kind: KindInfo, Message: msg}) }
func (h *Hub) Progress(pct int)   { h.Publish(Event{Kind: KindProgress, Percent: pct}) }
