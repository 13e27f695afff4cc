package testinfra

import (
	"context"
	"sync"
	"time"

	"hotel/internal/domains/reservation/event"
)

// Publisher records events instead of sending them. It is safe to use from the
// goroutines services publish on.
type Publisher struct {
	mu     sync.Mutex
	events []event.Event
	notify chan struct{}
	err    error
}

func NewPublisher() *Publisher {
	return &Publisher{notify: make(chan struct{}, 64)} //nolint:mnd
}

// FailWith makes every later Publish call return err after recording.
func (p *Publisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.err = err
}

func (p *Publisher) Publish(_ context.Context, events ...event.Event) error {
	p.mu.Lock()
	p.events = append(p.events, events...)
	err := p.err
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}

	return err
}

// WaitFor blocks until at least n events were recorded or the timeout passes,
// then returns what was recorded.
func (p *Publisher) WaitFor(n int, timeout time.Duration) []event.Event {
	deadline := time.After(timeout)

	for {
		p.mu.Lock()
		if len(p.events) >= n {
			res := append([]event.Event(nil), p.events...)
			p.mu.Unlock()

			return res
		}
		p.mu.Unlock()

		select {
		case <-p.notify:
		case <-deadline:
			return p.Events()
		}
	}
}

func (p *Publisher) Events() []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]event.Event(nil), p.events...)
}
