package eventbus

import (
	"context"
	"sync"

	"contacts-api/internal/shared/logger"
)

// DefaultQueueSize bounds the number of events waiting for the dispatcher worker
const DefaultQueueSize = 256

// Publisher hands events off without waiting for handlers to run
type Publisher interface {
	Enqueue(ctx context.Context, event Event)
}

type queuedEvent struct {
	ctx   context.Context
	event Event
}

// Dispatcher publishes queued events on a bus from a single worker, so handlers
// observe events in the order they were enqueued.
type Dispatcher struct {
	bus    EventBusInterface
	queue  chan queuedEvent
	done   chan struct{}
	logger logger.Logger

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the worker. Call Close to drain the queue and stop it.
func NewDispatcher(bus EventBusInterface, size int, log logger.Logger) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if log == nil {
		log = logger.NewNop()
	}
	d := &Dispatcher{
		bus:    bus,
		queue:  make(chan queuedEvent, size),
		done:   make(chan struct{}),
		logger: log.WithComponent("event-dispatcher"),
	}
	go d.run()
	return d
}

// Enqueue detaches ctx from its cancellation and queues the event. It blocks while
// the queue is full and drops the event if ctx ends first or the dispatcher is closed.
func (d *Dispatcher) Enqueue(ctx context.Context, event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warnf("Dropping event %s: dispatcher closed", event.Type())
		return
	}

	item := queuedEvent{ctx: context.WithoutCancel(ctx), event: event}
	select {
	case d.queue <- item:
		return
	default:
	}

	select {
	case d.queue <- item:
	case <-ctx.Done():
		d.logger.WithContext(ctx).Warnf("Dropping event %s: %v", event.Type(), ctx.Err())
	}
}

// Close stops accepting events and waits until every queued event is published
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for item := range d.queue {
		if err := d.bus.Publish(item.ctx, item.event); err != nil {
			d.logger.WithContext(item.ctx).Errorf("Failed to publish event %s: %v", item.event.Type(), err)
		}
	}
}
