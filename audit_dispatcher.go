package hubauth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// auditDispatcher decouples the hot send/refresh paths from the configured
// [AuditSink]: events are buffered on a channel and delivered by a single
// background goroutine, so a slow sink can never stall a request or a
// refresh cycle.
type auditDispatcher struct {
	sink       AuditSink
	dropIfFull bool

	events   chan AuditEvent
	stop     chan struct{}
	drained  sync.WaitGroup
	overflow atomic.Uint64
	stopping atomic.Bool
	stopOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		// A nil dispatcher is valid; every method no-ops on it.
		return nil
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		events:     make(chan AuditEvent, buffer),
		stop:       make(chan struct{}),
	}

	d.drained.Add(1)
	go d.deliver()

	return d
}

func (d *auditDispatcher) deliver() {
	defer d.drained.Done()

	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.stop:
			d.flushPending()
			return
		}
	}
}

// flushPending empties whatever is already buffered at shutdown. Events
// arriving after stop may or may not be delivered; Emit stops accepting
// once stopping is set, so the window is a single in-flight send.
func (d *auditDispatcher) flushPending() {
	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit queues one event for delivery. With DropIfFull the call never blocks
// and a full buffer increments the overflow counter instead; otherwise the
// call blocks until there is room, the caller's ctx ends, or the dispatcher
// shuts down.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.stopping.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if d.dropIfFull {
		select {
		case d.events <- event:
		case <-d.stop:
		default:
			d.overflow.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Close stops intake, drains buffered events through the sink, and waits
// for the delivery goroutine to exit. Safe to call more than once.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.stopping.Store(true)
		close(d.stop)
		d.drained.Wait()
	})
}

// Dropped reports how many events were discarded because the buffer was
// full while DropIfFull was set.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.overflow.Load()
}
