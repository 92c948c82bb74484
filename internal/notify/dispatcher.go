package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	dispatchQueueSize = 256
	dispatchTimeout   = 5 * time.Second
)

// Dispatcher decouples notification delivery from request handling. Enqueue
// never blocks the caller: a full queue drops the message with a log line
// rather than stalling a confirmation or fulfillment.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger

	queue chan Message
	wg    sync.WaitGroup

	closeOnce sync.Once
}

func NewDispatcher(notifier Notifier, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan Message, dispatchQueueSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue hands a message to the delivery worker. Best-effort by contract.
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("notification queue full, dropping message",
			"user_id", msg.UserID, "subject", msg.Subject)
	}
}

// Close stops accepting messages and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.queue) })
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		if err := d.notifier.Notify(ctx, msg); err != nil {
			d.logger.Error("notification delivery failed",
				"user_id", msg.UserID, "subject", msg.Subject, "error", err)
		}
		cancel()
	}
}
