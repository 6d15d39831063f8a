package core

import (
	"context"
	"log"
	"sync"
	"time"
)

// Dispatcher runs queued side work (notification emails, vendor invoice
// chains) off the request path. The contract is fire-and-forget: the
// triggering business mutation has already committed, so task failures are
// logged, never propagated.
type Dispatcher struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{timeout: timeout}
}

// Submit schedules task on its own goroutine with a fresh context, detached
// from the caller's request lifetime.
func (d *Dispatcher) Submit(name string, task func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := task(ctx); err != nil {
			log.Printf("task %s: %v", name, err)
		}
	}()
}

// Wait blocks until all submitted tasks finish. Used on shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
