// Package dispatch runs fire-and-forget tasks on detached goroutines.
//
// Slip notifications and report sends must never block or fail the HTTP
// response that triggered them: a task's error is logged and counted,
// never retried and never returned to the caller. Completion is still
// observable through an optional results channel, which tests attach and
// production wiring leaves unset.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	applog "betpoisson/internal/log"
	"betpoisson/internal/metrics"
)

// Result reports the outcome of one dispatched task.
type Result struct {
	Task string
	Err  error
}

type Dispatcher struct {
	log     *applog.Logger
	timeout time.Duration
	wg      sync.WaitGroup

	mu      sync.Mutex
	results chan<- Result
}

// New creates a dispatcher whose tasks each get their own context bounded
// by timeout, covering the network call to the messaging API.
func New(logger *applog.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{log: logger, timeout: timeout}
}

// WatchResults attaches a channel that receives one Result per dispatched
// task. The channel must be drained by the receiver.
func (d *Dispatcher) WatchResults(ch chan<- Result) {
	d.mu.Lock()
	d.results = ch
	d.mu.Unlock()
}

// Dispatch starts the task and returns immediately.
func (d *Dispatcher) Dispatch(task string, fn func(ctx context.Context) error) {
	metrics.TasksDispatched.WithLabelValues(task).Inc()
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		err := d.run(task, fn)
		if err != nil {
			d.log.Error("task failed", "task", task, "error", err)
		} else {
			d.log.Debug("task completed", "task", task)
		}

		d.mu.Lock()
		ch := d.results
		d.mu.Unlock()
		if ch != nil {
			ch <- Result{Task: task, Err: err}
		}
	}()
}

// run executes the task with its own bounded context, converting panics
// into errors so a bad payload cannot take the process down.
func (d *Dispatcher) run(task string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in task %s: %v", task, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	return fn(ctx)
}

// Wait blocks until every dispatched task has finished. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
