// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch runs generation work on a bounded pool of goroutines and hands
// the results back to a single owner goroutine.
package dispatch

import (
	"errors"
	"fmt"
	"github.com/alitto/pond/v2"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Dispatcher queues completed work until the owner drains it.
// Request may be called from any goroutine, Drain and DrainFor only from the owner.
type Dispatcher struct {
	pool     pond.Pool
	inFlight atomic.Int64
	wg       sync.WaitGroup

	mu    sync.Mutex
	queue []result
}

type result struct {
	deliver func()
	panic   *WorkerPanic
}

// WorkerPanic is what Drain panics with when generation panicked on a worker.
type WorkerPanic struct {
	Value interface{}
	Stack []byte
}

func (p *WorkerPanic) Error() string {
	return fmt.Sprintf("worker panic: %v\n%s", p.Value, p.Stack)
}

// New creates a dispatcher with at most workers concurrent generations.
// If workers <= 0, runtime.NumCPU() is used.
func New(workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Dispatcher{
		pool: pond.NewPool(workers),
	}
}

// Request runs generate on a worker. deliver is called with the result from the
// owner goroutine during a later Drain. It never blocks. After Close, requests are
// dropped and deliver is never called.
func Request[T any](d *Dispatcher, generate func() T, deliver func(T)) {
	d.wg.Add(1)
	d.inFlight.Add(1)

	task := d.pool.Submit(func() {
		defer d.wg.Done()
		d.push(run(generate, deliver))
	})

	// A stopped pool resolves the task before Submit returns, without running it.
	select {
	case <-task.Done():
		if errors.Is(task.Wait(), pond.ErrPoolStopped) {
			d.inFlight.Add(-1)
			d.wg.Done()
		}
	default:
	}
}

func run[T any](generate func() T, deliver func(T)) (r result) {
	defer func() {
		if v := recover(); v != nil {
			r = result{panic: &WorkerPanic{Value: v, Stack: debug.Stack()}}
		}
	}()

	v := generate()
	return result{deliver: func() { deliver(v) }}
}

func (d *Dispatcher) push(r result) {
	d.mu.Lock()
	d.queue = append(d.queue, r)
	d.inFlight.Add(-1)
	d.mu.Unlock()
}

// Drain delivers every queued result in the order it completed and returns how many.
// Results queued by callbacks during Drain wait for the next call.
func (d *Dispatcher) Drain() int {
	d.mu.Lock()
	queue := d.queue
	d.queue = nil
	d.mu.Unlock()

	for i := range queue {
		queue[i].invoke()
	}

	return len(queue)
}

// DrainFor delivers queued results until budget has elapsed, always making progress on at least one.
// Undelivered results stay queued in order.
func (d *Dispatcher) DrainFor(budget time.Duration) int {
	start := time.Now()

	d.mu.Lock()
	queue := d.queue
	d.queue = nil
	d.mu.Unlock()

	delivered := 0
	for delivered < len(queue) {
		if delivered > 0 && time.Since(start) >= budget {
			break
		}
		r := queue[delivered]
		delivered++
		r.invoke()
	}

	if remainder := queue[delivered:]; len(remainder) > 0 {
		d.mu.Lock()
		d.queue = append(remainder, d.queue...)
		d.mu.Unlock()
	}

	return delivered
}

func (r *result) invoke() {
	if r.panic != nil {
		panic(r.panic)
	}
	r.deliver()
}

// Wait blocks until every request made so far has been queued.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Pending is the number of results waiting to be drained.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// InFlight is the number of requests that have not yet been queued.
func (d *Dispatcher) InFlight() int {
	return int(d.inFlight.Load())
}

// Workers is the number of goroutines currently running generations.
func (d *Dispatcher) Workers() int {
	return int(d.pool.RunningWorkers())
}

// Close waits for in flight work and stops the pool. Queued results can still be drained.
func (d *Dispatcher) Close() {
	d.pool.StopAndWait()
}
