// Package worker provides a fixed-size pool that bounds how many inbound
// updates are handled concurrently. One slow handler occupies one worker
// and nothing else.
package worker

import (
	"context"
	"errors"
	"sync"
)

var ErrPoolClosed = errors.New("worker pool closed")

// Pool provides bounded concurrency execution.
type Pool struct {
	tasks    chan func()
	wg       sync.WaitGroup
	shutdown chan struct{}
	once     sync.Once
	size     int
}

// New creates a worker pool with the given size. The queue holds a few
// tasks per worker so short bursts do not block the polling loop.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		tasks:    make(chan func(), size*4),
		shutdown: make(chan struct{}),
		size:     size,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.work()
	}

	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		select {
		case <-p.shutdown:
			// Drain whatever is already queued, then exit.
			for {
				select {
				case task := <-p.tasks:
					if task != nil {
						task()
					}
				default:
					return
				}
			}
		case task := <-p.tasks:
			if task != nil {
				task()
			}
		}
	}
}

// Submit enqueues a task for execution, blocking while the queue is full.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.shutdown:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.shutdown:
		return ErrPoolClosed
	case p.tasks <- task:
		return nil
	}
}

// Shutdown stops accepting tasks and waits for in-flight and queued ones
// until the context is done.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.once.Do(func() { close(p.shutdown) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Size returns the worker count.
func (p *Pool) Size() int {
	return p.size
}
