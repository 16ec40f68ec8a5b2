package async

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrPoolClosed is returned when work is submitted after Close.
var ErrPoolClosed = errors.New("async: pool closed")

// Pool is a bounded worker pool. All store I/O and cache repopulation runs
// here; callers hold a Future and either chain a continuation or block at
// a well-defined boundary. Submitted work is never cancelled.
type Pool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	logger *zap.Logger
}

// NewPool starts workers goroutines consuming a queue of the given size.
func NewPool(workers, queueSize int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	p := &Pool{
		tasks:  make(chan func(), queueSize),
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("pool task panicked", zap.Any("recover", r))
				}
			}()
			task()
		}()
	}
}

// Submit enqueues a task, blocking when the queue is full. The send
// happens under the mutex so Close can never pull the channel out from
// under a parked sender.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.tasks <- task
	return nil
}

// Close stops accepting work and waits for in-flight tasks to drain. A
// Submit parked on a full queue finishes first: workers keep draining
// until the channel is closed, and the close waits on the same mutex the
// sender holds.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}

// Executor is the resumption context for continuations with user-visible
// side effects: the game loop passes its main-thread dispatcher here so
// messages are sent from the right goroutine, while the I/O itself stays
// on the pool.
type Executor interface {
	Do(fn func())
}

type inlineExecutor struct{}

func (inlineExecutor) Do(fn func()) { fn() }

// Inline runs continuations on whichever goroutine completes the future.
var Inline Executor = inlineExecutor{}

// Future is the result of one asynchronous operation. It resolves exactly
// once and does not support cancellation.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn on the pool and returns a Future for its result. If the pool
// has been closed the returned future is already failed.
func Go[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	if err := p.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("async: task panic: %v", r)
			}
			close(f.done)
		}()
		f.val, f.err = fn()
	}); err != nil {
		f.err = err
		close(f.done)
	}
	return f
}

// Resolved returns a future that already holds the given result. Used on
// cache-hit paths that never touch the pool.
func Resolved[T any](val T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), val: val, err: err}
	close(f.done)
	return f
}

// Await blocks until the future resolves and returns its result.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.val, f.err
}

// Then registers a continuation delivered on the given executor once the
// future resolves. The continuation receives the value and error exactly
// as Await would return them.
func (f *Future[T]) Then(exec Executor, fn func(T, error)) {
	if exec == nil {
		exec = Inline
	}
	go func() {
		<-f.done
		exec.Do(func() { fn(f.val, f.err) })
	}()
}

// Err is a convenience for value-less futures.
func Err[T any](err error) *Future[T] {
	var zero T
	return Resolved(zero, err)
}

// String implements fmt.Stringer for debug logging without blocking.
func (f *Future[T]) String() string {
	select {
	case <-f.done:
		if f.err != nil {
			return fmt.Sprintf("future(err: %v)", f.err)
		}
		return "future(resolved)"
	default:
		return "future(pending)"
	}
}
