package remote

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

// Task is a unit of background work. Its error is logged and otherwise ignored.
type Task func(ctx context.Context) error

type job struct {
	name string
	run  Task
}

// Executor runs fire-and-forget tasks one at a time, in submission order.
// The queue grows as needed: a submitted task is never dropped while the executor is open.
type Executor struct {
	logger logger.Logger
	done   chan struct{}

	mu      sync.Mutex
	cond    *sync.Cond
	pending []job
	closed  bool
}

// NewExecutor starts the worker goroutine.
func NewExecutor(log logger.Logger) *Executor {
	e := &Executor{
		logger: log,
		done:   make(chan struct{}),
	}
	e.cond = sync.NewCond(&e.mu)
	go e.loop()
	return e
}

func (e *Executor) loop() {
	defer close(e.done)
	for {
		j, ok := e.next()
		if !ok {
			return
		}
		if err := j.run(context.Background()); err != nil {
			e.logger.Debug("background task failed",
				logger.String("task", j.name),
				logger.Error(err))
		}
	}
}

// next blocks until a task is pending. It reports false once the executor
// is closed and the queue is empty.
func (e *Executor) next() (job, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for len(e.pending) == 0 && !e.closed {
		e.cond.Wait()
	}
	if len(e.pending) == 0 {
		return job{}, false
	}
	j := e.pending[0]
	e.pending[0] = job{}
	e.pending = e.pending[1:]
	return j, true
}

// Go enqueues t without blocking. It reports false only when the executor is closed.
func (e *Executor) Go(name string, t Task) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		e.logger.Debug("executor closed, task dropped", logger.String("task", name))
		return false
	}
	e.pending = append(e.pending, job{name: name, run: t})
	e.cond.Signal()
	return true
}

// Pending returns the number of tasks waiting to run.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Close stops accepting tasks and waits for the queued ones to finish or ctx to expire.
// Tasks still running when ctx expires keep running; they are never cancelled.
func (e *Executor) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.cond.Broadcast()
	e.mu.Unlock()

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
