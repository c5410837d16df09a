// Package workpool runs independent work units on a fixed set of goroutines.
package workpool

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/multierr"
)

// Task is one unit of work. ID gives the deterministic ordering.
type Task[T any] struct {
	ID      int
	Payload T
}

// Result is the outcome of a task
type Result[R any] struct {
	TaskID int
	Value  R
	Err    error
}

// WorkFunc processes one task on a worker goroutine
type WorkFunc[T, R any] func(task Task[T]) (R, error)

// Pool manages parallel processing of tasks. Use Start, SubmitTask,
// GetResult and Stop to drive it across several rounds, or Run to process a
// batch of payloads with ordered delivery.
type Pool[T, R any] struct {
	taskQueue   chan Task[T]
	resultQueue chan Result[R]
	numWorkers  int
	work        WorkFunc[T, R]
	wg          sync.WaitGroup
	startOnce   sync.Once
	stopOnce    sync.Once
}

// New creates a pool with numWorkers goroutines (0 means one per CPU).
// queueSize bounds how many tasks can be submitted before results are read.
func New[T, R any](numWorkers, queueSize int, work WorkFunc[T, R]) *Pool[T, R] {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool[T, R]{
		taskQueue:   make(chan Task[T], queueSize),
		resultQueue: make(chan Result[R], queueSize),
		numWorkers:  numWorkers,
		work:        work,
	}
}

// Start begins all workers
func (p *Pool[T, R]) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.numWorkers; i++ {
			p.wg.Add(1)
			go p.run()
		}
	})
}

// Stop closes the task queue, waits for the workers to finish and closes the
// result queue
func (p *Pool[T, R]) Stop() {
	p.stopOnce.Do(func() {
		close(p.taskQueue)
		p.wg.Wait()
		close(p.resultQueue)
	})
}

// SubmitTask queues a task for the workers
func (p *Pool[T, R]) SubmitTask(task Task[T]) {
	p.taskQueue <- task
}

// GetResult retrieves a completed result; ok is false once the pool is stopped
// and drained
func (p *Pool[T, R]) GetResult() (Result[R], bool) {
	result, ok := <-p.resultQueue
	return result, ok
}

// NumWorkers returns the number of workers in the pool
func (p *Pool[T, R]) NumWorkers() int {
	return p.numWorkers
}

func (p *Pool[T, R]) run() {
	defer p.wg.Done()

	for task := range p.taskQueue {
		value, err := p.work(task)
		p.resultQueue <- Result[R]{TaskID: task.ID, Value: value, Err: err}
	}
}

// Run processes payloads (task i gets ID i) and calls deliver for each result
// in task order, on the calling goroutine. It stops submitting on the first
// task or delivery error, or when ctx is cancelled, and then stops the pool.
// A pool cannot be reused after Run.
func (p *Pool[T, R]) Run(ctx context.Context, payloads []T, deliver func(id int, value R) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.Start()
	go func() {
		defer p.Stop()
		for i, payload := range payloads {
			select {
			case <-runCtx.Done():
				return
			case p.taskQueue <- Task[T]{ID: i, Payload: payload}:
			}
		}
	}()

	var err error
	pending := make(map[int]R)
	next := 0
	for result := range p.resultQueue {
		if result.Err != nil {
			err = multierr.Append(err, fmt.Errorf("task %d: %w", result.TaskID, result.Err))
			cancel()
			continue
		}
		if err != nil {
			continue
		}

		pending[result.TaskID] = result.Value
		for {
			value, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if derr := deliver(next, value); derr != nil {
				err = derr
				cancel()
				break
			}
			next++
		}
	}

	if err != nil {
		return err
	}
	if next < len(payloads) {
		return ctx.Err()
	}
	return nil
}
