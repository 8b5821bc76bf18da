// Package parallel runs independent tile transfers on a fixed set of
// goroutines and partitions rectangles into bounded tiles.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a pool of goroutines executing batches of tasks.
//
// Tasks in a batch must be independent: they run in any order and possibly
// at the same time.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// queue feeds tasks to the workers.
	queue chan func()

	// wg waits for all workers to finish after Close.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool

	// mu keeps Close from closing the queue while Run is submitting.
	mu sync.RWMutex
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// A queue a few times deeper than the worker count hides submit latency.
	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers: workers,
		queue:   make(chan func(), queueSize),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for work := range p.queue {
		work()
	}
}

// Run executes all tasks and waits for them to finish. It returns the error
// of the first task that failed, in completion order. Once a task has
// failed, tasks that have not started yet are skipped.
//
// If the pool is closed, Run executes the tasks on the calling goroutine.
func (p *WorkerPool) Run(tasks []func() error) error {
	if len(tasks) == 0 {
		return nil
	}
	if p.workers == 1 || len(tasks) == 1 {
		return runSequential(tasks)
	}

	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		return runSequential(tasks)
	}

	var (
		wg       sync.WaitGroup
		failed   atomic.Bool
		errOnce  sync.Once
		firstErr error
	)
	wg.Add(len(tasks))
	for _, task := range tasks {
		p.queue <- func() {
			defer wg.Done()
			if failed.Load() {
				return
			}
			if err := task(); err != nil {
				failed.Store(true)
				errOnce.Do(func() { firstErr = err })
			}
		}
	}
	p.mu.RUnlock()

	wg.Wait()
	return firstErr
}

func runSequential(tasks []func() error) error {
	for _, task := range tasks {
		if err := task(); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the workers after the queued tasks have run.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	p.mu.Lock()
	close(p.queue)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
