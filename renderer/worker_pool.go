package renderer

import (
	"context"
	"sync"
	"time"

	"github.com/achilleasa/lux/tracer"
)

// The outcome of a single render task.
type tileResult struct {
	worker int
	tile   tracer.Tile

	// Set if the task pulled a tile and merged it into the frame.
	rendered bool
	pixels   int
	samples  uint64
	dropped  int
	elapsed  time.Duration

	err error
}

// A fixed-size pool of goroutines that run render tasks. Tasks carry no
// payload; each one pulls its tile from the scheduler.
type workerPool struct {
	taskQueue   chan struct{}
	resultQueue chan tileResult
	numWorkers  int
	wg          sync.WaitGroup
}

func newWorkerPool(numWorkers, numTasks int) *workerPool {
	return &workerPool{
		taskQueue:   make(chan struct{}, numTasks),
		resultQueue: make(chan tileResult, numTasks),
		numWorkers:  numWorkers,
	}
}

// Start the workers. Results are delivered in completion order; the result
// queue is closed once every worker has exited.
func (wp *workerPool) start(ctx context.Context, run func(ctx context.Context, workerID int) tileResult) {
	for id := 0; id < wp.numWorkers; id++ {
		wp.wg.Add(1)
		go func(id int) {
			defer wp.wg.Done()
			for range wp.taskQueue {
				wp.resultQueue <- run(ctx, id)
			}
		}(id)
	}

	go func() {
		wp.wg.Wait()
		close(wp.resultQueue)
	}()
}

// Submit tasks and signal that no more will follow.
func (wp *workerPool) submit(numTasks int) {
	for i := 0; i < numTasks; i++ {
		wp.taskQueue <- struct{}{}
	}
	close(wp.taskQueue)
}

func (wp *workerPool) results() <-chan tileResult {
	return wp.resultQueue
}
