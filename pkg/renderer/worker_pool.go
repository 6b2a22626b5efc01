package renderer

import (
	"runtime"
	"sync"
)

// PixelTask represents a pixel rendering task for the worker pool
type PixelTask struct {
	Index int // Row-major pixel index, carried through to the result
	X, Y  int
}

// WorkerPool manages parallel pixel rendering
type WorkerPool struct {
	taskQueue   chan PixelTask
	resultQueue chan PixelResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// Worker handles individual pixel rendering tasks
type Worker struct {
	ID          int
	raytracer   *Raytracer
	taskQueue   chan PixelTask
	resultQueue chan PixelResult
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(raytracer *Raytracer, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan PixelTask, numWorkers*4),
		resultQueue: make(chan PixelResult, numWorkers*4),
		numWorkers:  numWorkers,
	}

	// Workers share the raytracer: scene and camera are read-only after setup
	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			raytracer:   raytracer,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop stops accepting tasks, waits for queued tasks to finish, then closes the result queue.
// Results must still be drained with GetResult or Stop will block.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	close(wp.taskQueue) // No more tasks
	wp.mu.Unlock()

	wp.wg.Wait() // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a pixel task to the worker pool.
// Submitting after Stop is a programming error and panics.
func (wp *WorkerPool) SubmitTask(task PixelTask) {
	wp.mu.Lock()
	stopped := wp.stopped
	wp.mu.Unlock()
	if stopped {
		panic("worker pool: SubmitTask called after Stop")
	}
	wp.taskQueue <- task
}

// GetResult retrieves a completed pixel result
func (wp *WorkerPool) GetResult() (PixelResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		w.resultQueue <- w.raytracer.renderTask(task)
	}
}
