package compute

import (
	"runtime"
	"sync"
	"time"
)

// A RowKernel processes the half-open row range [yStart, yEnd) of a frame.
type RowKernel func(yStart, yEnd int)

// A Pool fans row-block work out across a fixed set of workers. CPU-bound
// pipeline passes (bilateral filters, shadow marching, software shading)
// share one pool so block sizing feedback carries across frames.
type Pool struct {
	numWorkers int
	scheduler  BlockScheduler

	// mu serializes dispatches; Run may be invoked from multiple
	// goroutines and both the scheduler and the timing slice carry
	// state across frames.
	mu sync.Mutex

	// Per-worker render time for the last dispatched frame.
	blockTimes []int64
}

// Create a pool with one worker per logical CPU and feedback-based
// block scheduling.
func NewPool() *Pool {
	return NewPoolWithOptions(runtime.NumCPU(), FeedbackScheduler())
}

// Create a pool with an explicit worker count and scheduler.
func NewPoolWithOptions(numWorkers int, scheduler BlockScheduler) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool{
		numWorkers: numWorkers,
		scheduler:  scheduler,
		blockTimes: make([]int64, numWorkers),
	}
}

// Get the number of pool workers.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Run the kernel over all frame rows, blocking until every block
// completes. Workers record their block times to feed the scheduler.
func (p *Pool) Run(frameH int, kernel RowKernel) {
	if frameH <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	assignment := p.scheduler.Schedule(p.numWorkers, uint32(frameH), p.blockTimes)

	var wg sync.WaitGroup
	var yStart int
	for idx, blockH := range assignment {
		if blockH == 0 {
			p.blockTimes[idx] = 0
			continue
		}

		wg.Add(1)
		go func(workerIndex, yStart, yEnd int) {
			defer wg.Done()
			start := time.Now()
			kernel(yStart, yEnd)
			p.blockTimes[workerIndex] = time.Since(start).Nanoseconds()
		}(idx, yStart, yStart+int(blockH))
		yStart += int(blockH)
	}
	wg.Wait()
}
