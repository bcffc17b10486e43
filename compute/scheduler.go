package compute

import "math"

// The BlockScheduler interface is implemented by all row scheduling
// algorithms. Schedulers split a frame into horizontal blocks and assign
// one block per worker.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of workers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each worker.
	Schedule(numWorkers int, frameH uint32, lastBlockTimes []int64) []uint32
}

// The naive scheduler assigns an equal number of rows to each worker.
type naiveScheduler struct {
}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(numWorkers int, frameH uint32, _ []int64) []uint32 {
	assignment := make([]uint32, numWorkers)
	rowsPerWorker := frameH / uint32(numWorkers)
	var assigned uint32
	for idx := range assignment {
		assignment[idx] = rowsPerWorker
		assigned += rowsPerWorker
	}
	assignment[0] += frameH - assigned
	return assignment
}

// The feedback scheduler assumes that the volume of per-row work between
// two subsequent frames is approximately the same and sizes each worker's
// block proportionally to its measured row throughput from the last frame.
type feedbackScheduler struct {
	blockAssignment []uint32
}

// Create a new feedback scheduler instance.
func FeedbackScheduler() BlockScheduler {
	return &feedbackScheduler{}
}

// Split frame into blocks of variable height using per-worker timing
// feedback. The workload estimate for worker w and frame i+1 is:
// rows_w,i+1 = (blockH_w,i / time_w,i) / Σ(blockH_i / time_i)
func (sch *feedbackScheduler) Schedule(numWorkers int, frameH uint32, lastBlockTimes []int64) []uint32 {
	// If this is the first time we try to schedule, the worker count
	// changed, or no timing feedback exists yet, fall back to an equal
	// row split.
	if len(sch.blockAssignment) != numWorkers || len(lastBlockTimes) != numWorkers || timesMissing(lastBlockTimes) {
		sch.blockAssignment = NaiveScheduler().Schedule(numWorkers, frameH, nil)
		return sch.blockAssignment
	}

	var total float64
	for idx, blockH := range sch.blockAssignment {
		total += float64(blockH) / float64(lastBlockTimes[idx])
	}

	scaler := float64(frameH) / total
	var scheduledRows uint32
	for idx, blockH := range sch.blockAssignment {
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(blockH)/float64(lastBlockTimes[idx])*scaler)))
		scheduledRows += sch.blockAssignment[idx]
	}

	// In case rows don't add up to the frame height append the missing
	// ones to the first worker.
	sch.blockAssignment[0] += frameH - scheduledRows

	return sch.blockAssignment
}

func timesMissing(times []int64) bool {
	for _, t := range times {
		if t <= 0 {
			return true
		}
	}
	return false
}
