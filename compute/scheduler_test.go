package compute

import "testing"

func TestNaiveScheduler(t *testing.T) {
	type spec struct {
		numWorkers int
		frameH     uint32
		expRows    []uint32
	}
	specs := []spec{
		{2, 10, []uint32{5, 5}},
		{3, 10, []uint32{4, 3, 3}},
		{4, 2, []uint32{2, 0, 0, 0}},
	}

	for index, s := range specs {
		assignment := NaiveScheduler().Schedule(s.numWorkers, s.frameH, nil)
		checkAssignment(t, index, assignment, s.expRows, s.frameH)
	}
}

func TestFeedbackScheduler(t *testing.T) {
	type spec struct {
		frameH   uint32
		times    []int64
		expRows1 uint32
		expRows2 uint32
	}
	specs := []spec{
		// First call always behaves like the naive scheduler
		{10, nil, 5, 5},
		// Second call should use the block times to assign rows
		{10, []int64{1, 5}, 9, 1},
		// This time worker 2 performed much better
		{10, []int64{5, 1}, 7, 3},
	}

	sch := FeedbackScheduler()
	for index, s := range specs {
		assignment := sch.Schedule(2, s.frameH, s.times)

		if assignment[0] != s.expRows1 {
			t.Fatalf("[spec %d] expected worker 0 to be assigned %d rows; got %d", index, s.expRows1, assignment[0])
		}
		if assignment[1] != s.expRows2 {
			t.Fatalf("[spec %d] expected worker 1 to be assigned %d rows; got %d", index, s.expRows2, assignment[1])
		}
	}
}

func TestPoolCoversAllRows(t *testing.T) {
	pool := NewPoolWithOptions(4, NaiveScheduler())

	// Row blocks are disjoint so workers never write the same slot.
	const frameH = 37
	covered := make([]int32, frameH)

	pool.Run(frameH, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			covered[y]++
		}
	})

	for y, count := range covered {
		if count != 1 {
			t.Fatalf("expected row %d to be covered exactly once; got %d", y, count)
		}
	}
}

func checkAssignment(t *testing.T, specIndex int, got, exp []uint32, frameH uint32) {
	t.Helper()

	var total uint32
	for idx, rows := range got {
		total += rows
		if rows != exp[idx] {
			t.Fatalf("[spec %d] expected worker %d to be assigned %d rows; got %d", specIndex, idx, exp[idx], rows)
		}
	}
	if total != frameH {
		t.Fatalf("[spec %d] expected assignments to cover %d rows; got %d", specIndex, frameH, total)
	}
}
