package renderer

import (
	"time"

	"github.com/achilleasa/go-relight/relight"
)

type FrameStats struct {
	// Per-stage pipeline timings for the last frame.
	Pipeline relight.Stats

	// Wall time for the last rendered frame, including presentation.
	FrameTime time.Duration
}
