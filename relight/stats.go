package relight

import "time"

// Stats capture the most recent per-stage timings. Geometry stage times
// are overwritten by each ProcessImage call; shadow and shade times by
// each Render call.
type Stats struct {
	// Backend description reported by the shading backend.
	Backend string

	// Dimensions of the current geometry buffers.
	FrameWidth  int
	FrameHeight int

	// Geometry pass stages.
	EstimateTime    time.Duration
	ReconstructTime time.Duration
	AlbedoTime      time.Duration
	UploadTime      time.Duration

	// Render pass stages. ShadowTime is zero when the cached occlusion
	// field was reused.
	ShadowTime time.Duration
	ShadeTime  time.Duration
}
