package relight

import "errors"

var (
	ErrNotInitialized = errors.New("relight: pipeline not initialized")

	// Returned when ProcessImage is called while another geometry pass
	// is still in flight. The in-flight pass is never interrupted;
	// callers retry once it completes.
	ErrProcessingInFlight = errors.New("relight: an image is already being processed")

	// Returned by Render and parameter calls issued before any geometry
	// exists. Surfaced as a warning no-op, not a crash.
	ErrNoGeometry = errors.New("relight: no geometry available; process an image first")

	ErrClosed = errors.New("relight: pipeline has been closed")
)
