package relight

import (
	"github.com/achilleasa/go-relight/albedo"
	"github.com/achilleasa/go-relight/estimator"
	"github.com/achilleasa/go-relight/shadow"
	"github.com/achilleasa/go-relight/surface"
)

// Options bundle the per-stage tuning for a pipeline instance.
type Options struct {
	Estimator estimator.Options
	Surface   surface.Options
	Albedo    albedo.Options
	Shadow    shadow.Options

	// When no lights have been added by the time the first geometry pass
	// completes, seed one from the image's dominant lighting direction
	// and estimated ambient fraction.
	AutoPlaceLight bool
}

// DefaultOptions returns the stage defaults with automatic initial light
// placement enabled.
func DefaultOptions() Options {
	return Options{
		Estimator:      estimator.DefaultOptions(),
		Surface:        surface.DefaultOptions(),
		Albedo:         albedo.DefaultOptions(),
		Shadow:         shadow.DefaultOptions(),
		AutoPlaceLight: true,
	}
}
