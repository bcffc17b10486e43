package estimator

import (
	"context"

	"github.com/achilleasa/go-relight/raster"
)

// A DepthSource produces a raw depth field for an image. The returned
// field dimensions may differ from the input image; callers are expected
// to resample. Values are not required to be normalized.
type DepthSource interface {
	// Estimate a depth field for the image. Implementations must honor
	// context cancellation at their suspension points and may report
	// transfer progress through the optional callback.
	EstimateDepth(ctx context.Context, img *raster.Image, progress ProgressFn) (*raster.ScalarField, error)
}

// A Cache stores raw depth service responses keyed by image content so
// repeated sessions on the same photograph skip the network round trip.
// Implementations are injected; the estimator never touches ambient
// storage directly.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte) error
	Clear() error
}
