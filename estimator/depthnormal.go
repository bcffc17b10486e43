package estimator

import (
	"context"

	"github.com/achilleasa/go-relight/compute"
	"github.com/achilleasa/go-relight/log"
	"github.com/achilleasa/go-relight/raster"
)

// Progress checkpoints reported by Estimate. These are the only points
// where the estimator knows something real happened; nothing in between
// is fabricated.
const (
	progressStarted       = 0
	progressRequestQueued = 10
	progressDepthReady    = 50
	progressConfidence    = 75
	progressNormalsFused  = 90
	progressDone          = 100
)

// Options tune the normal derivation stages.
type Options struct {
	// Gradient strength for the Sobel estimates.
	NormalStrength float32

	// Radius for the depth-guided bilateral smoothing pass over the
	// fused normals. Zero disables the pass.
	SmoothRadius int

	// Depth similarity sigma for the smoothing pass.
	SmoothDepthSigma float32
}

// DefaultOptions returns the tuning used by the relighting pipeline.
func DefaultOptions() Options {
	return Options{
		NormalStrength:   2.5,
		SmoothRadius:     3,
		SmoothDepthSigma: 0.05,
	}
}

// The result of a depth/normal estimation pass. All fields share the
// source image dimensions.
type Result struct {
	Depth      *raster.ScalarField
	Confidence *raster.ScalarField
	Normals    *raster.VectorField
}

// DepthNormalEstimator wraps an external monocular depth source and
// derives confidence and multi-scale fused normals from its output. When
// the primary source fails the estimator degrades to the fallback source
// instead of aborting the pipeline.
type DepthNormalEstimator struct {
	source   DepthSource
	fallback DepthSource
	pool     *compute.Pool
	opts     Options
	logger   log.Logger
}

// Create an estimator. The fallback source may be nil, in which case
// primary source failures propagate to the caller.
func New(source, fallback DepthSource, pool *compute.Pool, opts Options) *DepthNormalEstimator {
	return &DepthNormalEstimator{
		source:   source,
		fallback: fallback,
		pool:     pool,
		opts:     opts,
		logger:   log.New("estimator"),
	}
}

// Estimate depth, confidence and normals for the image.
//
// The stages are: fetch depth from the source (resampling its tensor to
// the image resolution and normalizing to [0, 1]), derive confidence from
// a windowed variance/edge-jump test, compute fine/medium/coarse Sobel
// normals, fuse them with confidence-dependent weights, and bilaterally
// smooth the fusion guided by depth similarity.
func (e *DepthNormalEstimator) Estimate(ctx context.Context, img *raster.Image, progress ProgressFn) (*Result, error) {
	if e.source == nil && e.fallback == nil {
		return nil, ErrNoDepthSource
	}

	report(progress, progressStarted)

	// Map the source's own transfer progress into the 10-50 band.
	transferProgress := func(pct int) {
		report(progress, progressRequestQueued+pct*(progressDepthReady-progressRequestQueued)/100)
	}

	var depth *raster.ScalarField
	var err error
	if e.source != nil {
		report(progress, progressRequestQueued)
		depth, err = e.source.EstimateDepth(ctx, img, transferProgress)
	} else {
		err = ErrNoDepthSource
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if e.fallback == nil {
			return nil, err
		}
		e.logger.Warningf("depth source failed (%v); using fallback estimator", err)
		depth, err = e.fallback.EstimateDepth(ctx, img, nil)
		if err != nil {
			return nil, err
		}
	}

	depth = depth.Resample(img.Width, img.Height)
	depth.Normalize()
	report(progress, progressDepthReady)

	confidence := Confidence(depth)
	report(progress, progressConfidence)

	fine := SobelNormals(depth, fineRadius, e.opts.NormalStrength, e.pool)
	medium := SobelNormals(depth, mediumRadius, e.opts.NormalStrength, e.pool)
	coarse := SobelNormals(depth, coarseRadius, e.opts.NormalStrength, e.pool)
	normals := FuseNormals(fine, medium, coarse, confidence, e.pool)
	report(progress, progressNormalsFused)

	if e.opts.SmoothRadius > 0 {
		normals = SmoothNormals(normals, depth, e.opts.SmoothRadius, e.opts.SmoothDepthSigma, e.pool)
	}
	report(progress, progressDone)

	return &Result{
		Depth:      depth,
		Confidence: confidence,
		Normals:    normals,
	}, nil
}

func report(progress ProgressFn, pct int) {
	if progress != nil {
		progress(pct)
	}
}
