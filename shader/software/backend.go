// Package software implements the deferred shading backend on the CPU.
// It is the reference implementation for the lighting model, the test
// target, and the fallback when no OpenCL platform is available.
package software

import (
	"github.com/achilleasa/go-relight/compute"
	"github.com/achilleasa/go-relight/log"
	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/shader"
)

// Backend shades frames on the CPU, fanning rows out across the pool.
type Backend struct {
	pool   *compute.Pool
	logger log.Logger

	geo    *shader.Geometry
	width  int
	height int
}

// Create a software backend. The pool may be nil to run single-threaded.
func NewBackend(pool *compute.Pool) *Backend {
	return &Backend{
		pool:   pool,
		logger: log.New("software shader"),
	}
}

// Get a backend description for logging/stats.
func (b *Backend) Id() string {
	return "software"
}

// Upload a complete geometry set, replacing any previous one. The buffers
// are adopted; callers hand over ownership and must not mutate them.
func (b *Backend) UploadGeometry(geo *shader.Geometry) error {
	if geo.Albedo == nil || geo.Normals == nil || geo.Depth == nil {
		return shader.ErrNoGeometryUploaded
	}
	w, h := geo.Albedo.Width, geo.Albedo.Height
	if geo.Normals.Width != w || geo.Normals.Height != h || geo.Depth.Width != w || geo.Depth.Height != h {
		return shader.ErrGeometryMismatch
	}

	b.geo = geo
	b.width = w
	b.height = h
	b.logger.Debugf("uploaded %dx%d geometry", w, h)
	return nil
}

// Replace only the shadow buffer.
func (b *Backend) UploadShadow(shadow *raster.ScalarField) error {
	if b.geo == nil {
		return shader.ErrNoGeometryUploaded
	}
	if shadow != nil && (shadow.Width != b.width || shadow.Height != b.height) {
		return shader.ErrGeometryMismatch
	}
	b.geo.Shadow = shadow
	return nil
}

// Shade the current geometry under the given lights. Alpha is copied from
// alphaFrom when supplied and fully opaque otherwise.
func (b *Backend) Shade(lights *shader.LightSet, params shader.Params, alphaFrom *raster.Image) (*raster.Image, error) {
	if b.geo == nil {
		return nil, shader.ErrNoGeometryUploaded
	}

	geo := b.geo
	params = params.Clamp()

	invW := float32(1.0)
	if b.width > 1 {
		invW = 1.0 / float32(b.width-1)
	}
	invH := float32(1.0)
	if b.height > 1 {
		invH = 1.0 / float32(b.height-1)
	}

	out := raster.NewRGBField(b.width, b.height)
	b.run(b.height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			v := float32(y) * invH
			for x := 0; x < b.width; x++ {
				u := float32(x) * invW

				shadow := float32(1.0)
				if geo.Shadow != nil {
					shadow = geo.Shadow.At(x, y)
				}

				out.Set(x, y, shader.ShadePixel(
					geo.Albedo.At(x, y),
					geo.Normals.At(x, y),
					u, v,
					geo.Depth.At(x, y),
					shadow,
					lights, params,
				))
			}
		}
	})

	return out.Display(alphaFrom), nil
}

// Release all backend resources.
func (b *Backend) Close() {
	b.geo = nil
}

func (b *Backend) run(frameH int, kernel compute.RowKernel) {
	if b.pool == nil {
		kernel(0, frameH)
		return
	}
	b.pool.Run(frameH, kernel)
}
