// Package relight wires the geometry estimation stages and a shading
// backend into a cached, stateful pipeline. A geometry pass (depth,
// normals, albedo) runs once per image; light edits only invalidate the
// occlusion field, and purely radiometric edits re-run nothing but the
// shading pass itself.
package relight

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/achilleasa/go-relight/albedo"
	"github.com/achilleasa/go-relight/compute"
	"github.com/achilleasa/go-relight/estimator"
	"github.com/achilleasa/go-relight/log"
	"github.com/achilleasa/go-relight/raster"
	"github.com/achilleasa/go-relight/shader"
	"github.com/achilleasa/go-relight/shadow"
	"github.com/achilleasa/go-relight/surface"
	"github.com/achilleasa/go-relight/types"
)

// Progress percentages reported by ProcessImage. The estimator's own
// checkpoints are mapped into the 0-70 band.
const (
	progressEstimateDone    = 70
	progressReconstructDone = 80
	progressAlbedoDone      = 90
	progressUploaded        = 100
)

// ProgressFn receives geometry pass progress in [0, 100]. It is always
// invoked from the goroutine running ProcessImage.
type ProgressFn func(percent int)

// Pipeline owns one shading backend and the cached geometry for the
// image last processed through it.
type Pipeline struct {
	logger      log.Logger
	pool        *compute.Pool
	backend     shader.Backend
	est         *estimator.DepthNormalEstimator
	rec         *surface.Reconstructor
	alb         *albedo.Recoverer
	caster      *shadow.Caster
	draftCaster *shadow.Caster
	opts        Options

	// mu guards everything below. The heavy geometry stages run outside
	// the lock; only the in-flight flag and the final buffer swap are
	// serialized.
	mu          sync.Mutex
	state       State
	processing  bool
	closed      bool
	src         *raster.Image
	geo         *shader.Geometry
	lights      shader.LightSet
	params      shader.Params
	shadowDirty bool
	draft       bool
	shadowDraft bool
	stats       Stats
}

// Shadow march step divisor applied while draft mode is active.
const draftShadowDivisor = 4

// Create a pipeline around the given backend and depth/normal estimator.
// The pipeline takes ownership of the backend and releases it on Close.
func New(backend shader.Backend, est *estimator.DepthNormalEstimator, pool *compute.Pool, opts Options) *Pipeline {
	if pool == nil {
		pool = compute.NewPool()
	}
	draftOpts := opts.Shadow
	draftOpts.Steps = max(draftOpts.Steps/draftShadowDivisor, 1)
	return &Pipeline{
		logger:      log.New("relight"),
		pool:        pool,
		backend:     backend,
		est:         est,
		rec:         surface.New(pool, opts.Surface),
		alb:         albedo.New(pool, opts.Albedo),
		caster:      shadow.New(pool, opts.Shadow),
		draftCaster: shadow.New(pool, draftOpts),
		opts:        opts,
		state:       Uninitialized,
		params:      shader.DefaultParams(),
	}
}

// Initialize the pipeline. A missing backend is fatal; a missing
// estimator is not, as ProcessImage reports its own errors per image.
func (p *Pipeline) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.state = Loading

	if p.backend == nil {
		p.state = Error
		return fmt.Errorf("%w: no backend supplied", shader.ErrBackendInit)
	}
	if p.est == nil {
		p.state = Error
		return estimator.ErrNoDepthSource
	}

	p.logger.Noticef("using %s backend", p.backend.Id())
	p.stats.Backend = p.backend.Id()
	p.state = Ready
	return nil
}

// Get the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Run a full geometry pass for the image: depth/normal estimation,
// surface reconstruction, albedo recovery and geometry upload. Only one
// pass may be in flight at a time; concurrent calls fail fast with
// ErrProcessingInFlight without disturbing the running pass. On failure
// any previously cached geometry stays valid and renderable.
func (p *Pipeline) ProcessImage(ctx context.Context, img *raster.Image, progress ProgressFn) error {
	p.mu.Lock()
	switch {
	case p.closed:
		p.mu.Unlock()
		return ErrClosed
	case p.state == Uninitialized || p.state == Loading || p.backend == nil:
		p.mu.Unlock()
		return ErrNotInitialized
	case p.processing:
		p.mu.Unlock()
		return ErrProcessingInFlight
	}
	p.processing = true
	p.state = Processing
	p.mu.Unlock()

	err := p.processImage(ctx, img, progress)

	p.mu.Lock()
	p.processing = false
	if err != nil {
		if p.geo != nil {
			p.state = HasGeometry
		} else {
			p.state = Error
		}
	} else {
		p.state = HasGeometry
	}
	p.mu.Unlock()

	return err
}

func (p *Pipeline) processImage(ctx context.Context, img *raster.Image, progress ProgressFn) error {
	estimateProgress := func(pct int) {
		if progress != nil {
			progress(pct * progressEstimateDone / 100)
		}
	}

	tick := time.Now()
	est, err := p.est.Estimate(ctx, img, estimateProgress)
	if err != nil {
		return err
	}
	estimateTime := time.Since(tick)
	report(progress, progressEstimateDone)

	if err = ctx.Err(); err != nil {
		return err
	}

	tick = time.Now()
	recon := p.rec.Reconstruct(est.Depth, img, est.Confidence)
	reconstructTime := time.Since(tick)
	report(progress, progressReconstructDone)

	if err = ctx.Err(); err != nil {
		return err
	}

	tick = time.Now()
	albedoField := p.alb.Recover(img, recon.SmoothNormals)
	albedoTime := time.Since(tick)
	report(progress, progressAlbedoDone)

	geo := &shader.Geometry{
		Albedo:  albedoField,
		Normals: recon.SmoothNormals,
		Depth:   recon.SmoothDepth,
	}

	// The upload itself runs under the lock: backends swap their device
	// buffers in place and a concurrent Render must never shade against
	// a half-replaced geometry set.
	tick = time.Now()
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if err = p.backend.UploadGeometry(geo); err != nil {
		p.mu.Unlock()
		return err
	}
	uploadTime := time.Since(tick)
	p.src = img
	p.geo = geo
	p.shadowDirty = true
	p.stats.FrameWidth = img.Width
	p.stats.FrameHeight = img.Height
	p.stats.EstimateTime = estimateTime
	p.stats.ReconstructTime = reconstructTime
	p.stats.AlbedoTime = albedoTime
	p.stats.UploadTime = uploadTime
	if p.lights.Count() == 0 && p.opts.AutoPlaceLight {
		p.seedLightLocked(geo)
	}
	p.mu.Unlock()
	report(progress, progressUploaded)

	p.logger.Noticef("geometry pass complete (%dx%d) in %v", img.Width, img.Height, estimateTime+reconstructTime+albedoTime+uploadTime)
	return nil
}

// Seed an initial light opposite the image's apparent lighting so the
// first render is close to a plausible re-lit version of the photo.
// Called with mu held.
func (p *Pipeline) seedLightLocked(geo *shader.Geometry) {
	dir := albedo.DominantLightDirection(geo.Albedo, geo.Normals)
	light := shader.DefaultLight()
	light.Position = types.Vec3{
		0.5 + dir[0]*0.35,
		0.5 - dir[1]*0.35,
		0.5 + dir[2]*0.5,
	}
	p.lights.Add(light)
	p.params.Ambient = albedo.AmbientFraction(geo.Albedo, geo.Normals)
	p.logger.Debugf("auto-placed light at %v, ambient %.2f", light.Position, p.params.Ambient)
}

// Render the cached geometry under the current lights and parameters.
// The occlusion field is recomputed only when an occlusion-affecting
// light parameter changed since the last render; the shading pass itself
// always runs. Rendering before any geometry exists is a warning no-op.
func (p *Pipeline) Render() (*raster.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if p.geo == nil {
		p.logger.Warningf("render requested before geometry is available")
		return nil, ErrNoGeometry
	}
	p.state = Rendering

	if p.shadowDirty {
		tick := time.Now()
		caster := p.caster
		if p.draft {
			caster = p.draftCaster
		}
		p.geo.Shadow = caster.Cast(p.geo.Depth, &p.lights)
		if err := p.backend.UploadShadow(p.geo.Shadow); err != nil {
			p.state = HasGeometry
			return nil, err
		}
		p.stats.ShadowTime = time.Since(tick)
		p.shadowDirty = false
		p.shadowDraft = p.draft
	} else {
		p.stats.ShadowTime = 0
	}

	tick := time.Now()
	frame, err := p.backend.Shade(&p.lights, p.params, p.src)
	p.stats.ShadeTime = time.Since(tick)
	p.state = HasGeometry
	if err != nil {
		return nil, err
	}
	return frame, nil
}

// Append a light. Parameters are clamped to their documented ranges.
func (p *Pipeline) AddLight(l shader.Light) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.lights.Add(l); err != nil {
		return err
	}
	p.shadowDirty = true
	return nil
}

// Remove the light at the given index.
func (p *Pipeline) RemoveLight(index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.lights.Remove(index) {
		return false
	}
	p.shadowDirty = true
	return true
}

// Get the number of active lights.
func (p *Pipeline) LightCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lights.Count()
}

// Get a copy of the light at the given index.
func (p *Pipeline) Light(index int) (shader.Light, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lights.Get(index)
}

// Mutate the light at the given index via fn, clamping the result. The
// occlusion field is invalidated only when an occlusion-affecting
// parameter actually changed.
func (p *Pipeline) UpdateLight(index int, fn func(*shader.Light)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	before, ok := p.lights.Get(index)
	if !ok {
		return false
	}
	p.lights.Update(index, fn)
	after, _ := p.lights.Get(index)
	if !sameOcclusion(before, after) {
		p.shadowDirty = true
	}
	return true
}

// Move the light at the given index.
func (p *Pipeline) SetLightPosition(index int, pos types.Vec3) bool {
	return p.UpdateLight(index, func(l *shader.Light) { l.Position = pos })
}

// Set the color of the light at the given index.
func (p *Pipeline) SetLightColor(index int, color types.Vec3) bool {
	return p.UpdateLight(index, func(l *shader.Light) { l.Color = color })
}

// Set the intensity of the light at the given index.
func (p *Pipeline) SetLightIntensity(index int, intensity float32) bool {
	return p.UpdateLight(index, func(l *shader.Light) { l.Intensity = intensity })
}

// Get the current global shading parameters.
func (p *Pipeline) Params() shader.Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

// Replace the global shading parameters, clamping them to their
// documented ranges. These never invalidate the occlusion field.
func (p *Pipeline) SetParams(params shader.Params) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params = params.Clamp()
}

// Set the ambient fill level.
func (p *Pipeline) SetAmbient(ambient float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params.Ambient = ambient
	p.params = p.params.Clamp()
}

// Set the blend operator combining albedo with computed lighting.
func (p *Pipeline) SetBlendMode(mode shader.BlendMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params.Blend = mode
	p.params = p.params.Clamp()
}

// Toggle reduced-quality shadow casting for interactive edits. Draft
// renders march a quarter of the configured shadow steps; leaving draft
// mode invalidates any draft occlusion field so the next render
// recomputes it at full quality.
func (p *Pipeline) SetDraft(draft bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft = draft
	if !draft && p.shadowDraft {
		p.shadowDirty = true
	}
}

// Get a copy of the last recorded per-stage timings.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Release the backend and drop all cached buffers. The pipeline cannot
// be reused after Close.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.backend != nil {
		p.backend.Close()
		p.backend = nil
	}
	p.geo = nil
	p.src = nil
	p.state = Uninitialized
}

// Report whether two lights occlude identically, i.e. whether the cached
// shadow field remains valid when one replaces the other.
func sameOcclusion(a, b shader.Light) bool {
	return a.Type == b.Type &&
		a.Position == b.Position &&
		a.Direction == b.Direction &&
		a.SpotAngle == b.SpotAngle &&
		a.SpotSoftness == b.SpotSoftness &&
		a.ShadowSoftness == b.ShadowSoftness
}

func report(progress ProgressFn, pct int) {
	if progress != nil {
		progress(pct)
	}
}
