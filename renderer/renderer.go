package renderer

import (
	"time"

	"github.com/achilleasa/go-relight/relight"
)

type Renderer interface {
	// Render frame(s) until done.
	Render() error

	// Shutdown renderer and the attached pipeline.
	Close()

	// Get render statistics.
	Stats() FrameStats
}

// A one-shot renderer that shades a single frame and writes it to a
// file. The output encoding follows the path extension.
type fileRenderer struct {
	pipeline *relight.Pipeline
	outPath  string
	stats    FrameStats
}

// Create a renderer that writes a single shaded frame to outPath.
func NewFile(pipeline *relight.Pipeline, outPath string) (Renderer, error) {
	if pipeline == nil {
		return nil, ErrNoPipeline
	}
	if outPath == "" {
		return nil, ErrNoOutputPath
	}
	return &fileRenderer{
		pipeline: pipeline,
		outPath:  outPath,
	}, nil
}

func (r *fileRenderer) Render() error {
	tick := time.Now()
	frame, err := r.pipeline.Render()
	if err != nil {
		return err
	}
	if err = frame.WriteFile(r.outPath); err != nil {
		return err
	}
	r.stats.Pipeline = r.pipeline.Stats()
	r.stats.FrameTime = time.Since(tick)
	return nil
}

func (r *fileRenderer) Close() {
	r.pipeline.Close()
}

func (r *fileRenderer) Stats() FrameStats {
	return r.stats
}
