package renderer

import (
	"fmt"
	"sync"
	"time"

	"github.com/achilleasa/go-relight/log"
	"github.com/achilleasa/go-relight/relight"
	"github.com/achilleasa/go-relight/shader"
	"github.com/achilleasa/go-relight/types"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	// Per-keypress adjustment steps for the live-editing keys.
	intensityStep float32 = 0.1
	ambientStep   float32 = 0.05
	heightStep    float32 = 0.05
)

// An interactive opengl-based renderer. Lights are dragged around with
// the mouse; cursor moves are coalesced so at most one shading pass runs
// per displayed frame regardless of event rate, and drags shade with a
// reduced-quality shadow march until the button is released.
type interactiveGLRenderer struct {
	pipeline *relight.Pipeline
	options  Options
	logger   log.Logger

	// opengl handles
	window    *glfw.Window
	fbTexture uint32
	texFbo    uint32

	// state
	activeLight int
	dragging    bool
	frameDirty  bool
	stats       FrameStats

	// latest cursor position; only the most recent one is consumed per
	// frame
	cursor        types.Vec2
	cursorPending bool

	// mutex for synchronizing updates from glfw callbacks
	sync.Mutex
}

// Create a new interactive opengl renderer on top of the pipeline. The
// pipeline must already hold geometry for an image.
func NewInteractive(pipeline *relight.Pipeline, opts Options) (Renderer, error) {
	if pipeline == nil {
		return nil, ErrNoPipeline
	}
	if opts.Title == "" {
		opts.Title = "go-relight"
	}

	r := &interactiveGLRenderer{
		pipeline:   pipeline,
		options:    opts,
		logger:     log.New("renderer"),
		frameDirty: true,
	}

	if err := r.initGL(opts); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

func (r *interactiveGLRenderer) Close() {
	if r.window != nil {
		r.window.SetShouldClose(true)
	}
	r.pipeline.Close()
}

func (r *interactiveGLRenderer) Stats() FrameStats {
	r.Lock()
	defer r.Unlock()
	return r.stats
}

func (r *interactiveGLRenderer) initGL(opts Options) error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	r.window, err = glfw.CreateWindow(int(opts.FrameW), int(opts.FrameH), opts.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrWindowCreation, err.Error())
	}
	r.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %s", err.Error())
	}

	// Setup texture for frame data
	gl.GenTextures(1, &r.fbTexture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.fbTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(opts.FrameW), int32(opts.FrameH), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach texture to FBO
	gl.GenFramebuffers(1, &r.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.fbTexture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	// Bind event callbacks
	r.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	r.window.SetKeyCallback(r.onKeyEvent)
	r.window.SetMouseButtonCallback(r.onMouseEvent)
	r.window.SetCursorPosCallback(r.onCursorPosEvent)
	r.window.SetScrollCallback(r.onScrollEvent)

	return nil
}

func (r *interactiveGLRenderer) Render() error {
	for !r.window.ShouldClose() {
		glfw.PollEvents()

		r.Lock()
		if r.cursorPending {
			// Apply only the latest cursor position; intermediate
			// drag events were coalesced away.
			r.cursorPending = false
			u := r.cursor[0] / float32(r.options.FrameW-1)
			v := r.cursor[1] / float32(r.options.FrameH-1)
			if light, ok := r.pipeline.Light(r.activeLight); ok {
				r.pipeline.SetLightPosition(r.activeLight, types.Vec3{u, v, light.Position[2]})
				r.frameDirty = true
			}
		}
		dirty := r.frameDirty
		r.frameDirty = false
		r.Unlock()

		if !dirty {
			glfw.WaitEventsTimeout(0.05)
			continue
		}

		tick := time.Now()
		frame, err := r.pipeline.Render()
		if err != nil {
			return err
		}

		// Copy frame data into the texture and blit to the window
		gl.BindTexture(gl.TEXTURE_2D, r.fbTexture)
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(frame.Width), int32(frame.Height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(frame.Pix))
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
		gl.BlitFramebuffer(0, int32(frame.Height), int32(frame.Width), 0, 0, 0, int32(r.options.FrameW), int32(r.options.FrameH), gl.COLOR_BUFFER_BIT, gl.LINEAR)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

		r.window.SwapBuffers()

		r.Lock()
		r.stats.Pipeline = r.pipeline.Stats()
		r.stats.FrameTime = time.Since(tick)
		r.Unlock()
	}
	return nil
}

func (r *interactiveGLRenderer) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	r.Lock()
	defer r.Unlock()

	switch {
	case key == glfw.KeyEscape:
		r.window.SetShouldClose(true)
		return
	case key >= glfw.Key1 && key <= glfw.Key8:
		index := int(key - glfw.Key1)
		if index < r.pipeline.LightCount() {
			r.activeLight = index
			r.logger.Noticef("selected light %d", index+1)
		}
		return
	case key == glfw.KeyA:
		light := shader.DefaultLight()
		light.Position = types.Vec3{
			r.cursor[0] / float32(r.options.FrameW-1),
			r.cursor[1] / float32(r.options.FrameH-1),
			0.8,
		}
		if err := r.pipeline.AddLight(light); err != nil {
			r.logger.Warningf("could not add light: %v", err)
			return
		}
		r.activeLight = r.pipeline.LightCount() - 1
	case key == glfw.KeyX:
		if !r.pipeline.RemoveLight(r.activeLight) {
			return
		}
		if r.activeLight >= r.pipeline.LightCount() {
			r.activeLight = r.pipeline.LightCount() - 1
			if r.activeLight < 0 {
				r.activeLight = 0
			}
		}
	case key == glfw.KeyLeftBracket:
		r.adjustIntensityLocked(-intensityStep)
	case key == glfw.KeyRightBracket:
		r.adjustIntensityLocked(intensityStep)
	case key == glfw.KeyUp:
		r.adjustAmbientLocked(ambientStep)
	case key == glfw.KeyDown:
		r.adjustAmbientLocked(-ambientStep)
	case key == glfw.KeyTab:
		params := r.pipeline.Params()
		params.Blend = (params.Blend + 1) % (shader.BlendMultiply + 1)
		r.pipeline.SetParams(params)
		r.logger.Noticef("blend mode: %s", params.Blend)
	case key == glfw.KeyS:
		path := r.options.ScreenshotPath
		if path == "" {
			path = "relight-frame.png"
		}
		if frame, err := r.pipeline.Render(); err == nil {
			if err = frame.WriteFile(path); err != nil {
				r.logger.Warningf("could not save frame: %v", err)
			} else {
				r.logger.Noticef("saved frame to %s", path)
			}
		}
		return
	default:
		return
	}

	r.frameDirty = true
}

func (r *interactiveGLRenderer) adjustIntensityLocked(delta float32) {
	r.pipeline.UpdateLight(r.activeLight, func(l *shader.Light) {
		l.Intensity += delta
	})
}

func (r *interactiveGLRenderer) adjustAmbientLocked(delta float32) {
	params := r.pipeline.Params()
	params.Ambient += delta
	r.pipeline.SetParams(params)
}

func (r *interactiveGLRenderer) onMouseEvent(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}

	r.Lock()
	defer r.Unlock()

	if action == glfw.Press {
		xPos, yPos := w.GetCursorPos()
		r.cursor[0], r.cursor[1] = float32(xPos), float32(yPos)
		r.dragging = true
		r.cursorPending = true
		r.pipeline.SetDraft(true)
		return
	}
	if r.dragging {
		// Releasing the drag triggers one final pass at full shadow
		// quality.
		r.dragging = false
		r.pipeline.SetDraft(false)
		r.frameDirty = true
	}
}

func (r *interactiveGLRenderer) onCursorPosEvent(w *glfw.Window, xPos, yPos float64) {
	r.Lock()
	defer r.Unlock()

	r.cursor[0], r.cursor[1] = float32(xPos), float32(yPos)
	if r.dragging {
		r.cursorPending = true
	}
}

// The scroll wheel raises/lowers the active light above the image plane.
func (r *interactiveGLRenderer) onScrollEvent(w *glfw.Window, xOff, yOff float64) {
	r.Lock()
	defer r.Unlock()

	if r.pipeline.UpdateLight(r.activeLight, func(l *shader.Light) {
		l.Position[2] += float32(yOff) * heightStep
	}) {
		r.frameDirty = true
	}
}
