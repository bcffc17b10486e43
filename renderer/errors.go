package renderer

import "errors"

var (
	ErrNoPipeline     = errors.New("renderer: no pipeline attached")
	ErrNoOutputPath   = errors.New("renderer: no output path defined")
	ErrInterrupted    = errors.New("renderer: interrupted while rendering")
	ErrWindowCreation = errors.New("renderer: could not create opengl window")
)
