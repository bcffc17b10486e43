package relight

type State uint8

// Pipeline lifecycle states.
const (
	Uninitialized State = iota
	Loading
	Ready
	Processing
	HasGeometry
	Rendering
	Error
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Processing:
		return "processing"
	case HasGeometry:
		return "has-geometry"
	case Rendering:
		return "rendering"
	case Error:
		return "error"
	}
	return "unknown"
}
