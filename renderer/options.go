package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Window title for the interactive renderer.
	Title string

	// Path where the interactive renderer dumps frames when the user
	// presses the screenshot key.
	ScreenshotPath string
}
