package window

import "github.com/anonymousomeone/mandelbrowser/engine/config"

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the requested framebuffer size in pixels.
// High-DPI displays may report a larger framebuffer once the window is open.
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
		w.height = height
	}
}

// WithMinSize sets the smallest size the user can resize the window to.
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = width
		w.minHeight = height
	}
}

// WithConfig takes the title and size from cfg.
//
// Parameters:
//   - cfg: the viewer configuration
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithConfig(cfg config.Config) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = cfg.Title()
		w.width = cfg.Width()
		w.height = cfg.Height()
	}
}
