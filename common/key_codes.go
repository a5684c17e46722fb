package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW   = 87  // W key (ASCII), pan up
	KeyA   = 65  // A key (ASCII), pan left
	KeyS   = 83  // S key (ASCII), pan down
	KeyD   = 68  // D key (ASCII), pan right
	KeyQ   = 81  // Q key (ASCII), fewer iterations
	KeyE   = 69  // E key (ASCII), more iterations
	KeyR   = 82  // R key (ASCII), zoom in
	KeyF   = 70  // F key (ASCII), zoom out
	KeyT   = 84  // T key (ASCII), reset camera
	KeyEsc = 256 // Escape key (GLFW)
)
