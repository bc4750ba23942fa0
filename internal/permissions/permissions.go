package permissions

import "errors"

var (
	ErrMicrophone    = errors.New("microphone permission not granted")
	ErrAccessibility = errors.New("accessibility permission not granted")
	ErrScreenCapture = errors.New("screen recording permission not granted")
)

// Needs says which permissions a run mode depends on.
type Needs struct {
	Microphone bool
	Screen     bool
	Hotkeys    bool
}

// Hint returns the settings location for a permission error, or "".
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrMicrophone):
		return "System Settings → Privacy & Security → Microphone"
	case errors.Is(err, ErrAccessibility):
		return "System Settings → Privacy & Security → Accessibility"
	case errors.Is(err, ErrScreenCapture):
		return "System Settings → Privacy & Security → Screen Recording"
	default:
		return ""
	}
}
